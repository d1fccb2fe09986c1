package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "lakemap/backend/pkg/errors"
)

// Codec reads and writes a Dataset in one document format
type Codec interface {
	Format() string
	ContentType() string
	Parse(r io.Reader) (*Dataset, error)
	Export(ds *Dataset, w io.Writer) error
}

// CodecFor returns the codec for format. Empty selects YAML.
func CodecFor(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml", "yml":
		return YAMLCodec{}, nil
	case "json":
		return JSONCodec{}, nil
	}
	return nil, apperrors.NewValidation("dataset", "format", fmt.Sprintf("%q is not one of yaml, json", format))
}

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

func (YAMLCodec) Format() string      { return "yaml" }
func (YAMLCodec) ContentType() string { return "application/yaml" }

// Parse imports a dataset from YAML
func (YAMLCodec) Parse(r io.Reader) (*Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		return nil, apperrors.NewValidation("dataset", "document", fmt.Sprintf("failed to parse YAML: %v", err))
	}
	return checked(&ds)
}

// Export writes a dataset as YAML
func (YAMLCodec) Export(ds *Dataset, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(ds); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// JSONCodec handles JSON import/export
type JSONCodec struct{}

func (JSONCodec) Format() string      { return "json" }
func (JSONCodec) ContentType() string { return "application/json" }

func (JSONCodec) Parse(r io.Reader) (*Dataset, error) {
	var ds Dataset
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&ds); err != nil {
		return nil, apperrors.NewValidation("dataset", "document", fmt.Sprintf("failed to parse JSON: %v", err))
	}
	return checked(&ds)
}

func (JSONCodec) Export(ds *Dataset, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ds); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// checked rejects documents written by an unknown layout and documents
// carrying NaN or infinite numbers, which YAML can spell but JSON cannot.
func checked(ds *Dataset) (*Dataset, error) {
	if ds.Version != Version {
		return nil, apperrors.NewValidation("dataset", "version", fmt.Sprintf("unsupported version %d, want %d", ds.Version, Version))
	}
	if field, ok := firstNonFinite(ds); ok {
		return nil, apperrors.NewValidation("dataset", field, "must be a finite number")
	}
	return ds, nil
}

func firstNonFinite(ds *Dataset) (string, bool) {
	bad := func(vs ...float64) bool {
		for _, v := range vs {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
		return false
	}
	for i, p := range ds.Points {
		if bad(p.Coordinates.Latitude, p.Coordinates.Longitude, p.Availability) {
			return fmt.Sprintf("points[%d]", i), true
		}
	}
	for i, l := range ds.Lakes {
		if bad(l.AvailabilityScore, l.MaxDepth, l.Salinity) {
			return fmt.Sprintf("lakes[%d]", i), true
		}
		for _, c := range l.Boundary {
			if bad(c.Latitude, c.Longitude) {
				return fmt.Sprintf("lakes[%d].coordinates_boundary", i), true
			}
		}
	}
	for i, r := range ds.Routes {
		if bad(r.PopularityScore) {
			return fmt.Sprintf("routes[%d]", i), true
		}
	}
	return "", false
}
