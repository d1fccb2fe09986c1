package ident

// Ref is an optional reference to another entity.
type Ref struct {
	id      string
	present bool
}

// Present returns a reference to id.
func Present(id string) Ref {
	return Ref{id: id, present: true}
}

// Absent returns the empty reference.
func Absent() Ref {
	return Ref{}
}

// RefFromPtr maps nil and "" to Absent.
func RefFromPtr(id *string) Ref {
	if id == nil || *id == "" {
		return Absent()
	}
	return Present(*id)
}

// Get returns the referenced id and whether the reference is present.
func (r Ref) Get() (string, bool) {
	return r.id, r.present
}

func (r Ref) IsPresent() bool {
	return r.present
}

// Ptr returns nil for Absent, used by JSON views.
func (r Ref) Ptr() *string {
	if !r.present {
		return nil
	}
	id := r.id
	return &id
}

// Map applies fn to a present reference.
func (r Ref) Map(fn func(string) string) Ref {
	if !r.present {
		return r
	}
	return Present(fn(r.id))
}
