package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lakemap/backend/internal/aggregate"
	"lakemap/backend/internal/dataset"
	apperrors "lakemap/backend/pkg/errors"
)

type handler struct {
	svc       Service
	log       *zap.Logger
	maxImport int64
}

func (h *handler) createUser(c *gin.Context) { create(c, h, "user", h.svc.CreateUser) }
func (h *handler) getUser(c *gin.Context) { get(c, h, "user", h.svc.GetUser) }
func (h *handler) listUsers(c *gin.Context) { list(c, h, "users", h.svc.ListUsers) }
func (h *handler) createPoint(c *gin.Context) { create(c, h, "point", h.svc.CreatePoint) }
func (h *handler) getPoint(c *gin.Context) { get(c, h, "point", h.svc.GetPoint) }
func (h *handler) listPoints(c *gin.Context) { list(c, h, "points", h.svc.ListPoints) }
func (h *handler) createRoute(c *gin.Context) { create(c, h, "route", h.svc.CreateRoute) }
func (h *handler) getRoute(c *gin.Context) { get(c, h, "route", h.svc.GetRoute) }
func (h *handler) listRoutes(c *gin.Context) { list(c, h, "routes", h.svc.ListRoutes) }
func (h *handler) createLake(c *gin.Context) { create(c, h, "lake", h.svc.CreateLake) }
func (h *handler) getLake(c *gin.Context) { get(c, h, "lake", h.svc.GetLake) }
func (h *handler) listLakes(c *gin.Context) { list(c, h, "lakes", h.svc.ListLakes) }
func (h *handler) createTicket(c *gin.Context) { create(c, h, "ticket", h.svc.CreateTicket) }
func (h *handler) getTicket(c *gin.Context) { get(c, h, "ticket", h.svc.GetTicket) }
func (h *handler) listTickets(c *gin.Context) { list(c, h, "tickets", h.svc.ListTickets) }

func (h *handler) addReview(c *gin.Context) {
	ticketID := c.Param("id")
	create(c, h, "review", func(ctx context.Context, in aggregate.CreateReviewInput) (string, error) {
		return h.svc.AddTicketReview(ctx, ticketID, in)
	})
}

// create binds the JSON body, runs fn and answers 201 with the new id.
func create[In any](c *gin.Context, h *handler, entity string, fn func(context.Context, In) (string, error)) {
	var in In
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error(), "kind": "validation"})
		return
	}

	id, err := fn(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, "Failed to create "+entity, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func get[V any](c *gin.Context, h *handler, entity string, fn func(context.Context, string) (*V, error)) {
	view, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, "Failed to fetch "+entity, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func list[V any](c *gin.Context, h *handler, entity string, fn func(context.Context) ([]V, error)) {
	views, err := fn(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to list "+entity, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *handler) exportDataset(c *gin.Context) {
	codec, err := dataset.CodecFor(c.Query("format"))
	if err != nil {
		h.writeError(c, "Failed to export dataset", err)
		return
	}

	ds, err := h.svc.Export(c.Request.Context())
	if err != nil {
		h.writeError(c, "Failed to export dataset", err)
		return
	}

	var buf bytes.Buffer
	if err := codec.Export(ds, &buf); err != nil {
		h.writeError(c, "Failed to encode dataset", err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=lakemap."+codec.Format())
	c.Data(http.StatusOK, codec.ContentType(), buf.Bytes())
}

func (h *handler) importDataset(c *gin.Context) {
	codec, err := dataset.CodecFor(c.Query("format"))
	if err != nil {
		h.writeError(c, "Failed to import dataset", err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImport))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = apperrors.NewValidation("dataset", "body", fmt.Sprintf("exceeds %d bytes", tooLarge.Limit))
		}
		h.writeError(c, "Failed to import dataset", err)
		return
	}

	ds, err := codec.Parse(bytes.NewReader(body))
	if err != nil {
		h.writeError(c, "Failed to import dataset", err)
		return
	}

	report, err := h.svc.Import(c.Request.Context(), ds)
	if err != nil {
		status, body := h.errorResponse(c, "Failed to import dataset", err)
		body["report"] = report
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, report)
}
