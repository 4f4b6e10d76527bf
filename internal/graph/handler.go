package graph

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medgraph/medgraph/internal/record"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/graph", h.GetGraph)
	api.GET("/graph/layout", h.GetLayout)
	api.POST("/graph/sync", h.SyncGraph)
	api.GET("/graph/validate", h.ValidateGraph)
	api.POST("/graph/clean", h.CleanGraph)
	api.POST("/graph/edges", h.CreateEdge)
	api.GET("/patients/:id/related", h.GetRelatedRecords)
	api.GET("/patients/:id/timeline", h.GetPatientTimeline)
}

func (h *Handler) GetGraph(c echo.Context) error {
	g, err := h.svc.Build(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, g)
}

// GetLayout returns the radial layout by default. With mode=orbit it
// seeds the orbit simulation instead, advanced by the requested number
// of ticks so clients can fetch a settled snapshot.
func (h *Handler) GetLayout(c echo.Context) error {
	g, err := h.svc.Build(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if c.QueryParam("mode") != "orbit" {
		return c.JSON(http.StatusOK, RadialPositions(g.Nodes))
	}

	seed, err := strconv.ParseInt(c.QueryParam("seed"), 10, 64)
	if err != nil {
		seed = 1
	}
	ticks, err := strconv.Atoi(c.QueryParam("ticks"))
	if err != nil || ticks < 0 {
		ticks = 0
	}
	if ticks > maxOrbitTicks {
		ticks = maxOrbitTicks
	}
	state := NewOrbitState(g.Nodes, seed)
	for i := 0; i < ticks; i++ {
		state = Step(state)
	}
	return c.JSON(http.StatusOK, state)
}

// Caps the work a single layout request can ask for.
const maxOrbitTicks = 10000

func (h *Handler) SyncGraph(c echo.Context) error {
	count, err := h.svc.SyncAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"edges": count})
}

func (h *Handler) ValidateGraph(c echo.Context) error {
	report, err := h.svc.Validate(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) CleanGraph(c echo.Context) error {
	deleted, err := h.svc.CleanOrphaned(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *Handler) CreateEdge(c echo.Context) error {
	var e record.Edge
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBidirectional(c.Request().Context(), e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) GetRelatedRecords(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	recs, err := h.svc.RelatedRecords(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if recs == nil {
		recs = []*record.Record{}
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) GetPatientTimeline(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	events, err := h.svc.PatientTimeline(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, events)
}
