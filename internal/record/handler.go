package record

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc   *Service
	edges EdgeRepository
}

func NewHandler(svc *Service, edges EdgeRepository) *Handler {
	return &Handler{svc: svc, edges: edges}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/records/:type", h.ListRecords)
	api.POST("/records/:type", h.CreateRecord)
	api.GET("/records/:type/:id", h.GetRecord)
	api.PUT("/records/:type/:id", h.UpdateRecord)
	api.DELETE("/records/:type/:id", h.DeleteRecord)
	api.GET("/records/:type/:id/edges", h.GetRecordEdges)
}

type recordRequest struct {
	Data     json.RawMessage   `json:"data"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (h *Handler) CreateRecord(c echo.Context) error {
	t, err := ParseType(c.Param("type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	data, err := UnmarshalData(t, req.Data)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Create(c.Request().Context(), t, data, req.Metadata)
	if IsValidation(err) || IsUnsupportedType(err) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetRecord(c echo.Context) error {
	t, id, err := pathTarget(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.Get(c.Request().Context(), t, id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListRecords(c echo.Context) error {
	t, err := ParseType(c.Param("type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	recs, err := h.svc.ListByType(c.Request().Context(), t)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if recs == nil {
		recs = []*Record{}
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	t, id, err := pathTarget(c)
	if err != nil {
		return err
	}
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	data, err := UnmarshalData(t, req.Data)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Update(c.Request().Context(), t, id, data, req.Metadata)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	if IsValidation(err) || IsUnsupportedType(err) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	t, id, err := pathTarget(c)
	if err != nil {
		return err
	}
	err = h.svc.Delete(c.Request().Context(), t, id)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetRecordEdges(c echo.Context) error {
	_, id, err := pathTarget(c)
	if err != nil {
		return err
	}
	edges, err := h.edges.ListByRecord(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if edges == nil {
		edges = []Edge{}
	}
	return c.JSON(http.StatusOK, edges)
}

func pathTarget(c echo.Context) (Type, uuid.UUID, error) {
	t, err := ParseType(c.Param("type"))
	if err != nil {
		return "", uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return t, id, nil
}
