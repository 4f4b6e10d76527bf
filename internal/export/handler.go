package export

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medgraph/medgraph/internal/graph"
	"github.com/medgraph/medgraph/internal/record"
)

type Handler struct {
	records  record.Repository
	graphs   *graph.Service
	importer *Importer
}

func NewHandler(records record.Repository, graphs *graph.Service, importer *Importer) *Handler {
	return &Handler{records: records, graphs: graphs, importer: importer}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/export/json", h.ExportJSON)
	api.GET("/export/xml", h.ExportXML)
	api.GET("/export/report", h.ExportReport)
	api.GET("/patients/:id/export", h.ExportPatientBundle)
	api.POST("/import", h.Import)
}

func (h *Handler) ExportJSON(c echo.Context) error {
	recs, err := h.listAll(c)
	if err != nil {
		return err
	}
	out, err := NewBundle(recs, time.Now()).MarshalIndent()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, out)
}

func (h *Handler) ExportXML(c echo.Context) error {
	recs, err := h.listAll(c)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationXML, []byte(NewBundle(recs, time.Now()).XML()))
}

func (h *Handler) ExportReport(c echo.Context) error {
	recs, err := h.listAll(c)
	if err != nil {
		return err
	}
	return c.HTML(http.StatusOK, HTMLReport(recs, time.Now()))
}

func (h *Handler) ExportPatientBundle(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()

	patient, err := h.records.GetByID(ctx, record.TypePatient, id)
	if errors.Is(err, record.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	related, err := h.graphs.RelatedRecords(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, NewPatientBundle(patient, related, time.Now()))
}

func (h *Handler) Import(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result := h.importer.ImportJSON(c.Request().Context(), body)
	status := http.StatusOK
	if !result.Success && result.RecordsCreated == 0 {
		status = http.StatusBadRequest
	}
	return c.JSON(status, result)
}

func (h *Handler) listAll(c echo.Context) ([]*record.Record, error) {
	ctx := c.Request().Context()
	var recs []*record.Record
	for _, t := range record.AllTypes {
		batch, err := h.records.ListByType(ctx, t)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		recs = append(recs, batch...)
	}
	return recs, nil
}
