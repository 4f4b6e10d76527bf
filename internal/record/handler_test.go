package record

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*echo.Echo, *Service, *mockEdgeRepo) {
	repo := newMockRepo()
	edges := newMockEdgeRepo()
	svc := NewService(repo, edges, passRunner{})

	e := echo.New()
	NewHandler(svc, edges).RegisterRoutes(e.Group(""))
	return e, svc, edges
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateRecord(t *testing.T) {
	e, _, _ := newTestHandler()

	rec := doRequest(e, http.MethodPost, "/records/patient",
		`{"data": {"name": "Daniel Mercer", "birthDate": "1964-03-19"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["title"] != "Daniel Mercer" {
		t.Errorf("title = %v", got["title"])
	}
	if id, _ := got["id"].(string); id == "" || id == uuid.Nil.String() {
		t.Errorf("expected id in response, got %v", got["id"])
	}
}

func TestHandlerCreateRecord_BadType(t *testing.T) {
	e, _, _ := newTestHandler()

	rec := doRequest(e, http.MethodPost, "/records/allergy", `{"data": {}}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

type failingRepo struct {
	*mockRepo
}

func (f *failingRepo) Insert(context.Context, *Record) error {
	return errors.New("connection reset by peer")
}

func (f *failingRepo) Update(context.Context, *Record) error {
	return errors.New("connection reset by peer")
}

func TestHandlerCreateRecord_StoreFailure(t *testing.T) {
	repo := &failingRepo{mockRepo: newMockRepo()}
	svc := NewService(repo, newMockEdgeRepo(), passRunner{})
	e := echo.New()
	NewHandler(svc, newMockEdgeRepo()).RegisterRoutes(e.Group(""))

	// A store failure is not the client's fault.
	rec := doRequest(e, http.MethodPost, "/records/patient",
		`{"data": {"name": "Daniel Mercer"}}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandlerUpdateRecord_StoreFailure(t *testing.T) {
	repo := &failingRepo{mockRepo: newMockRepo()}
	svc := NewService(repo, newMockEdgeRepo(), passRunner{})
	e := echo.New()
	NewHandler(svc, newMockEdgeRepo()).RegisterRoutes(e.Group(""))

	existing := &Record{ID: uuid.New(), Type: TypeDocument, Data: DocumentData{Title: "Letter"}}
	repo.mockRepo.records[TypeDocument][existing.ID] = existing

	rec := doRequest(e, http.MethodPut, "/records/document/"+existing.ID.String(),
		`{"data": {"title": "Follow-up Letter"}}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandlerGetRecord(t *testing.T) {
	e, svc, _ := newTestHandler()

	created, err := svc.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		TypeCondition, ConditionData{Name: "Angina"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := doRequest(e, http.MethodGet, "/records/condition/"+created.ID.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = doRequest(e, http.MethodGet, "/records/condition/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = doRequest(e, http.MethodGet, "/records/condition/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerListRecords_Empty(t *testing.T) {
	e, _, _ := newTestHandler()

	rec := doRequest(e, http.MethodGet, "/records/medication", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %s", rec.Body.String())
	}
}

func TestHandlerUpdateRecord(t *testing.T) {
	e, svc, _ := newTestHandler()

	created, err := svc.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		TypeDocument, DocumentData{Title: "Letter"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := doRequest(e, http.MethodPut, "/records/document/"+created.ID.String(),
		`{"data": {"title": "Follow-up Letter"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["title"] != "Follow-up Letter" {
		t.Errorf("title = %v", got["title"])
	}

	rec = doRequest(e, http.MethodPut, "/records/document/"+uuid.NewString(),
		`{"data": {"title": "x"}}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerDeleteRecord(t *testing.T) {
	e, svc, _ := newTestHandler()

	created, err := svc.Create(httptest.NewRequest(http.MethodGet, "/", nil).Context(),
		TypeObservation, ObservationData{Type: "ECG"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := doRequest(e, http.MethodDelete, "/records/observation/"+created.ID.String(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = doRequest(e, http.MethodDelete, "/records/observation/"+created.ID.String(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerGetRecordEdges(t *testing.T) {
	e, svc, _ := newTestHandler()
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	practitioner, err := svc.Create(ctx, TypePractitioner, PractitionerData{Name: "Kumar"}, nil)
	if err != nil {
		t.Fatalf("create practitioner: %v", err)
	}
	encounter, err := svc.Create(ctx, TypeEncounter, EncounterData{
		Date:           "2024-12-31",
		PractitionerID: &practitioner.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create encounter: %v", err)
	}

	rec := doRequest(e, http.MethodGet, "/records/encounter/"+encounter.ID.String()+"/edges", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var edges []Edge
	if err := json.Unmarshal(rec.Body.Bytes(), &edges); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(edges) != 1 || edges[0].RelationshipType != RelTreatedBy {
		t.Errorf("unexpected edges: %+v", edges)
	}
}
