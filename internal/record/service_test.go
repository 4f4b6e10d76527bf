package record

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

// -- Mocks --

type mockRepo struct {
	records map[Type]map[uuid.UUID]*Record
}

func newMockRepo() *mockRepo {
	m := &mockRepo{records: make(map[Type]map[uuid.UUID]*Record)}
	for _, t := range AllTypes {
		m.records[t] = make(map[uuid.UUID]*Record)
	}
	return m
}

func (m *mockRepo) Insert(_ context.Context, rec *Record) error {
	m.records[rec.Type][rec.ID] = rec
	return nil
}

func (m *mockRepo) Update(_ context.Context, rec *Record) error {
	if _, ok := m.records[rec.Type][rec.ID]; !ok {
		return ErrNotFound
	}
	m.records[rec.Type][rec.ID] = rec
	return nil
}

func (m *mockRepo) Delete(_ context.Context, t Type, id uuid.UUID) error {
	if _, ok := m.records[t][id]; !ok {
		return ErrNotFound
	}
	delete(m.records[t], id)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, t Type, id uuid.UUID) (*Record, error) {
	rec, ok := m.records[t][id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (m *mockRepo) ListByType(_ context.Context, t Type) ([]*Record, error) {
	var result []*Record
	for _, rec := range m.records[t] {
		result = append(result, rec)
	}
	return result, nil
}

func (m *mockRepo) Exists(_ context.Context, t Type, id uuid.UUID) (bool, error) {
	_, ok := m.records[t][id]
	return ok, nil
}

func (m *mockRepo) DeleteAll(_ context.Context, t Type) error {
	m.records[t] = make(map[uuid.UUID]*Record)
	return nil
}

type mockEdgeRepo struct {
	edges map[uuid.UUID]Edge
}

func newMockEdgeRepo() *mockEdgeRepo {
	return &mockEdgeRepo{edges: make(map[uuid.UUID]Edge)}
}

func (m *mockEdgeRepo) Insert(_ context.Context, edges []Edge) error {
	for _, e := range edges {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		if m.duplicate(e) {
			continue
		}
		m.edges[e.ID] = e
	}
	return nil
}

func (m *mockEdgeRepo) duplicate(e Edge) bool {
	for _, existing := range m.edges {
		if existing.SourceID == e.SourceID && existing.TargetID == e.TargetID &&
			existing.RelationshipType == e.RelationshipType {
			return true
		}
	}
	return false
}

func (m *mockEdgeRepo) List(_ context.Context) ([]Edge, error) {
	var result []Edge
	for _, e := range m.edges {
		result = append(result, e)
	}
	return result, nil
}

func (m *mockEdgeRepo) ListByRecord(_ context.Context, id uuid.UUID) ([]Edge, error) {
	var result []Edge
	for _, e := range m.edges {
		if e.SourceID == id || e.TargetID == id {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockEdgeRepo) DeleteBySource(_ context.Context, sourceID uuid.UUID) error {
	for id, e := range m.edges {
		if e.SourceID == sourceID {
			delete(m.edges, id)
		}
	}
	return nil
}

func (m *mockEdgeRepo) DeleteByRecord(_ context.Context, recordID uuid.UUID) error {
	for id, e := range m.edges {
		if e.SourceID == recordID || e.TargetID == recordID {
			delete(m.edges, id)
		}
	}
	return nil
}

func (m *mockEdgeRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	delete(m.edges, id)
	return nil
}

func (m *mockEdgeRepo) DeleteAll(_ context.Context) error {
	m.edges = make(map[uuid.UUID]Edge)
	return nil
}

// passRunner runs the function directly; the mocks have no transactions.
type passRunner struct{}

func (passRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// -- Tests --

func newTestService() (*Service, *mockRepo, *mockEdgeRepo) {
	repo := newMockRepo()
	edges := newMockEdgeRepo()
	return NewService(repo, edges, passRunner{}), repo, edges
}

func TestCreateRecord_DerivesTitleAndSummary(t *testing.T) {
	svc, _, _ := newTestService()

	rec, err := svc.Create(context.Background(), TypePatient, PatientData{
		Name:      "Daniel Mercer",
		BirthDate: "1964-03-19",
		NHSNumber: "943 476 5919",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
	if rec.Title != "Daniel Mercer" {
		t.Errorf("unexpected title: %q", rec.Title)
	}
	if rec.Summary != "DOB: 1964-03-19, NHS: 943 476 5919" {
		t.Errorf("unexpected summary: %q", rec.Summary)
	}
}

func TestCreateRecord_DerivesEdges(t *testing.T) {
	svc, _, edges := newTestService()

	practitionerID := uuid.New()
	rec, err := svc.Create(context.Background(), TypeEncounter, EncounterData{
		Type:           "Emergency Admission",
		Date:           "2024-12-31",
		PractitionerID: &practitionerID,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := edges.List(context.Background())
	if len(got) != 1 {
		t.Fatalf("expected 1 derived edge, got %d", len(got))
	}
	if got[0].SourceID != rec.ID || got[0].TargetID != practitionerID {
		t.Errorf("unexpected edge endpoints: %+v", got[0])
	}
	if got[0].RelationshipType != RelTreatedBy {
		t.Errorf("expected %s, got %s", RelTreatedBy, got[0].RelationshipType)
	}
}

func TestCreateRecord_TypeMismatch(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), TypePatient, EncounterData{}, nil)
	if !IsValidation(err) {
		t.Errorf("expected ValidationError for mismatched payload type, got %v", err)
	}
}

func TestCreateRecord_UnknownType(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Create(context.Background(), Type("allergy"), PatientData{}, nil); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestUpdateRecord_RederivesEdges(t *testing.T) {
	svc, _, edges := newTestService()
	ctx := context.Background()

	practitionerID := uuid.New()
	rec, err := svc.Create(ctx, TypeEncounter, EncounterData{
		Date:           "2024-12-31",
		PractitionerID: &practitionerID,
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Clearing the reference must drop the derived edge.
	if _, err := svc.Update(ctx, TypeEncounter, rec.ID, EncounterData{Date: "2024-12-31"}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := edges.List(ctx)
	if len(got) != 0 {
		t.Fatalf("expected 0 edges after clearing reference, got %d", len(got))
	}

	// Restoring the reference must re-derive exactly one edge.
	if _, err := svc.Update(ctx, TypeEncounter, rec.ID, EncounterData{
		Date:           "2024-12-31",
		PractitionerID: &practitionerID,
	}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = edges.List(ctx)
	if len(got) != 1 {
		t.Fatalf("expected 1 edge after restoring reference, got %d", len(got))
	}
}

func TestUpdateRecord_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Update(context.Background(), TypeCondition, uuid.New(), ConditionData{Name: "Angina"}, nil)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRecord_CascadesEdges(t *testing.T) {
	svc, repo, edges := newTestService()
	ctx := context.Background()

	practitionerID := uuid.New()
	rec, err := svc.Create(ctx, TypeEncounter, EncounterData{
		Date:           "2025-01-08",
		PractitionerID: &practitionerID,
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// An incoming edge too, to prove both directions cascade.
	if err := edges.Insert(ctx, []Edge{{
		SourceType: TypeCondition, SourceID: uuid.New(),
		TargetType: TypeEncounter, TargetID: rec.ID,
		RelationshipType: RelDiagnosedDuring,
	}}); err != nil {
		t.Fatalf("insert edge: %v", err)
	}

	if err := svc.Delete(ctx, TypeEncounter, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if ok, _ := repo.Exists(ctx, TypeEncounter, rec.ID); ok {
		t.Error("expected record to be deleted")
	}
	got, _ := edges.List(ctx)
	if len(got) != 0 {
		t.Errorf("expected all touching edges removed, got %d", len(got))
	}
}

func TestGetRecord(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, err := svc.Create(ctx, TypeDocument, DocumentData{Title: "Discharge Letter"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(ctx, TypeDocument, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Discharge Letter" {
		t.Errorf("unexpected title: %q", got.Title)
	}

	if _, err := svc.Get(ctx, TypeDocument, uuid.New()); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
