package record

import (
	"testing"

	"github.com/google/uuid"
)

func TestDeriveEdges_Encounter(t *testing.T) {
	practitionerID := uuid.New()
	encounterID := uuid.New()

	edges := DeriveEdges(encounterID, EncounterData{
		Date:           "2024-12-31",
		PractitionerID: &practitionerID,
	})
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	e := edges[0]
	if e.SourceType != TypeEncounter || e.SourceID != encounterID {
		t.Errorf("unexpected source: %s:%s", e.SourceType, e.SourceID)
	}
	if e.TargetType != TypePractitioner || e.TargetID != practitionerID {
		t.Errorf("unexpected target: %s:%s", e.TargetType, e.TargetID)
	}
	if e.RelationshipType != RelTreatedBy {
		t.Errorf("expected %s, got %s", RelTreatedBy, e.RelationshipType)
	}
	if e.Metadata["date"] != "2024-12-31" {
		t.Errorf("expected date metadata, got %v", e.Metadata)
	}
}

func TestDeriveEdges_Relationships(t *testing.T) {
	target := uuid.New()
	tests := []struct {
		name string
		data Data
		rel  string
		tgt  Type
	}{
		{"condition", ConditionData{EncounterID: &target}, RelDiagnosedDuring, TypeEncounter},
		{"medication", MedicationData{ConditionID: &target}, RelTreats, TypeCondition},
		{"procedure", ProcedureData{EncounterID: &target}, RelPerformedDuring, TypeEncounter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := DeriveEdges(uuid.New(), tt.data)
			if len(edges) != 1 {
				t.Fatalf("expected 1 edge, got %d", len(edges))
			}
			if edges[0].RelationshipType != tt.rel {
				t.Errorf("expected %s, got %s", tt.rel, edges[0].RelationshipType)
			}
			if edges[0].TargetType != tt.tgt {
				t.Errorf("expected target %s, got %s", tt.tgt, edges[0].TargetType)
			}
		})
	}
}

func TestDeriveEdges_NoReference(t *testing.T) {
	for _, data := range []Data{
		PatientData{}, PractitionerData{}, EncounterData{}, ConditionData{},
		MedicationData{}, ProcedureData{}, ObservationData{}, DocumentData{},
	} {
		if edges := DeriveEdges(uuid.New(), data); len(edges) != 0 {
			t.Errorf("%T with no references derived %d edge(s)", data, len(edges))
		}
	}
}

func TestReverseRelationship(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{RelHasRecord, RelBelongsTo},
		{RelTreatedBy, RelTreats},
		{RelDiagnosedDuring, "diagnosed"},
		{RelPrescribedAt, "prescription_for"},
		{RelPerformedDuring, "includes_procedure"},
		{RelRecordedDuring, "has_observation"},
		{RelDocuments, "documented_by"},
		{"performed_by", RelRelatedTo},
		{"", RelRelatedTo},
	}
	for _, tt := range tests {
		if got := ReverseRelationship(tt.rel); got != tt.want {
			t.Errorf("ReverseRelationship(%q) = %q, want %q", tt.rel, got, tt.want)
		}
	}
}
