package graph

import (
	"testing"

	"github.com/google/uuid"

	"github.com/medgraph/medgraph/internal/record"
)

func node(t record.Type, label string, data record.Data) Node {
	return Node{ID: uuid.New(), Type: t, Label: label, Level: t.Level(), Data: data}
}

func TestBuildTimeline_Ordering(t *testing.T) {
	nodes := []Node{
		node(record.TypeEncounter, "Follow-up Visit", record.EncounterData{Date: "2025-02-24"}),
		node(record.TypeEncounter, "Emergency Admission", record.EncounterData{Date: "2024-12-31"}),
		node(record.TypeProcedure, "CABG x3", record.ProcedureData{PerformedDate: "2025-01-08"}),
	}

	events := BuildTimeline(nodes)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	want := []string{"2024-12-31", "2025-01-08", "2025-02-24"}
	for i, date := range want {
		if events[i].Date != date {
			t.Errorf("events[%d].Date = %s, want %s", i, events[i].Date, date)
		}
	}
}

func TestBuildTimeline_OrdersAcrossTimezones(t *testing.T) {
	// 09:00+05:00 is 04:00 UTC, so it precedes 05:00Z even though a
	// plain string comparison would put it second.
	nodes := []Node{
		node(record.TypeObservation, "Troponin", record.ObservationData{Date: "2025-01-08T05:00:00Z"}),
		node(record.TypeObservation, "ECG", record.ObservationData{Date: "2025-01-08T09:00:00+05:00"}),
	}

	events := BuildTimeline(nodes)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Title != "ECG" {
		t.Errorf("expected the earlier UTC instant first, got %s", events[0].Title)
	}
}

func TestBuildTimeline_ExcludesPeople(t *testing.T) {
	nodes := []Node{
		node(record.TypePatient, "Daniel Mercer", record.PatientData{BirthDate: "1964-03-19"}),
		node(record.TypePractitioner, "Asha Kumar", record.PractitionerData{Name: "Asha Kumar"}),
		node(record.TypeEncounter, "Emergency Admission", record.EncounterData{Date: "2024-12-31"}),
	}

	events := BuildTimeline(nodes)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != record.TypeEncounter {
		t.Errorf("unexpected event type %s", events[0].Type)
	}
}

func TestBuildTimeline_SkipsUndated(t *testing.T) {
	nodes := []Node{
		node(record.TypeCondition, "Angina", record.ConditionData{Name: "Angina"}),
		node(record.TypeDocument, "Letter", record.DocumentData{Title: "Letter"}),
	}
	if events := BuildTimeline(nodes); len(events) != 0 {
		t.Errorf("expected no events for undated records, got %d", len(events))
	}
}

func TestBuildTimeline_DatePriority(t *testing.T) {
	tests := []struct {
		name string
		data record.Data
		want string
	}{
		{"condition onset wins", record.ConditionData{OnsetDate: "2024-12-31", DiagnosisDate: "2025-01-01", Date: "2025-01-02"}, "2024-12-31"},
		{"condition diagnosis fallback", record.ConditionData{DiagnosisDate: "2025-01-01", Date: "2025-01-02"}, "2025-01-01"},
		{"medication start wins", record.MedicationData{StartDate: "2025-01-08", Date: "2025-01-09"}, "2025-01-08"},
		{"procedure performed wins", record.ProcedureData{PerformedDate: "2025-01-08", Date: "2025-01-09"}, "2025-01-08"},
		{"observation effective wins", record.ObservationData{EffectiveDate: "2024-12-31", Date: "2025-01-01"}, "2024-12-31"},
		{"document date wins", record.DocumentData{Date: "2025-03-01", Created: "2025-03-02"}, "2025-03-01"},
		{"document created fallback", record.DocumentData{Created: "2025-03-02"}, "2025-03-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := BuildTimeline([]Node{node(tt.data.Kind(), "x", tt.data)})
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].Date != tt.want {
				t.Errorf("Date = %s, want %s", events[0].Date, tt.want)
			}
		})
	}
}

func TestBuildTimeline_Summaries(t *testing.T) {
	tests := []struct {
		name string
		data record.Data
		want string
	}{
		{"encounter reason", record.EncounterData{Date: "2024-12-31", Reason: "Chest pain", Type: "Emergency Admission"}, "Chest pain"},
		{"encounter type fallback", record.EncounterData{Date: "2024-12-31", Type: "Emergency Admission"}, "Emergency Admission"},
		{"condition status and severity", record.ConditionData{Date: "2025-01-01", ClinicalStatus: "Active", Severity: "Severe"}, "Active - Severe"},
		{"medication dosage", record.MedicationData{StartDate: "2025-01-08", Dosage: "75mg", Frequency: "OD", Route: "Oral"}, "75mg OD - Oral"},
		{"procedure outcome", record.ProcedureData{PerformedDate: "2025-01-08", Outcome: "Successful"}, "Successful"},
		{"procedure no outcome", record.ProcedureData{PerformedDate: "2025-01-08", Name: "CABG x3"}, "No description"},
		{"observation value", record.ObservationData{Date: "2024-12-31", Type: "Troponin", Value: "62"}, "Value: 62"},
		{"observation type fallback", record.ObservationData{Date: "2024-12-31", Type: "ECG"}, "ECG"},
		{"document description", record.DocumentData{Date: "2025-03-01", Description: "Follow-up letter"}, "Follow-up letter"},
		{"empty falls back", record.EncounterData{Date: "2024-12-31"}, "No description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := BuildTimeline([]Node{node(tt.data.Kind(), "x", tt.data)})
			if len(events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(events))
			}
			if events[0].Summary != tt.want {
				t.Errorf("Summary = %q, want %q", events[0].Summary, tt.want)
			}
		})
	}
}

func TestBuildTimeline_ColorsAndIcons(t *testing.T) {
	events := BuildTimeline([]Node{
		node(record.TypeEncounter, "x", record.EncounterData{Date: "2024-12-31"}),
		node(record.TypeMedication, "y", record.MedicationData{StartDate: "2025-01-08"}),
	})
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Color != "#10b981" {
		t.Errorf("encounter color = %s", events[0].Color)
	}
	if events[1].Color != "#f97316" {
		t.Errorf("medication color = %s", events[1].Color)
	}
	for _, e := range events {
		if e.Icon == "" {
			t.Errorf("%s event has no icon", e.Type)
		}
	}
}

func TestNodeColor_Fallback(t *testing.T) {
	if got := NodeColor(record.Type("allergy")); got != "#94a3b8" {
		t.Errorf("fallback color = %s", got)
	}
	if got := NodeIcon(record.Type("allergy")); got != "●" {
		t.Errorf("fallback icon = %s", got)
	}
}
