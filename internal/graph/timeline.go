package graph

import (
	"sort"
	"strings"
	"time"

	"github.com/medgraph/medgraph/internal/record"
)

// BuildTimeline extracts dated events from graph nodes and returns them in
// ascending date order. Patient and practitioner nodes never produce
// events; other nodes are skipped when no date field is set. Each variant
// has its own date priority so the clinically meaningful date wins over
// the bookkeeping one.
func BuildTimeline(nodes []Node) []TimelineEvent {
	events := []TimelineEvent{}
	for _, node := range nodes {
		date, summary, ok := eventFields(node.Data)
		if !ok || date == "" {
			continue
		}
		if summary == "" {
			summary = "No description"
		}
		events = append(events, TimelineEvent{
			ID:      node.ID,
			Date:    date,
			Type:    node.Type,
			Title:   node.Label,
			Summary: summary,
			Data:    node.Data,
			Color:   NodeColor(node.Type),
			Icon:    NodeIcon(node.Type),
		})
	}
	sortEvents(events)
	return events
}

func sortEvents(events []TimelineEvent) {
	sort.SliceStable(events, func(i, j int) bool { return eventBefore(events[i].Date, events[j].Date) })
}

// eventBefore compares chronologically when both dates parse; otherwise it
// falls back to string order, which is still correct for uniform ISO-8601.
func eventBefore(a, b string) bool {
	ta, okA := parseEventDate(a)
	tb, okB := parseEventDate(b)
	if okA && okB {
		return ta.Before(tb)
	}
	return a < b
}

var eventDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

func parseEventDate(s string) (time.Time, bool) {
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func eventFields(data record.Data) (date, summary string, ok bool) {
	switch d := data.(type) {
	case record.EncounterData:
		summary = first(d.Reason, d.Type)
		return d.Date, summary, true
	case record.ConditionData:
		date = first(d.OnsetDate, d.DiagnosisDate, d.Date)
		summary = strings.TrimSpace(d.ClinicalStatus + suffix(d.Severity))
		return date, summary, true
	case record.MedicationData:
		date = first(d.StartDate, d.Date)
		summary = strings.TrimSpace(strings.TrimSpace(d.Dosage+" "+d.Frequency) + suffix(d.Route))
		return date, summary, true
	case record.ProcedureData:
		date = first(d.PerformedDate, d.Date)
		return date, d.Outcome, true
	case record.ObservationData:
		date = first(d.EffectiveDate, d.Date)
		if d.Value != "" {
			summary = "Value: " + d.Value
		} else {
			summary = d.Type
		}
		return date, summary, true
	case record.DocumentData:
		date = first(d.Date, d.Created)
		summary = first(d.Description, d.Type)
		return date, summary, true
	default:
		return "", "", false
	}
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func suffix(v string) string {
	if v == "" {
		return ""
	}
	return " - " + v
}
