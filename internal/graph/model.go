// Package graph projects the typed record collections into a single
// node/edge view, keeps the edge set in step with the records, checks
// referential integrity, and derives timeline and layout views for
// rendering clients.
package graph

import (
	"github.com/google/uuid"

	"github.com/medgraph/medgraph/internal/record"
)

// Node is one record projected into the graph. Level is the fixed visual
// layer of the record's variant.
type Node struct {
	ID       uuid.UUID         `json:"id"`
	Type     record.Type       `json:"type"`
	Label    string            `json:"label"`
	Level    int               `json:"level"`
	Data     record.Data       `json:"data"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Graph is the full projection: every record as a node plus the persisted
// edge set, deduplicated by endpoint pair.
type Graph struct {
	Nodes []Node        `json:"nodes"`
	Edges []record.Edge `json:"edges"`
}

// TimelineEvent is a dated clinical event extracted from a node for
// chronological rendering.
type TimelineEvent struct {
	ID      uuid.UUID   `json:"id"`
	Date    string      `json:"date"`
	Type    record.Type `json:"type"`
	Title   string      `json:"title"`
	Summary string      `json:"summary"`
	Data    record.Data `json:"data"`
	Color   string      `json:"color"`
	Icon    string      `json:"icon"`
}

// Report is the result of an integrity validation pass.
type Report struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

var nodeColors = map[record.Type]string{
	record.TypePatient:      "#3b82f6",
	record.TypePractitioner: "#8b5cf6",
	record.TypeEncounter:    "#10b981",
	record.TypeCondition:    "#ef4444",
	record.TypeMedication:   "#f97316",
	record.TypeProcedure:    "#06b6d4",
	record.TypeObservation:  "#14b8a6",
	record.TypeDocument:     "#64748b",
}

var nodeIcons = map[record.Type]string{
	record.TypePatient:      "👤",
	record.TypePractitioner: "👨‍⚕️",
	record.TypeEncounter:    "🏥",
	record.TypeCondition:    "💔",
	record.TypeMedication:   "💊",
	record.TypeProcedure:    "⚕️",
	record.TypeObservation:  "📊",
	record.TypeDocument:     "📄",
}

// NodeColor returns the display color for a variant, with a neutral
// fallback for unknown types.
func NodeColor(t record.Type) string {
	if c, ok := nodeColors[t]; ok {
		return c
	}
	return "#94a3b8"
}

// NodeIcon returns the display icon for a variant.
func NodeIcon(t record.Type) string {
	if i, ok := nodeIcons[t]; ok {
		return i
	}
	return "●"
}
