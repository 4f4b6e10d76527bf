package record

import (
	"github.com/google/uuid"
)

// Relationship types for derived and synthesized edges.
const (
	RelTreatedBy       = "treated_by"
	RelDiagnosedDuring = "diagnosed_during"
	RelTreats          = "treats"
	RelPerformedDuring = "performed_during"
	RelPrescribedAt    = "prescribed_at"
	RelRecordedDuring  = "recorded_during"
	RelDocuments       = "documents"
	RelHas             = "has"
	RelHasRecord       = "has_record"
	RelBelongsTo       = "belongs_to_patient"
	RelRelatedTo       = "related_to"
)

var reverseRelationships = map[string]string{
	RelHasRecord:       RelBelongsTo,
	RelTreatedBy:       RelTreats,
	RelDiagnosedDuring: "diagnosed",
	RelPrescribedAt:    "prescription_for",
	RelPerformedDuring: "includes_procedure",
	RelRecordedDuring:  "has_observation",
	RelDocuments:       "documented_by",
}

// ReverseRelationship returns the implicit inverse of a relationship type,
// falling back to "related_to" when none is defined.
func ReverseRelationship(rel string) string {
	if rev, ok := reverseRelationships[rel]; ok {
		return rev
	}
	return RelRelatedTo
}

// Edge is a persisted directional relationship between two records. Both
// endpoints are expected to exist; an edge whose source or target record is
// gone is an orphan, detectable by the graph integrity validator.
type Edge struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	SourceType       Type              `db:"source_type" json:"source_type"`
	SourceID         uuid.UUID         `db:"source_id" json:"source_id"`
	TargetType       Type              `db:"target_type" json:"target_type"`
	TargetID         uuid.UUID         `db:"target_id" json:"target_id"`
	RelationshipType string            `db:"relationship_type" json:"relationship_type"`
	Metadata         map[string]string `db:"metadata" json:"metadata,omitempty"`
}

// DeriveEdges builds the relationship edges implied by a record's explicit
// reference fields. A variant without references, or a reference left
// unset, yields no edge; derivation never fails. Callers re-deriving on
// update must discard the record's previously derived edges first.
func DeriveEdges(recordID uuid.UUID, data Data) []Edge {
	refs := data.References()
	if len(refs) == 0 {
		return nil
	}
	edges := make([]Edge, 0, len(refs))
	for _, ref := range refs {
		edges = append(edges, Edge{
			SourceType:       data.Kind(),
			SourceID:         recordID,
			TargetType:       ref.TargetType,
			TargetID:         ref.TargetID,
			RelationshipType: ref.Relationship,
			Metadata:         ref.Metadata,
		})
	}
	return edges
}
