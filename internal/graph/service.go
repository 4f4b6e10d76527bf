package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medgraph/medgraph/internal/platform/db"
	"github.com/medgraph/medgraph/internal/record"
)

// Service builds graph projections from the record collections and keeps
// the persisted edge set consistent with them.
type Service struct {
	records record.Repository
	edges   record.EdgeRepository
	tx      db.TxRunner
	log     zerolog.Logger
}

func NewService(records record.Repository, edges record.EdgeRepository, tx db.TxRunner, log zerolog.Logger) *Service {
	return &Service{records: records, edges: edges, tx: tx, log: log}
}

// Build projects every record into a node and pairs the node set with the
// persisted edges. Edges are deduplicated by (source, target) pair; the
// projection itself never writes.
func (s *Service) Build(ctx context.Context) (*Graph, error) {
	g := &Graph{Nodes: []Node{}, Edges: []record.Edge{}}

	for _, t := range record.AllTypes {
		recs, err := s.records.ListByType(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("list %s records: %w", t, err)
		}
		for _, rec := range recs {
			g.Nodes = append(g.Nodes, Node{
				ID:       rec.ID,
				Type:     t,
				Label:    rec.Title,
				Level:    t.Level(),
				Data:     rec.Data,
				Metadata: rec.Metadata,
			})
		}
	}

	edges, err := s.edges.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	seen := make(map[string]bool, len(edges))
	for _, e := range edges {
		key := e.SourceID.String() + "-" + e.TargetID.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		g.Edges = append(g.Edges, e)
	}
	return g, nil
}

// SyncAll rebuilds the whole edge set from the records: the edges each
// record's reference fields derive, plus a "has" edge from the patient to
// every non-patient record. Runs in one transaction so readers never see a
// partially rebuilt graph. When several patient records exist the earliest
// one anchors the ownership edges.
func (s *Service) SyncAll(ctx context.Context) (int, error) {
	total := 0
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.edges.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear edges: %w", err)
		}

		patients, err := s.records.ListByType(ctx, record.TypePatient)
		if err != nil {
			return fmt.Errorf("list patients: %w", err)
		}
		// The list API returns newest-first, so pick the anchor by
		// creation time rather than position.
		var patient *record.Record
		for _, p := range patients {
			if patient == nil || p.CreatedAt.Before(patient.CreatedAt) {
				patient = p
			}
		}
		if len(patients) > 1 {
			s.log.Warn().
				Int("patients", len(patients)).
				Str("anchor", patient.ID.String()).
				Msg("multiple patient records found, anchoring ownership edges to the earliest")
		}

		var edges []record.Edge
		for _, t := range record.AllTypes {
			recs, err := s.records.ListByType(ctx, t)
			if err != nil {
				return fmt.Errorf("list %s records: %w", t, err)
			}
			for _, rec := range recs {
				edges = append(edges, record.DeriveEdges(rec.ID, rec.Data)...)
				if t != record.TypePatient && patient != nil {
					edges = append(edges, record.Edge{
						SourceType:       record.TypePatient,
						SourceID:         patient.ID,
						TargetType:       t,
						TargetID:         rec.ID,
						RelationshipType: record.RelHas,
					})
				}
			}
		}
		if len(edges) > 0 {
			if err := s.edges.Insert(ctx, edges); err != nil {
				return fmt.Errorf("insert edges: %w", err)
			}
		}
		total = len(edges)
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info().Int("edges", total).Msg("graph sync complete")
	return total, nil
}

// Validate checks every edge for unknown endpoint types and missing
// endpoint records. A graph with zero issues is valid.
func (s *Service) Validate(ctx context.Context) (*Report, error) {
	edges, err := s.edges.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}

	issues := []string{}
	for _, e := range edges {
		if !e.SourceType.Valid() {
			issues = append(issues, fmt.Sprintf("Invalid source type: %s", e.SourceType))
			continue
		}
		if !e.TargetType.Valid() {
			issues = append(issues, fmt.Sprintf("Invalid target type: %s", e.TargetType))
			continue
		}
		srcExists, err := s.records.Exists(ctx, e.SourceType, e.SourceID)
		if err != nil {
			return nil, fmt.Errorf("check edge source: %w", err)
		}
		if !srcExists {
			issues = append(issues, fmt.Sprintf("Orphaned edge: source %s:%s not found", e.SourceType, e.SourceID))
		}
		tgtExists, err := s.records.Exists(ctx, e.TargetType, e.TargetID)
		if err != nil {
			return nil, fmt.Errorf("check edge target: %w", err)
		}
		if !tgtExists {
			issues = append(issues, fmt.Sprintf("Orphaned edge: target %s:%s not found", e.TargetType, e.TargetID))
		}
	}
	return &Report{Valid: len(issues) == 0, Issues: issues}, nil
}

// CleanOrphaned deletes every edge with an unknown endpoint type or a
// missing endpoint record and returns the number removed. Idempotent: a
// second pass over a cleaned graph removes nothing.
func (s *Service) CleanOrphaned(ctx context.Context) (int, error) {
	report, err := s.Validate(ctx)
	if err != nil {
		return 0, err
	}
	if report.Valid {
		return 0, nil
	}

	edges, err := s.edges.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list edges: %w", err)
	}

	deleted := 0
	for _, e := range edges {
		if !e.SourceType.Valid() || !e.TargetType.Valid() {
			if err := s.edges.DeleteByID(ctx, e.ID); err != nil {
				return deleted, err
			}
			deleted++
			continue
		}
		srcExists, err := s.records.Exists(ctx, e.SourceType, e.SourceID)
		if err != nil {
			return deleted, err
		}
		tgtExists, err := s.records.Exists(ctx, e.TargetType, e.TargetID)
		if err != nil {
			return deleted, err
		}
		if !srcExists || !tgtExists {
			if err := s.edges.DeleteByID(ctx, e.ID); err != nil {
				return deleted, err
			}
			deleted++
		}
	}
	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Msg("removed orphaned edges")
	}
	return deleted, nil
}

// RelatedRecords resolves the records a patient's outgoing edges point at.
// Edges whose target has since been removed are skipped.
func (s *Service) RelatedRecords(ctx context.Context, patientID uuid.UUID) ([]*record.Record, error) {
	edges, err := s.edges.ListByRecord(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient edges: %w", err)
	}

	var recs []*record.Record
	seen := make(map[uuid.UUID]bool)
	for _, e := range edges {
		if e.SourceID != patientID {
			continue
		}
		if !e.TargetType.Valid() || seen[e.TargetID] {
			continue
		}
		rec, err := s.records.GetByID(ctx, e.TargetType, e.TargetID)
		if errors.Is(err, record.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve edge target: %w", err)
		}
		seen[e.TargetID] = true
		recs = append(recs, rec)
	}
	return recs, nil
}

// PatientTimeline turns every record related to the patient into a dated
// event, ordered ascending. Unlike the node timeline, no record is
// dropped: when the payload carries no usable date the record's creation
// time stands in for it.
func (s *Service) PatientTimeline(ctx context.Context, patientID uuid.UUID) ([]TimelineEvent, error) {
	recs, err := s.RelatedRecords(ctx, patientID)
	if err != nil {
		return nil, err
	}
	events := make([]TimelineEvent, 0, len(recs))
	for _, rec := range recs {
		date, summary, _ := eventFields(rec.Data)
		if date == "" {
			date = rec.CreatedAt.UTC().Format(time.RFC3339)
		}
		if summary == "" {
			summary = "No description"
		}
		events = append(events, TimelineEvent{
			ID:      rec.ID,
			Date:    date,
			Type:    rec.Type,
			Title:   rec.Title,
			Summary: summary,
			Data:    rec.Data,
			Color:   NodeColor(rec.Type),
			Icon:    NodeIcon(rec.Type),
		})
	}
	sortEvents(events)
	return events, nil
}

// CreateBidirectional writes an explicit edge together with its reverse.
// Both are created in one transaction.
func (s *Service) CreateBidirectional(ctx context.Context, e record.Edge) error {
	if !e.SourceType.Valid() {
		return &record.UnsupportedTypeError{Type: string(e.SourceType)}
	}
	if !e.TargetType.Valid() {
		return &record.UnsupportedTypeError{Type: string(e.TargetType)}
	}
	if e.RelationshipType == "" {
		return fmt.Errorf("relationship_type is required")
	}
	reverse := record.Edge{
		SourceType:       e.TargetType,
		SourceID:         e.TargetID,
		TargetType:       e.SourceType,
		TargetID:         e.SourceID,
		RelationshipType: record.ReverseRelationship(e.RelationshipType),
		Metadata:         e.Metadata,
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.edges.Insert(ctx, []record.Edge{e, reverse})
	})
}
