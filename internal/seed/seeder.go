// Package seed loads a complete demonstration dataset: one patient's
// cardiac surgery history across all eight record variants, plus the
// curated relationship edges between them.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medgraph/medgraph/internal/platform/db"
	"github.com/medgraph/medgraph/internal/record"
)

// Summary reports what a seeding run created.
type Summary struct {
	Records map[record.Type]int `json:"records"`
	Edges   int                 `json:"edges"`
}

// Total returns the number of records created.
func (s Summary) Total() int {
	n := 0
	for _, c := range s.Records {
		n += c
	}
	return n
}

type Seeder struct {
	records record.Repository
	edges   record.EdgeRepository
	tx      db.TxRunner
	log     zerolog.Logger
}

func NewSeeder(records record.Repository, edges record.EdgeRepository, tx db.TxRunner, log zerolog.Logger) *Seeder {
	return &Seeder{records: records, edges: edges, tx: tx, log: log}
}

// Run clears every collection and loads the fixture in one transaction.
// Titles and summaries are derived from the payloads the same way service
// writes derive them.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Records: make(map[record.Type]int)}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.edges.DeleteAll(ctx); err != nil {
			return fmt.Errorf("clear edges: %w", err)
		}
		for i := len(record.AllTypes) - 1; i >= 0; i-- {
			if err := s.records.DeleteAll(ctx, record.AllTypes[i]); err != nil {
				return fmt.Errorf("clear %s records: %w", record.AllTypes[i], err)
			}
		}

		f := newFixture()
		for _, rec := range f.records {
			if err := s.records.Insert(ctx, rec); err != nil {
				return fmt.Errorf("insert %s record: %w", rec.Type, err)
			}
			summary.Records[rec.Type]++
		}
		if err := s.edges.Insert(ctx, f.edges); err != nil {
			return fmt.Errorf("insert edges: %w", err)
		}
		summary.Edges = len(f.edges)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("records", summary.Total()).
		Int("edges", summary.Edges).
		Msg("seed complete")
	return summary, nil
}

type fixture struct {
	records []*record.Record
	edges   []record.Edge
}

func newRecord(t record.Type, data record.Data, metadata map[string]string) *record.Record {
	return &record.Record{
		ID:       uuid.New(),
		Type:     t,
		Title:    record.DeriveTitle(data),
		Summary:  record.DeriveSummary(data),
		Data:     data,
		Metadata: metadata,
	}
}

func edge(src *record.Record, tgt *record.Record, rel string, metadata map[string]string) record.Edge {
	return record.Edge{
		SourceType:       src.Type,
		SourceID:         src.ID,
		TargetType:       tgt.Type,
		TargetID:         tgt.ID,
		RelationshipType: rel,
		Metadata:         metadata,
	}
}

// newFixture builds the demonstration dataset: an emergency cardiac
// admission, angiogram, triple bypass and follow-up, with the conditions,
// medications, procedures, observations and correspondence around them.
func newFixture() *fixture {
	src := map[string]string{"source": "discharge_letter"}

	patient := newRecord(record.TypePatient, record.PatientData{
		Name:           "Daniel Robert Mercer",
		PreferredName:  "Dan Mercer",
		BirthDate:      "1964-03-19",
		Gender:         "Male",
		NHSNumber:      "943 476 5919",
		HospitalNumber: "40112358",
		Phone:          "07700 900481",
		Address:        "14 Larchwood Close, Pemberton, Kent, CT9 4QF",
		Occupation:     "Structural Engineer",
	}, src)

	practitioners := []*record.Record{
		newRecord(record.TypePractitioner, record.PractitionerData{
			Name:         "Asha Kumar",
			Specialty:    "Cardiac Surgery",
			Title:        "SpR in Cardiac Surgery",
			Organization: "Queensbridge Hospital",
			Department:   "Cardiac Surgery General",
			Contact:      "020 7946 0821",
			Email:        "cardiac.appointments@example.nhs.uk",
		}, src),
		newRecord(record.TypePractitioner, record.PractitionerData{
			Name:         "Tomas Keller",
			Specialty:    "Cardiology",
			Title:        "Consultant Cardiologist",
			Organization: "Harbour View Hospital",
			Address:      "Marine Parade, Pemberton, Kent, CT9 5JX",
		}, src),
		newRecord(record.TypePractitioner, record.PractitionerData{
			Name:         "Ellison",
			Specialty:    "Cardiac Surgery",
			Title:        "Mr.",
			Organization: "Queensbridge Hospital",
			Role:         "Performed CABG x3 procedure",
		}, src),
	}

	encounters := []*record.Record{
		newRecord(record.TypeEncounter, record.EncounterData{
			Type:           "Emergency Admission",
			Date:           "2024-12-31",
			Location:       "Queensbridge Hospital, London",
			TransferFrom:   "Harbour View Hospital",
			PractitionerID: &practitioners[0].ID,
			Reason:         "Crushing chest pain radiating to arms and jaw with troponin rise from 62 to 344",
			Status:         "Completed",
		}, src),
		newRecord(record.TypeEncounter, record.EncounterData{
			Type:           "Diagnostic Procedure",
			Date:           "2025-01-01",
			Location:       "Queensbridge Hospital",
			PractitionerID: &practitioners[2].ID,
			Reason:         "Diagnostic assessment for coronary artery disease",
			Findings:       "Triple vessel disease demonstrated",
			Status:         "Completed",
		}, src),
		newRecord(record.TypeEncounter, record.EncounterData{
			Type:           "Surgical Procedure",
			Date:           "2025-01-08",
			Location:       "Queensbridge Hospital",
			PractitionerID: &practitioners[2].ID,
			Reason:         "Triple vessel coronary artery disease requiring surgical intervention",
			Surgeon:        "Mr. Ellison",
			Status:         "Completed",
		}, src),
		newRecord(record.TypeEncounter, record.EncounterData{
			Type:           "Follow-up Visit",
			Date:           "2025-02-24",
			Location:       "Queensbridge Hospital (Telephone Clinic)",
			PractitionerID: &practitioners[0].ID,
			Reason:         "Post-operative assessment and medication review",
			Status:         "Completed",
		}, src),
	}

	conditions := []*record.Record{
		newRecord(record.TypeCondition, record.ConditionData{
			Name:           "Triple Vessel Coronary Artery Disease",
			ClinicalStatus: "Active",
			Severity:       "Severe",
			OnsetDate:      "2024-12-31",
			DiagnosisDate:  "2025-01-01",
			Notes:          "Demonstrated on angiogram. Required urgent CABG x3 intervention.",
			SnomedCode:     "53741008",
			EncounterID:    &encounters[1].ID,
		}, src),
		newRecord(record.TypeCondition, record.ConditionData{
			Name:           "Crushing chest pain radiating to arms and jaw",
			ClinicalStatus: "Resolved",
			Severity:       "Severe",
			OnsetDate:      "2024-12-31",
			ResolvedDate:   "2025-01-08",
			Notes:          "Accompanied by troponin rise from 62 to 344. ECG showed lateral T-wave inversion.",
			SnomedCode:     "29857009",
			EncounterID:    &encounters[0].ID,
		}, src),
		newRecord(record.TypeCondition, record.ConditionData{
			Name:           "Post-operative chest infection",
			ClinicalStatus: "Resolved",
			Severity:       "Moderate",
			OnsetDate:      "2025-01-10",
			ResolvedDate:   "2025-01-20",
			Notes:          "Treated with antibiotics. Recovery was otherwise uneventful.",
			Treatment:      "Antibiotics",
			EncounterID:    &encounters[2].ID,
		}, src),
		newRecord(record.TypeCondition, record.ConditionData{
			Name:           "Post-operative sternum discomfort with limited range and power",
			ClinicalStatus: "Active",
			Severity:       "Moderate",
			OnsetDate:      "2025-01-08",
			Notes:          "Wounds healed and sternum stable. Discomfort continues to limit range and power.",
			EncounterID:    &encounters[3].ID,
		}, src),
	}

	type rx struct {
		name, dosage, frequency, indication, duration, notes, endDate, code string
	}
	prescriptions := []rx{
		{name: "Amlodipine", dosage: "10mg", frequency: "OD (Once Daily)", indication: "Hypertension management post-CABG", code: "197361"},
		{name: "Aspirin", dosage: "75mg", frequency: "OD (Once Daily)", indication: "Antiplatelet therapy post-CABG", code: "1191"},
		{name: "Atorvastatin", dosage: "80mg", frequency: "OD (Once Daily)", indication: "Lipid management in coronary artery disease", code: "83367"},
		{name: "Bisoprolol", dosage: "3.75mg AM and 2.5mg PM", frequency: "BD (Twice Daily)", indication: "Beta-blocker for cardiac protection post-CABG", code: "19484"},
		{name: "Clopidogrel", dosage: "75mg", frequency: "OD (Once Daily)", indication: "Antiplatelet therapy for vein graft (one year duration)", duration: "1 year", notes: "To be stopped after one year", endDate: "2026-01-08", code: "32968"},
		{name: "Pantoprazole", dosage: "40mg", frequency: "OD (Once Daily)", indication: "Gastroprotection with dual antiplatelet therapy", duration: "1 year", notes: "Can be stopped after Clopidogrel is ceased", endDate: "2026-01-08", code: "40790"},
		{name: "Ramipril", dosage: "1.25mg", frequency: "OD (Once Daily)", indication: "ACE inhibitor for cardioprotection post-CABG", notes: "May be up-titrated accordingly", code: "35296"},
	}
	medications := make([]*record.Record, 0, len(prescriptions))
	for _, p := range prescriptions {
		medications = append(medications, newRecord(record.TypeMedication, record.MedicationData{
			Name:        p.name,
			Dosage:      p.dosage,
			Frequency:   p.frequency,
			Route:       "Oral",
			StartDate:   "2025-01-08",
			EndDate:     p.endDate,
			Prescriber:  "Dr. Asha Kumar",
			Indication:  p.indication,
			Duration:    p.duration,
			Notes:       p.notes,
			RxNormCode:  p.code,
			ConditionID: &conditions[0].ID,
		}, src))
	}

	procedures := []*record.Record{
		newRecord(record.TypeProcedure, record.ProcedureData{
			Name:        "Coronary Angiogram",
			Date:        "2025-01-01",
			Performer:   "Cardiac Catheterization Team",
			Location:    "Queensbridge Hospital - Cardiac Catheterization Lab",
			Outcome:     "Triple vessel disease demonstrated",
			Findings:    "Significant stenosis in multiple coronary vessels requiring surgical intervention",
			CPTCode:     "93458",
			EncounterID: &encounters[1].ID,
		}, src),
		newRecord(record.TypeProcedure, record.ProcedureData{
			Name:          "Coronary Artery Bypass Graft x3 (CABG x3)",
			Date:          "2025-01-08",
			Performer:     "Mr. Ellison",
			Location:      "Queensbridge Hospital - Cardiac Surgery Theatre",
			Outcome:       "Successful revascularization with three grafts",
			Notes:         "LIMA to mid LAD, left radial to OM2, long saphenous vein to distal RCA",
			Complications: "Post-operative chest infection (treated successfully)",
			CPTCode:       "33533",
			EncounterID:   &encounters[2].ID,
		}, src),
	}

	observations := []*record.Record{
		newRecord(record.TypeObservation, record.ObservationData{
			Type: "Troponin Level", Value: "62", Unit: "ng/L", Date: "2024-12-31",
			Interpretation: "Elevated", Notes: "Initial presentation value", LoincCode: "6598-7",
		}, src),
		newRecord(record.TypeObservation, record.ObservationData{
			Type: "Troponin Level", Value: "344", Unit: "ng/L", Date: "2024-12-31",
			Interpretation: "Significantly Elevated", Notes: "Peak rise indicating significant myocardial injury", LoincCode: "6598-7",
		}, src),
		newRecord(record.TypeObservation, record.ObservationData{
			Type: "ECG", Value: "T-wave inversion laterally", Date: "2024-12-31",
			Interpretation: "Abnormal, indicating lateral ischemia", LoincCode: "11524-6",
		}, src),
		newRecord(record.TypeObservation, record.ObservationData{
			Type: "Wound Assessment", Value: "Healed", Date: "2025-02-24",
			Notes: "All surgical wounds have healed appropriately", Status: "Normal",
		}, src),
		newRecord(record.TypeObservation, record.ObservationData{
			Type: "Sternum Stability", Value: "Stable", Date: "2025-02-24",
			Notes: "Sternum remains stable but range and power still limited by pain", Status: "Acceptable",
		}, src),
		newRecord(record.TypeObservation, record.ObservationData{
			Type: "Overall Recovery Assessment", Value: "Uneventful", Date: "2025-02-24",
			Notes: "Doing well overall. Satisfactory progress. Discharged back to GP care.", Status: "Satisfactory",
		}, src),
	}

	documents := []*record.Record{
		newRecord(record.TypeDocument, record.DocumentData{
			Title:       "Post-CABG Follow-up Letter",
			Type:        "Clinical Correspondence",
			Date:        "2025-03-01",
			Author:      "Dr. Asha Kumar, SpR in Cardiac Surgery",
			Recipient:   "Larchwood Road Surgery",
			Description: "Post-operative follow-up letter detailing the CABG x3 procedure, recovery progress, current medications and discharge back to GP care",
			Category:    "Discharge Summary",
		}, src),
	}

	f := &fixture{}
	f.records = append(f.records, patient)
	f.records = append(f.records, practitioners...)
	f.records = append(f.records, encounters...)
	f.records = append(f.records, conditions...)
	f.records = append(f.records, medications...)
	f.records = append(f.records, procedures...)
	f.records = append(f.records, observations...)
	f.records = append(f.records, documents...)

	f.edges = append(f.edges,
		edge(encounters[0], practitioners[0], record.RelTreatedBy, map[string]string{"date": "2024-12-31"}),
		edge(encounters[1], practitioners[2], "performed_by", map[string]string{"date": "2025-01-01"}),
		edge(encounters[2], practitioners[2], "performed_by", map[string]string{"date": "2025-01-08"}),
		edge(encounters[3], practitioners[0], "followed_up_by", map[string]string{"date": "2025-02-24"}),

		edge(conditions[0], encounters[1], record.RelDiagnosedDuring, nil),
		edge(conditions[1], encounters[0], "presented_at", nil),
		edge(conditions[2], encounters[2], "occurred_after", nil),
		edge(conditions[3], encounters[3], "assessed_at", nil),

		edge(procedures[0], encounters[1], record.RelPerformedDuring, nil),
		edge(procedures[1], encounters[2], record.RelPerformedDuring, nil),
		edge(procedures[1], conditions[0], record.RelTreats, nil),
	)
	for _, med := range medications {
		f.edges = append(f.edges, edge(med, encounters[2], record.RelPrescribedAt, nil))
	}
	for _, obs := range observations[:3] {
		f.edges = append(f.edges, edge(obs, encounters[0], record.RelRecordedDuring, nil))
	}
	for _, obs := range observations[3:] {
		f.edges = append(f.edges, edge(obs, encounters[3], record.RelRecordedDuring, nil))
	}
	f.edges = append(f.edges, edge(documents[0], encounters[3], record.RelDocuments, nil))

	return f
}
