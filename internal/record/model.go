// Package record implements the typed medical record store: eight record
// variants persisted in per-variant collections, title/summary derivation,
// and relationship-edge derivation from the explicit reference fields each
// variant carries.
package record

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies one of the eight record variants.
type Type string

const (
	TypePatient      Type = "patient"
	TypePractitioner Type = "practitioner"
	TypeEncounter    Type = "encounter"
	TypeCondition    Type = "condition"
	TypeMedication   Type = "medication"
	TypeProcedure    Type = "procedure"
	TypeObservation  Type = "observation"
	TypeDocument     Type = "document"
)

// AllTypes lists the variants in their fixed graph order. Level assignment,
// graph projection, and export all iterate in this order.
var AllTypes = []Type{
	TypePatient,
	TypePractitioner,
	TypeEncounter,
	TypeCondition,
	TypeMedication,
	TypeProcedure,
	TypeObservation,
	TypeDocument,
}

var levels = map[Type]int{
	TypePatient:      1,
	TypePractitioner: 2,
	TypeEncounter:    3,
	TypeCondition:    4,
	TypeMedication:   5,
	TypeProcedure:    6,
	TypeObservation:  7,
	TypeDocument:     8,
}

// Level returns the fixed visual layer (1..8) for a variant, or 0 for an
// unknown type.
func (t Type) Level() int { return levels[t] }

// Valid reports whether t is one of the eight known variants.
func (t Type) Valid() bool { return levels[t] != 0 }

// ParseType validates a string against the known variants.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", &UnsupportedTypeError{Type: s}
	}
	return t, nil
}

// Record is one typed medical entity. Title and Summary are derived from
// Data on every write; Type is immutable after creation.
type Record struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	Type      Type              `db:"type" json:"type"`
	Title     string            `db:"title" json:"title"`
	Summary   string            `db:"summary" json:"summary"`
	Data      Data              `db:"data" json:"data"`
	Metadata  map[string]string `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// Reference is an explicit foreign key carried inside a variant's data,
// together with the relationship an edge derived from it should have.
type Reference struct {
	TargetType   Type
	TargetID     uuid.UUID
	Relationship string
	Metadata     map[string]string
}

// Data is the closed set of per-variant payloads. References returns the
// resolved optional reference fields so that edge derivation is a total
// match over the variants rather than a lookup in an untyped bag.
type Data interface {
	Kind() Type
	References() []Reference
}

// PatientData holds demographic details for the record owner.
type PatientData struct {
	Name           string `json:"name,omitempty"`
	PreferredName  string `json:"preferredName,omitempty"`
	BirthDate      string `json:"birthDate,omitempty"`
	Gender         string `json:"gender,omitempty"`
	NHSNumber      string `json:"nhsNumber,omitempty"`
	HospitalNumber string `json:"hospitalNumber,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Address        string `json:"address,omitempty"`
	Occupation     string `json:"occupation,omitempty"`
}

func (PatientData) Kind() Type              { return TypePatient }
func (PatientData) References() []Reference { return nil }

// PractitionerData describes a clinician involved in the patient's care.
type PractitionerData struct {
	Name         string `json:"name,omitempty"`
	Specialty    string `json:"specialty,omitempty"`
	Title        string `json:"title,omitempty"`
	Organization string `json:"organization,omitempty"`
	Department   string `json:"department,omitempty"`
	Contact      string `json:"contact,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	Address      string `json:"address,omitempty"`
}

func (PractitionerData) Kind() Type              { return TypePractitioner }
func (PractitionerData) References() []Reference { return nil }

// EncounterData describes a single visit or admission. PractitionerID is
// the optional treating practitioner reference.
type EncounterData struct {
	Type           string     `json:"type,omitempty"`
	Date           string     `json:"date,omitempty"`
	Location       string     `json:"location,omitempty"`
	TransferFrom   string     `json:"transferFrom,omitempty"`
	PractitionerID *uuid.UUID `json:"practitioner,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	Findings       string     `json:"findings,omitempty"`
	Surgeon        string     `json:"surgeon,omitempty"`
	Status         string     `json:"status,omitempty"`
}

func (EncounterData) Kind() Type { return TypeEncounter }

func (d EncounterData) References() []Reference {
	if d.PractitionerID == nil {
		return nil
	}
	return []Reference{{
		TargetType:   TypePractitioner,
		TargetID:     *d.PractitionerID,
		Relationship: RelTreatedBy,
		Metadata:     dateMeta("date", d.Date),
	}}
}

// ConditionData describes a diagnosis. EncounterID optionally links the
// condition to the encounter it was diagnosed during.
type ConditionData struct {
	Name           string     `json:"name,omitempty"`
	ClinicalStatus string     `json:"clinicalStatus,omitempty"`
	Severity       string     `json:"severity,omitempty"`
	OnsetDate      string     `json:"onsetDate,omitempty"`
	DiagnosisDate  string     `json:"diagnosisDate,omitempty"`
	ResolvedDate   string     `json:"resolvedDate,omitempty"`
	Date           string     `json:"date,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Treatment      string     `json:"treatment,omitempty"`
	SnomedCode     string     `json:"snomedCode,omitempty"`
	ICD10Code      string     `json:"icd10Code,omitempty"`
	EncounterID    *uuid.UUID `json:"encounter,omitempty"`
}

func (ConditionData) Kind() Type { return TypeCondition }

func (d ConditionData) References() []Reference {
	if d.EncounterID == nil {
		return nil
	}
	return []Reference{{
		TargetType:   TypeEncounter,
		TargetID:     *d.EncounterID,
		Relationship: RelDiagnosedDuring,
		Metadata:     dateMeta("date", d.OnsetDate),
	}}
}

// MedicationData describes a prescription. ConditionID optionally links the
// medication to the condition it treats.
type MedicationData struct {
	Name        string     `json:"name,omitempty"`
	Dosage      string     `json:"dosage,omitempty"`
	Frequency   string     `json:"frequency,omitempty"`
	Route       string     `json:"route,omitempty"`
	StartDate   string     `json:"startDate,omitempty"`
	EndDate     string     `json:"endDate,omitempty"`
	Date        string     `json:"date,omitempty"`
	Prescriber  string     `json:"prescriber,omitempty"`
	Indication  string     `json:"indication,omitempty"`
	Duration    string     `json:"duration,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	RxNormCode  string     `json:"rxNormCode,omitempty"`
	ConditionID *uuid.UUID `json:"condition,omitempty"`
}

func (MedicationData) Kind() Type { return TypeMedication }

func (d MedicationData) References() []Reference {
	if d.ConditionID == nil {
		return nil
	}
	return []Reference{{
		TargetType:   TypeCondition,
		TargetID:     *d.ConditionID,
		Relationship: RelTreats,
		Metadata:     dateMeta("startDate", d.StartDate),
	}}
}

// ProcedureData describes an intervention. EncounterID optionally links the
// procedure to the encounter it was performed during.
type ProcedureData struct {
	Name          string     `json:"name,omitempty"`
	Date          string     `json:"date,omitempty"`
	PerformedDate string     `json:"performedDate,omitempty"`
	Performer     string     `json:"performer,omitempty"`
	Location      string     `json:"location,omitempty"`
	Outcome       string     `json:"outcome,omitempty"`
	Findings      string     `json:"findings,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Complications string     `json:"complications,omitempty"`
	CPTCode       string     `json:"cptCode,omitempty"`
	EncounterID   *uuid.UUID `json:"encounter,omitempty"`
}

func (ProcedureData) Kind() Type { return TypeProcedure }

func (d ProcedureData) References() []Reference {
	if d.EncounterID == nil {
		return nil
	}
	return []Reference{{
		TargetType:   TypeEncounter,
		TargetID:     *d.EncounterID,
		Relationship: RelPerformedDuring,
		Metadata:     dateMeta("date", d.Date),
	}}
}

// ObservationData describes a measurement or finding.
type ObservationData struct {
	Type           string `json:"type,omitempty"`
	Value          string `json:"value,omitempty"`
	Unit           string `json:"unit,omitempty"`
	Date           string `json:"date,omitempty"`
	EffectiveDate  string `json:"effectiveDate,omitempty"`
	Interpretation string `json:"interpretation,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Status         string `json:"status,omitempty"`
	LoincCode      string `json:"loincCode,omitempty"`
}

func (ObservationData) Kind() Type              { return TypeObservation }
func (ObservationData) References() []Reference { return nil }

// DocumentData describes a piece of clinical correspondence.
type DocumentData struct {
	Title       string `json:"title,omitempty"`
	Type        string `json:"type,omitempty"`
	Date        string `json:"date,omitempty"`
	Created     string `json:"created,omitempty"`
	Author      string `json:"author,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

func (DocumentData) Kind() Type              { return TypeDocument }
func (DocumentData) References() []Reference { return nil }

// EmptyData returns the zero payload for a variant.
func EmptyData(t Type) (Data, error) {
	switch t {
	case TypePatient:
		return PatientData{}, nil
	case TypePractitioner:
		return PractitionerData{}, nil
	case TypeEncounter:
		return EncounterData{}, nil
	case TypeCondition:
		return ConditionData{}, nil
	case TypeMedication:
		return MedicationData{}, nil
	case TypeProcedure:
		return ProcedureData{}, nil
	case TypeObservation:
		return ObservationData{}, nil
	case TypeDocument:
		return DocumentData{}, nil
	default:
		return nil, &UnsupportedTypeError{Type: string(t)}
	}
}

// UnmarshalData decodes a variant payload from JSON.
func UnmarshalData(t Type, raw []byte) (Data, error) {
	switch t {
	case TypePatient:
		var d PatientData
		if err := decodeData(t, raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case TypePractitioner:
		var d PractitionerData
		if err := decodeData(t, raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case TypeEncounter:
		var d EncounterData
		if err := decodeData(t, raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case TypeCondition:
		var d ConditionData
		if err := decodeData(t, raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case TypeMedication:
		var d MedicationData
		if err := decodeData(t, raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case TypeProcedure:
		var d ProcedureData
		if err := decodeData(t, raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case TypeObservation:
		var d ObservationData
		if err := decodeData(t, raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	case TypeDocument:
		var d DocumentData
		if err := decodeData(t, raw, &d); err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, &UnsupportedTypeError{Type: string(t)}
	}
}

func decodeData(t Type, raw []byte, into interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode %s data: %w", t, err)
	}
	return nil
}

func dateMeta(key, value string) map[string]string {
	if value == "" {
		return map[string]string{}
	}
	return map[string]string{key: value}
}
