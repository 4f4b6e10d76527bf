package record

import (
	"fmt"
	"strings"
)

// DeriveTitle maps a variant payload to a human-readable title. Pure and
// total: every variant has a fallback for missing fields, and deriving
// twice from the same data yields the same string.
func DeriveTitle(data Data) string {
	switch d := data.(type) {
	case PatientData:
		return fallback(d.Name, "Patient Record")
	case PractitionerData:
		return fmt.Sprintf("Dr. %s - %s", fallback(d.Name, "Unknown"), fallback(d.Specialty, "Practitioner"))
	case EncounterData:
		return fmt.Sprintf("%s - %s", fallback(d.Type, "Visit"), fallback(d.Date, "Date Unknown"))
	case ConditionData:
		return fallback(d.Name, "Medical Condition")
	case MedicationData:
		return strings.TrimSpace(fmt.Sprintf("%s %s", fallback(d.Name, "Medication"), d.Dosage))
	case ProcedureData:
		return fallback(d.Name, "Medical Procedure")
	case ObservationData:
		return strings.TrimSpace(fmt.Sprintf("%s: %s %s", fallback(d.Type, "Observation"), d.Value, d.Unit))
	case DocumentData:
		return fallback(d.Title, "Medical Document")
	default:
		return "Medical Record"
	}
}

// DeriveSummary maps a variant payload to a one-line summary for list
// rendering. Same purity and fallback guarantees as DeriveTitle.
func DeriveSummary(data Data) string {
	switch d := data.(type) {
	case PatientData:
		return fmt.Sprintf("DOB: %s, NHS: %s", fallback(d.BirthDate, "Unknown"), fallback(d.NHSNumber, "N/A"))
	case PractitionerData:
		return fmt.Sprintf("%s at %s", fallback(d.Specialty, "Specialist"), fallback(d.Organization, "Unknown"))
	case EncounterData:
		return fmt.Sprintf("%s at %s", fallback(d.Reason, "Medical visit"), fallback(d.Location, "Unknown location"))
	case ConditionData:
		return fmt.Sprintf("Status: %s, Severity: %s", fallback(d.ClinicalStatus, "Unknown"), fallback(d.Severity, "Unknown"))
	case MedicationData:
		return strings.TrimSpace(fmt.Sprintf("%s %s - %s", d.Dosage, d.Frequency, fallback(d.Route, "Oral")))
	case ProcedureData:
		return fmt.Sprintf("Performed by %s on %s", fallback(d.Performer, "Unknown"), fallback(d.Date, "Unknown date"))
	case ObservationData:
		return fmt.Sprintf("Recorded on %s", fallback(d.Date, "Unknown date"))
	case DocumentData:
		return fmt.Sprintf("%s by %s", fallback(d.Type, "Document"), fallback(d.Author, "Unknown"))
	default:
		return "Medical record"
	}
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
