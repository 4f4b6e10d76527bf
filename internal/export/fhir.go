// Package export renders the record collections as FHIR bundles (JSON and
// XML), as a printable HTML report, and imports FHIR bundles back into the
// store.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/medgraph/medgraph/internal/record"
)

var resourceTypes = map[record.Type]string{
	record.TypePatient:      "Patient",
	record.TypePractitioner: "Practitioner",
	record.TypeEncounter:    "Encounter",
	record.TypeCondition:    "Condition",
	record.TypeMedication:   "MedicationStatement",
	record.TypeProcedure:    "Procedure",
	record.TypeObservation:  "Observation",
	record.TypeDocument:     "DocumentReference",
}

var recordTypes = func() map[string]record.Type {
	m := make(map[string]record.Type, len(resourceTypes))
	for t, rt := range resourceTypes {
		m[rt] = t
	}
	return m
}()

// ResourceType maps a record variant to its FHIR resource type.
func ResourceType(t record.Type) string {
	if rt, ok := resourceTypes[t]; ok {
		return rt
	}
	return "Resource"
}

// RecordType maps a FHIR resource type back to a record variant.
func RecordType(resourceType string) (record.Type, bool) {
	t, ok := recordTypes[resourceType]
	return t, ok
}

// Bundle is a FHIR collection bundle.
type Bundle struct {
	ResourceType string  `json:"resourceType"`
	Type         string  `json:"type"`
	Timestamp    string  `json:"timestamp"`
	Entry        []Entry `json:"entry"`
}

type Entry struct {
	FullURL  string                 `json:"fullUrl,omitempty"`
	Resource map[string]interface{} `json:"resource"`
}

// NewBundle wraps every record in a collection bundle, one entry per
// record in collection order.
func NewBundle(recs []*record.Record, now time.Time) *Bundle {
	b := &Bundle{
		ResourceType: "Bundle",
		Type:         "collection",
		Timestamp:    now.UTC().Format(time.RFC3339),
		Entry:        make([]Entry, 0, len(recs)),
	}
	for _, rec := range recs {
		b.Entry = append(b.Entry, Entry{
			FullURL:  "urn:uuid:" + rec.ID.String(),
			Resource: Resource(rec),
		})
	}
	return b
}

// NewPatientBundle wraps a patient and its related records, stamping each
// related resource with a subject reference back to the patient.
func NewPatientBundle(patient *record.Record, related []*record.Record, now time.Time) *Bundle {
	b := &Bundle{
		ResourceType: "Bundle",
		Type:         "collection",
		Timestamp:    now.UTC().Format(time.RFC3339),
		Entry:        make([]Entry, 0, len(related)+1),
	}
	b.Entry = append(b.Entry, Entry{Resource: Resource(patient)})
	for _, rec := range related {
		res := Resource(rec)
		res["subject"] = map[string]interface{}{
			"reference": "Patient/" + patient.ID.String(),
		}
		b.Entry = append(b.Entry, Entry{Resource: res})
	}
	return b
}

// Resource converts a record into a FHIR resource. Patient, condition and
// encounter get proper FHIR shapes; the remaining variants carry their
// payload fields through unchanged.
func Resource(rec *record.Record) map[string]interface{} {
	res := map[string]interface{}{
		"resourceType": ResourceType(rec.Type),
		"id":           rec.ID.String(),
	}

	switch d := rec.Data.(type) {
	case record.PatientData:
		res["name"] = []interface{}{map[string]interface{}{"text": d.Name}}
		if d.BirthDate != "" {
			res["birthDate"] = d.BirthDate
		}
		if d.Gender != "" {
			res["gender"] = strings.ToLower(d.Gender)
		}
	case record.ConditionData:
		res["code"] = conditionCode(d)
		if d.ClinicalStatus != "" {
			res["clinicalStatus"] = map[string]interface{}{
				"coding": []interface{}{map[string]interface{}{
					"system": "http://terminology.hl7.org/CodeSystem/condition-clinical",
					"code":   strings.ToLower(d.ClinicalStatus),
				}},
			}
		}
		if d.OnsetDate != "" {
			res["onsetDateTime"] = d.OnsetDate
		}
	case record.EncounterData:
		status := strings.ToLower(d.Status)
		if status == "" {
			status = "finished"
		}
		res["status"] = status
		res["class"] = map[string]interface{}{"display": d.Type}
		res["period"] = map[string]interface{}{"start": d.Date}
	default:
		mergeData(res, rec.Data)
	}
	return res
}

func conditionCode(d record.ConditionData) map[string]interface{} {
	code := map[string]interface{}{"text": d.Name}
	var codings []interface{}
	if d.SnomedCode != "" {
		codings = append(codings, map[string]interface{}{
			"system":  "http://snomed.info/sct",
			"code":    d.SnomedCode,
			"display": d.Name,
		})
	}
	if d.ICD10Code != "" {
		codings = append(codings, map[string]interface{}{
			"system":  "http://hl7.org/fhir/sid/icd-10",
			"code":    d.ICD10Code,
			"display": d.Name,
		})
	}
	if len(codings) > 0 {
		code["coding"] = codings
	}
	return code
}

func mergeData(res map[string]interface{}, data record.Data) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return
	}
	for k, v := range fields {
		if _, taken := res[k]; !taken {
			res[k] = v
		}
	}
}

// MarshalIndent renders the bundle as indented JSON, matching the
// download format clients expect.
func (b *Bundle) MarshalIndent() ([]byte, error) {
	out, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return out, nil
}
