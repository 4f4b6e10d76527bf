package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/medgraph/medgraph/internal/record"
)

// Result summarizes an import run. Success means every entry was created;
// a partial import still reports the records that made it in.
type Result struct {
	Success        bool     `json:"success"`
	RecordsCreated int      `json:"records_created"`
	Errors         []string `json:"errors"`
}

// Importer writes imported resources through the record service so each
// one gets its derived title, summary and edges.
type Importer struct {
	svc *record.Service
}

func NewImporter(svc *record.Service) *Importer {
	return &Importer{svc: svc}
}

// ImportJSON reads a FHIR bundle, or a single bare resource, and creates a
// record per entry. Entries are independent: one bad resource is reported
// and skipped, the rest still import.
func (i *Importer) ImportJSON(ctx context.Context, raw []byte) *Result {
	res := &Result{Errors: []string{}}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Parse error: %v", err))
		return res
	}

	var resources []map[string]interface{}
	if str(doc, "resourceType") == "Bundle" {
		entries, _ := doc["entry"].([]interface{})
		for _, e := range entries {
			entry, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			if resource, ok := entry["resource"].(map[string]interface{}); ok {
				resources = append(resources, resource)
			}
		}
	} else {
		resources = append(resources, doc)
	}

	for _, resource := range resources {
		if err := i.importResource(ctx, resource); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Error processing %s: %v", str(resource, "resourceType"), err))
			continue
		}
		res.RecordsCreated++
	}

	res.Success = len(res.Errors) == 0
	return res
}

func (i *Importer) importResource(ctx context.Context, resource map[string]interface{}) error {
	resourceType := str(resource, "resourceType")
	t, ok := RecordType(resourceType)
	if !ok {
		return &record.UnsupportedTypeError{Type: resourceType}
	}

	data, err := convertResource(t, resource)
	if err != nil {
		return err
	}
	_, err = i.svc.Create(ctx, t, data, nil)
	return err
}

// convertResource maps a FHIR resource onto a variant payload. The
// variants with proper FHIR shapes are unpacked field by field; the rest
// decode their flat payload fields directly.
func convertResource(t record.Type, resource map[string]interface{}) (record.Data, error) {
	switch t {
	case record.TypePatient:
		return record.PatientData{
			Name:      str(at(resource, "name", 0), "text"),
			BirthDate: str(resource, "birthDate"),
			Gender:    str(resource, "gender"),
			Phone:     telecomValue(resource, "phone"),
			Address:   str(at(resource, "address", 0), "text"),
		}, nil
	case record.TypeCondition:
		code, _ := resource["code"].(map[string]interface{})
		name := str(code, "text")
		if name == "" {
			name = str(at(code, "coding", 0), "display")
		}
		return record.ConditionData{
			Name:           name,
			ClinicalStatus: str(at(obj(resource, "clinicalStatus"), "coding", 0), "code"),
			Severity:       str(at(obj(resource, "severity"), "coding", 0), "display"),
			OnsetDate:      str(resource, "onsetDateTime"),
			SnomedCode:     codingBySystem(code, "snomed"),
			ICD10Code:      codingBySystem(code, "icd"),
		}, nil
	case record.TypeMedication:
		return record.MedicationData{
			Name:      str(obj(resource, "medicationCodeableConcept"), "text"),
			Dosage:    str(at(resource, "dosage", 0), "text"),
			StartDate: str(obj(resource, "effectivePeriod"), "start"),
			EndDate:   str(obj(resource, "effectivePeriod"), "end"),
		}, nil
	case record.TypeEncounter:
		encType := str(obj(resource, "class"), "display")
		if encType == "" {
			encType = str(at(resource, "type", 0), "text")
		}
		return record.EncounterData{
			Type:     encType,
			Date:     str(obj(resource, "period"), "start"),
			Location: str(obj(at(resource, "location", 0), "location"), "display"),
			Reason:   str(at(resource, "reasonCode", 0), "text"),
			Status:   str(resource, "status"),
		}, nil
	default:
		fields := make(map[string]interface{}, len(resource))
		for k, v := range resource {
			if k == "resourceType" || k == "id" || k == "subject" {
				continue
			}
			fields[k] = v
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("encode %s fields: %w", t, err)
		}
		return record.UnmarshalData(t, raw)
	}
}

func str(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func obj(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	o, _ := m[key].(map[string]interface{})
	return o
}

func at(m map[string]interface{}, key string, idx int) map[string]interface{} {
	if m == nil {
		return nil
	}
	arr, _ := m[key].([]interface{})
	if idx >= len(arr) {
		return nil
	}
	o, _ := arr[idx].(map[string]interface{})
	return o
}

func telecomValue(resource map[string]interface{}, system string) string {
	arr, _ := resource["telecom"].([]interface{})
	for _, item := range arr {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if str(entry, "system") == system {
			return str(entry, "value")
		}
	}
	return ""
}

func codingBySystem(code map[string]interface{}, fragment string) string {
	if code == nil {
		return ""
	}
	arr, _ := code["coding"].([]interface{})
	for _, item := range arr {
		coding, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if strings.Contains(str(coding, "system"), fragment) {
			return str(coding, "code")
		}
	}
	return ""
}
