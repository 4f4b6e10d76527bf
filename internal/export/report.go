package export

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/medgraph/medgraph/internal/record"
)

var typeLabels = map[record.Type]string{
	record.TypePatient:      "Patient Information",
	record.TypePractitioner: "Healthcare Practitioners",
	record.TypeEncounter:    "Medical Encounters",
	record.TypeCondition:    "Conditions & Diagnoses",
	record.TypeMedication:   "Medications",
	record.TypeProcedure:    "Procedures",
	record.TypeObservation:  "Observations",
	record.TypeDocument:     "Documents",
}

const reportHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Medical Records Export</title>
<style>
body { font-family: system-ui, -apple-system, sans-serif; padding: 40px; }
h1 { color: #1e40af; border-bottom: 3px solid #3b82f6; padding-bottom: 10px; }
h2 { color: #475569; margin-top: 30px; border-bottom: 2px solid #cbd5e1; padding-bottom: 5px; }
.record { background: #f8fafc; padding: 15px; margin: 15px 0; border-left: 4px solid #3b82f6; }
.field { margin: 8px 0; }
.label { font-weight: bold; color: #334155; }
.value { color: #64748b; }
.codes { background: #fef3c7; padding: 8px; margin-top: 8px; border-radius: 4px; }
.code-label { font-weight: bold; color: #92400e; }
</style>
</head>
<body>
`

const reportFoot = `<footer style="margin-top: 50px; padding-top: 20px; border-top: 1px solid #e2e8f0; color: #64748b; font-size: 12px;">
<p>This document contains personal medical information and should be handled securely.</p>
<p>Generated by Personal Health Record System</p>
</footer>
</body>
</html>
`

// HTMLReport renders every record grouped by variant, in the fixed graph
// order, as a printable standalone page.
func HTMLReport(recs []*record.Record, now time.Time) string {
	grouped := make(map[record.Type][]*record.Record)
	for _, rec := range recs {
		grouped[rec.Type] = append(grouped[rec.Type], rec)
	}

	var sb strings.Builder
	sb.WriteString(reportHead)
	sb.WriteString("<h1>Personal Medical Records</h1>\n")
	sb.WriteString("<p><strong>Export Date:</strong> " + now.UTC().Format("2 January 2006 15:04") + "</p>\n")

	for _, t := range record.AllTypes {
		group := grouped[t]
		if len(group) == 0 {
			continue
		}
		sb.WriteString("<h2>" + html.EscapeString(typeLabels[t]) + "</h2>\n")
		for _, rec := range group {
			writeRecordBlock(&sb, rec)
		}
	}

	sb.WriteString(reportFoot)
	return sb.String()
}

func writeRecordBlock(sb *strings.Builder, rec *record.Record) {
	sb.WriteString("<div class=\"record\">\n")
	writeField(sb, "Title", rec.Title)

	for _, f := range dataFields(rec.Data) {
		writeField(sb, formatFieldName(f.name), f.value)
	}

	if cond, ok := rec.Data.(record.ConditionData); ok && (cond.SnomedCode != "" || cond.ICD10Code != "") {
		sb.WriteString("<div class=\"codes\">\n")
		if cond.SnomedCode != "" {
			sb.WriteString("<div><span class=\"code-label\">SNOMED CT:</span> " + html.EscapeString(cond.SnomedCode) + "</div>\n")
		}
		if cond.ICD10Code != "" {
			sb.WriteString("<div><span class=\"code-label\">ICD-10:</span> " + html.EscapeString(cond.ICD10Code) + "</div>\n")
		}
		sb.WriteString("</div>\n")
	}

	sb.WriteString("</div>\n")
}

func writeField(sb *strings.Builder, label, value string) {
	sb.WriteString("<div class=\"field\"><span class=\"label\">" + html.EscapeString(label) +
		":</span> <span class=\"value\">" + html.EscapeString(value) + "</span></div>\n")
}

type field struct {
	name  string
	value string
}

func dataFields(data record.Data) []field {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}

	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]field, 0, len(names))
	for _, name := range names {
		v := m[name]
		if v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if s == "" {
			continue
		}
		fields = append(fields, field{name: name, value: s})
	}
	return fields
}

// formatFieldName turns a camelCase JSON key into a spaced, capitalized
// label: "onsetDate" becomes "Onset Date".
func formatFieldName(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if i == 0 {
			sb.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			sb.WriteRune(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
