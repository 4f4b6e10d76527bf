package export

import (
	"fmt"
	"sort"
	"strings"
)

// XML renders the bundle in FHIR's attribute-value XML style. Scalar
// fields become self-closing elements with a value attribute, nested
// objects and arrays become wrapped elements. Keys are emitted in sorted
// order so the output is deterministic.
func (b *Bundle) XML() string {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<Bundle xmlns=\"http://hl7.org/fhir\">\n")
	sb.WriteString("  <type value=\"" + escapeAttr(b.Type) + "\"/>\n")
	sb.WriteString("  <timestamp value=\"" + escapeAttr(b.Timestamp) + "\"/>\n")

	for _, entry := range b.Entry {
		sb.WriteString("  <entry>\n")
		if entry.FullURL != "" {
			sb.WriteString("    <fullUrl value=\"" + escapeAttr(entry.FullURL) + "\"/>\n")
		}
		sb.WriteString("    <resource>\n")
		writeXMLObject(&sb, entry.Resource, "      ")
		sb.WriteString("    </resource>\n")
		sb.WriteString("  </entry>\n")
	}

	sb.WriteString("</Bundle>")
	return sb.String()
}

func writeXMLObject(sb *strings.Builder, obj map[string]interface{}, indent string) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		writeXMLValue(sb, key, obj[key], indent)
	}
}

func writeXMLValue(sb *strings.Builder, key string, value interface{}, indent string) {
	switch v := value.(type) {
	case nil:
	case map[string]interface{}:
		sb.WriteString(indent + "<" + key + ">\n")
		writeXMLObject(sb, v, indent+"  ")
		sb.WriteString(indent + "</" + key + ">\n")
	case []interface{}:
		for _, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				sb.WriteString(indent + "<" + key + ">\n")
				writeXMLObject(sb, obj, indent+"  ")
				sb.WriteString(indent + "</" + key + ">\n")
			} else {
				sb.WriteString(indent + "<" + key + ">\n")
				sb.WriteString(indent + "  " + escapeText(fmt.Sprint(item)) + "\n")
				sb.WriteString(indent + "</" + key + ">\n")
			}
		}
	default:
		sb.WriteString(indent + "<" + key + " value=\"" + escapeAttr(fmt.Sprint(v)) + "\"/>\n")
	}
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string { return textEscaper.Replace(s) }
