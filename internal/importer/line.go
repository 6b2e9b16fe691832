package importer

import "strings"

// ParseLine splits one CSV line on commas that are not inside double
// quotes. A quote toggles the quoted state and is dropped; there is no
// escaping of embedded quotes. Every field is trimmed.
func ParseLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}
