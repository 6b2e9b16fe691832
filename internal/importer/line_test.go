package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"trims", " a , b ,c ", []string{"a", "b", "c"}},
		{"quoted comma", `01/05/2024,"$1,234.56"`, []string{"01/05/2024", "$1,234.56"}},
		{"empty fields", "a,,c,", []string{"a", "", "c", ""}},
		{"empty line", "", []string{""}},
		{"quote toggles mid field", `ab"c,d"e`, []string{"abc,de"}},
		{"unterminated quote", `a,"b,c`, []string{"a", "b,c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLine(tt.line))
		})
	}
}

func TestParseLine_FieldCountIsUnquotedCommasPlusOne(t *testing.T) {
	line := `01/05/2024,01/05/2024,Debit,"STARBUCKS, INC",-$4.50`
	assert.Len(t, ParseLine(line), 5)
}
