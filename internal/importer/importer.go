package importer

import (
	"sort"
	"strings"
)

// Field is a canonical transaction field a CSV column can feed.
type Field int

const (
	FieldUnknown Field = iota
	FieldPostedDate
	FieldTransactionDate
	FieldType
	FieldDescription
	FieldAmount
)

func (f Field) String() string {
	switch f {
	case FieldPostedDate:
		return "posted date"
	case FieldTransactionDate:
		return "transaction date"
	case FieldType:
		return "transaction type"
	case FieldDescription:
		return "description"
	case FieldAmount:
		return "amount"
	default:
		return "unknown"
	}
}

// Layout maps a bank's header names to canonical fields. Header names are
// matched exactly.
type Layout struct {
	Name    string
	Columns map[string]Field
}

// Resolve maps each header to its field; unrecognized headers map to
// FieldUnknown and are ignored by the Builder.
func (l *Layout) Resolve(headers []string) []Field {
	fields := make([]Field, len(headers))
	for i, h := range headers {
		fields[i] = l.Columns[h]
	}
	return fields
}

// Missing returns the fields among want that no header maps to.
func (l *Layout) Missing(headers []string, want ...Field) []Field {
	have := make(map[Field]bool)
	for _, f := range l.Resolve(headers) {
		have[f] = true
	}
	var missing []Field
	for _, f := range want {
		if !have[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// TruistLayout is the combined-statement export: Posted Date,
// Transaction Date, Transaction Type, Description, Amount.
func TruistLayout() *Layout {
	return &Layout{
		Name: "truist",
		Columns: map[string]Field{
			"Posted Date":      FieldPostedDate,
			"Transaction Date": FieldTransactionDate,
			"Transaction Type": FieldType,
			"Description":      FieldDescription,
			"Amount":           FieldAmount,
		},
	}
}

// ChaseLayout is the Chase checking export: Details, Posting Date,
// Description, Amount, Type, Balance, Check or Slip #.
func ChaseLayout() *Layout {
	return &Layout{
		Name: "chase",
		Columns: map[string]Field{
			"Posting Date": FieldPostedDate,
			"Type":         FieldType,
			"Description":  FieldDescription,
			"Amount":       FieldAmount,
		},
	}
}

// Registry holds named layouts.
type Registry struct {
	layouts map[string]*Layout
}

// NewRegistry creates an empty layout registry.
func NewRegistry() *Registry {
	return &Registry{layouts: make(map[string]*Layout)}
}

// Register adds a layout. Panics on duplicate name.
func (r *Registry) Register(l *Layout) {
	key := strings.ToLower(l.Name)
	if _, ok := r.layouts[key]; ok {
		panic("duplicate layout: " + key)
	}
	r.layouts[key] = l
}

// Get returns the layout for name, or nil.
func (r *Registry) Get(name string) *Layout {
	return r.layouts[strings.ToLower(name)]
}

// Names returns the registered layout names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.layouts))
	for _, l := range r.layouts {
		names = append(names, l.Name)
	}
	sort.Strings(names)
	return names
}

// DefaultLayout is used when no layout is configured.
const DefaultLayout = "truist"

// DefaultRegistry returns a registry with all built-in layouts.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TruistLayout())
	r.Register(ChaseLayout())
	return r
}
