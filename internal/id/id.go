package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Scheme selects how transaction IDs are assigned.
type Scheme string

const (
	// SchemeSequential numbers transactions "1", "2", ... within one run.
	SchemeSequential Scheme = "sequential"
	// SchemeContent derives a UUIDv5 from the raw row, stable across runs.
	SchemeContent Scheme = "content"
)

// rowNamespace is the UUIDv5 namespace for content-derived IDs. Changing it
// changes every content ID ever issued.
var rowNamespace = uuid.MustParse("6f1c7a52-2d7e-5b6e-9a43-4c1f0b8e2d11")

// ParseScheme validates a scheme name. Empty means sequential.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemeSequential:
		return SchemeSequential, nil
	case SchemeContent:
		return SchemeContent, nil
	default:
		return "", fmt.Errorf("unknown id scheme %q", s)
	}
}

// Allocator hands out transaction IDs for one conversion run.
type Allocator interface {
	Assign(rawRow string) string
}

// NewAllocator returns a fresh allocator for scheme.
func NewAllocator(scheme Scheme) Allocator {
	if scheme == SchemeContent {
		return NewContent()
	}
	return NewSequence()
}

// Sequence assigns "1", "2", "3", ... in call order.
type Sequence struct {
	next int
}

// NewSequence returns a Sequence starting at 1.
func NewSequence() *Sequence {
	return &Sequence{next: 1}
}

// Assign returns the next unused integer as a string. The row is ignored.
func (s *Sequence) Assign(_ string) string {
	id := strconv.Itoa(s.next)
	s.next++
	return id
}

// Content assigns UUIDv5 IDs derived from the raw row text. Repeated
// identical rows get an occurrence suffix mixed in, so two identical
// purchases on the same day still receive distinct IDs.
type Content struct {
	seen map[string]int
}

// NewContent returns an empty Content allocator.
func NewContent() *Content {
	return &Content{seen: make(map[string]int)}
}

// Assign returns the ID for rawRow.
func (c *Content) Assign(rawRow string) string {
	n := c.seen[rawRow]
	c.seen[rawRow] = n + 1
	return ContentID(rawRow, n)
}

// ContentID returns the UUIDv5 for the nth occurrence (0-based) of rawRow.
func ContentID(rawRow string, occurrence int) string {
	key := rawRow
	if occurrence > 0 {
		key = fmt.Sprintf("%s#%d", rawRow, occurrence)
	}
	return uuid.NewSHA1(rowNamespace, []byte(key)).String()
}

// NextNumeric returns one more than the largest integer ID in ids, or 1.
// Non-numeric IDs are ignored.
func NextNumeric(ids []string) int {
	maxID := 0
	for _, s := range ids {
		n, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return maxID + 1
}
