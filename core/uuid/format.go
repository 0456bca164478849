package uuid

import (
	"fmt"
	"strings"
)

// CompactLength is the length of a UUID rendered without dashes.
const CompactLength = 32

// DashedLength is the length of a canonical 8-4-4-4-12 UUID.
const DashedLength = 36

// FormatWithDashes converts a 32 character compact UUID into the 8-4-4-4-12
// grouping. It panics if compact is not exactly 32 bytes long; callers check
// the length first.
func FormatWithDashes(compact string) string {
	if len(compact) != CompactLength {
		panic(fmt.Sprintf("uuid: FormatWithDashes needs %d characters, got %d", CompactLength, len(compact)))
	}

	var b strings.Builder
	b.Grow(DashedLength)
	b.WriteString(compact[0:8])
	b.WriteByte('-')
	b.WriteString(compact[8:12])
	b.WriteByte('-')
	b.WriteString(compact[12:16])
	b.WriteByte('-')
	b.WriteString(compact[16:20])
	b.WriteByte('-')
	b.WriteString(compact[20:32])
	return b.String()
}

// RemoveDashes strips every dash from s.
func RemoveDashes(s string) string {
	return strings.ReplaceAll(s, "-", "")
}

// HasDashes reports whether s contains at least one dash.
func HasDashes(s string) bool {
	return strings.IndexByte(s, '-') >= 0
}
