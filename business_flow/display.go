package businessflow

import (
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/referral-hub/app/dto"
	"github.com/cespare/xxhash/v2"
)

const day = 24 * time.Hour

// tagPalette is indexed by TagColor; order matters for numeric ids
var tagPalette = [...]dto.TagColor{
	{Background: "#E6F4EA", Text: "#137333"},
	{Background: "#E8F0FE", Text: "#1A73E8"},
	{Background: "#FEF7E0", Text: "#B06000"},
	{Background: "#FCE8E6", Text: "#C5221F"},
	{Background: "#F3E8FD", Text: "#8430CE"},
	{Background: "#E6F4F1", Text: "#137366"},
}

// FormatRelativeDate renders t relative to now using whole elapsed days:
// "Today", "Yesterday", "<n> days ago" up to six days, then "Jan 2".
func FormatRelativeDate(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}

	switch days := int(diff / day); {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return strconv.Itoa(days) + " days ago"
	default:
		return t.Format("Jan 2")
	}
}

// TagColor picks a palette entry for a tag id.
// Ids with a leading decimal integer use that integer modulo the palette size,
// anything else uses a hash of the whole id.
func TagColor(id string) dto.TagColor {
	n := len(tagPalette)
	if idx, ok := leadingIntMod(id, n); ok {
		return tagPalette[idx]
	}
	return tagPalette[xxhash.Sum64String(id)%uint64(n)]
}

// leadingIntMod parses an optionally signed run of leading digits and returns it modulo m,
// folded into [0, m). Digits are reduced as they are read so long ids cannot overflow.
func leadingIntMod(s string, m int) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	negative := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}

	rem, digits := 0, 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		rem = (rem*10 + int(s[i]-'0')) % m
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if negative {
		rem = (m - rem) % m
	}
	return rem, true
}
