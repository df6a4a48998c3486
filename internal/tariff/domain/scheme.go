package tariff

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheme is the billing structure of a voltage class.
type Scheme string

const (
	SchemeSinglePart Scheme = "single-part"
	SchemeTwoPart    Scheme = "two-part"
)

// SchemeAt labels the scheme of the row at position pos of the selected
// voltage rows.
func SchemeAt(pos int) Scheme {
	switch pos {
	case 0:
		return SchemeSinglePart
	case 1:
		return SchemeTwoPart
	default:
		return Scheme(fmt.Sprintf("scheme-%d", pos+1))
	}
}

// ParseScheme normalizes a scheme label. Station sheets use the document
// wording (单一制, 两部制, 方案N).
func ParseScheme(label string) (Scheme, bool) {
	label = strings.TrimSpace(label)
	switch label {
	case string(SchemeSinglePart), "单一制":
		return SchemeSinglePart, true
	case string(SchemeTwoPart), "两部制":
		return SchemeTwoPart, true
	}
	for _, prefix := range []string{"scheme-", "方案"} {
		if rest, ok := strings.CutPrefix(label, prefix); ok {
			n, err := strconv.Atoi(rest)
			if err != nil || n < 1 {
				return "", false
			}
			return SchemeAt(n - 1), true
		}
	}
	return "", false
}

// Label returns the document wording of s.
func (s Scheme) Label() string {
	switch s {
	case SchemeSinglePart:
		return "单一制"
	case SchemeTwoPart:
		return "两部制"
	}
	if rest, ok := strings.CutPrefix(string(s), "scheme-"); ok {
		return "方案" + rest
	}
	return string(s)
}
