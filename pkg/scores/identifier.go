package scores

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agentstation/scoremerge/pkg/constants"
)

// IDMode selects how periods inside a raw identifier are cleaned.
type IDMode string

const (
	// IDModeLegacy strips one trailing period ("10." -> "10").
	IDModeLegacy IDMode = "legacy"
	// IDModeThousands strips every period, treating them as digit grouping ("1.234" -> "1234").
	IDModeThousands IDMode = "thousands"
)

var digitRun = regexp.MustCompile(`\d+`)

// ParseIDMode validates an identifier mode name.
func ParseIDMode(s string) (IDMode, error) {
	switch m := IDMode(strings.ToLower(strings.TrimSpace(s))); m {
	case IDModeLegacy, IDModeThousands:
		return m, nil
	case "":
		return IDModeLegacy, nil
	default:
		return "", fmt.Errorf("unknown id mode %q (want legacy or thousands)", s)
	}
}

// NormalizeID canonicalizes a raw identifier cell into a join key.
//
// The key is the first maximal run of decimal digits left after the
// mode-specific period cleanup, without leading zeros. When the cell has no
// digit at all the key is the sentinel "0" and reconciled is false.
func NormalizeID(raw string, mode IDMode) (key string, reconciled bool) {
	s := strings.TrimSpace(raw)
	switch mode {
	case IDModeThousands:
		s = strings.ReplaceAll(s, ".", "")
	default:
		s = strings.TrimSuffix(s, ".")
	}

	run := digitRun.FindString(s)
	if run == "" {
		return constants.SentinelID, false
	}

	run = strings.TrimLeft(run, "0")
	if run == "" {
		run = "0"
	}
	return run, true
}
