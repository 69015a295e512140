package scores

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Policy is the numeric coercion applied to every score and total.
type Policy string

const (
	// PolicyFloat rounds half away from zero to two decimal places.
	PolicyFloat Policy = "float"
	// PolicyInteger truncates toward zero.
	PolicyInteger Policy = "integer"
)

// ScoreMode selects how stray characters are removed from a score cell.
type ScoreMode string

const (
	// ScoreModeStrip drops every character that is not a digit or a decimal point.
	ScoreModeStrip ScoreMode = "strip"
	// ScoreModePattern keeps only the first digits[.digits] run.
	ScoreModePattern ScoreMode = "pattern"
)

var numberRun = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFloat, PolicyInteger:
		return p, nil
	case "":
		return PolicyFloat, nil
	default:
		return "", fmt.Errorf("unknown numeric policy %q (want float or integer)", s)
	}
}

// ParseScoreMode validates a score cleaning mode name.
func ParseScoreMode(s string) (ScoreMode, error) {
	switch m := ScoreMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ScoreModeStrip, ScoreModePattern:
		return m, nil
	case "":
		return ScoreModeStrip, nil
	default:
		return "", fmt.Errorf("unknown score mode %q (want strip or pattern)", s)
	}
}

// Apply coerces a value to the policy.
func (p Policy) Apply(d decimal.Decimal) decimal.Decimal {
	if p == PolicyInteger {
		return d.Truncate(0)
	}
	return d.Round(2)
}

// Format renders a value for exports: "1003.00" or "1003".
func (p Policy) Format(d decimal.Decimal) string {
	if p == PolicyInteger {
		return d.Truncate(0).StringFixed(0)
	}
	return d.StringFixed(2)
}

// formatLocale renders a value in the input locale ("1234,56"). Parsing the
// result with the same policy yields the same value.
func (p Policy) formatLocale(d decimal.Decimal) string {
	return strings.Replace(p.Format(d), ".", ",", 1)
}

// NumberParser turns locale formatted score cells into decimals. The zero
// value parses with ScoreModeStrip and PolicyFloat.
type NumberParser struct {
	Mode   ScoreMode
	Policy Policy
}

// Parse converts a raw score cell. Periods are thousands separators and
// commas are decimal points. Anything unparseable is zero.
func (p NumberParser) Parse(raw string) decimal.Decimal {
	s := strings.ReplaceAll(raw, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	if p.Mode == ScoreModePattern {
		s = numberRun.FindString(s)
	} else {
		s = strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' {
				return r
			}
			return -1
		}, s)
	}

	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return p.Policy.Apply(d)
}
