package classify

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Mode selects how readings are judged.
type Mode string

const (
	// ModeThreshold evaluates readings against the configured operator and
	// bounds.
	ModeThreshold Mode = "threshold"
	// ModeNone disables judgement; every reading gets VerdictNone.
	ModeNone Mode = "none"
)

// Operator names a threshold comparison.
type Operator string

const (
	OpLT      Operator = "lt"
	OpLE      Operator = "le"
	OpGT      Operator = "gt"
	OpGE      Operator = "ge"
	OpEQ      Operator = "eq"
	OpBetween Operator = "between"
)

// Rule is one threshold judgement rule. Low is the bound for lt/le/eq, High
// for gt/ge; between uses both, inclusive at each end.
type Rule struct {
	Mode     Mode
	Operator Operator
	Low      decimal.Decimal
	High     decimal.Decimal
}

// Verdict is the threshold-mode outcome for one reading.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictFail    Verdict = "FAIL"
	VerdictUnknown Verdict = "UNKNOWN"
	VerdictNone    Verdict = "NONE"
)

// Result carries a verdict and the comparison that produced it.
type Result struct {
	Verdict Verdict
	Reason  string
}

// Evaluate judges a reading against the rule. A nil value (no numeric token
// parsed from the frame) yields UNKNOWN, as do unrecognized modes and
// operators; Evaluate never fails.
func Evaluate(value *decimal.Decimal, rule Rule) Result {
	if rule.Mode == ModeNone {
		return Result{VerdictNone, "classification disabled"}
	}
	if value == nil {
		return Result{VerdictUnknown, "no numeric value parsed"}
	}
	if rule.Mode != ModeThreshold {
		// placeholder for future modes
		return Result{VerdictUnknown, fmt.Sprintf("unknown mode: %s", rule.Mode)}
	}

	v, lo, hi := *value, rule.Low, rule.High

	var ok bool
	var expr string
	switch rule.Operator {
	case OpLT:
		ok = v.LessThan(lo)
		expr = fmt.Sprintf("%s < %s", v, lo)
	case OpLE:
		ok = v.LessThanOrEqual(lo)
		expr = fmt.Sprintf("%s <= %s", v, lo)
	case OpGT:
		ok = v.GreaterThan(hi)
		expr = fmt.Sprintf("%s > %s", v, hi)
	case OpGE:
		ok = v.GreaterThanOrEqual(hi)
		expr = fmt.Sprintf("%s >= %s", v, hi)
	case OpEQ:
		ok = v.Equal(lo)
		expr = fmt.Sprintf("%s == %s", v, lo)
	case OpBetween:
		ok = v.GreaterThanOrEqual(lo) && v.LessThanOrEqual(hi)
		expr = fmt.Sprintf("%s <= %s <= %s", lo, v, hi)
	default:
		return Result{VerdictUnknown, fmt.Sprintf("unknown operator: %s", rule.Operator)}
	}

	if ok {
		return Result{VerdictPass, expr}
	}
	return Result{VerdictFail, expr}
}
