package classify

import (
	"testing"

	"github.com/shopspring/decimal"
)

func val(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestEvaluate_Between(t *testing.T) {
	rule := Rule{
		Mode:     ModeThreshold,
		Operator: OpBetween,
		Low:      dec("0.10"),
		High:     dec("0.12"),
	}

	tests := []struct {
		value   string
		verdict Verdict
	}{
		{"0.10", VerdictPass}, // inclusive low
		{"0.12", VerdictPass}, // inclusive high
		{"0.11", VerdictPass},
		{"0.099", VerdictFail},
		{"0.121", VerdictFail},
	}

	for _, tc := range tests {
		got := Evaluate(val(tc.value), rule)
		if got.Verdict != tc.verdict {
			t.Errorf("Evaluate(%s, between) = %s (%q), want %s",
				tc.value, got.Verdict, got.Reason, tc.verdict)
		}
	}
}

func TestEvaluate_Operators(t *testing.T) {
	tests := []struct {
		op      Operator
		value   string
		low     string
		high    string
		verdict Verdict
		reason  string
	}{
		{OpLT, "0.112", "0.113", "0", VerdictPass, "0.112 < 0.113"},
		{OpLT, "0.113", "0.113", "0", VerdictFail, "0.113 < 0.113"},
		{OpLE, "0.112", "0.113", "0", VerdictPass, "0.112 <= 0.113"},
		{OpLE, "0.113", "0.113", "0", VerdictPass, "0.113 <= 0.113"},
		{OpGT, "0.114", "0", "0.113", VerdictPass, "0.114 > 0.113"},
		{OpGT, "0.113", "0", "0.113", VerdictFail, "0.113 > 0.113"},
		{OpGE, "0.113", "0", "0.113", VerdictPass, "0.113 >= 0.113"},
		{OpEQ, "0.113", "0.113", "0", VerdictPass, "0.113 == 0.113"},
		{OpEQ, "0.114", "0.113", "0", VerdictFail, "0.114 == 0.113"},
	}

	for _, tc := range tests {
		rule := Rule{Mode: ModeThreshold, Operator: tc.op, Low: dec(tc.low), High: dec(tc.high)}
		got := Evaluate(val(tc.value), rule)
		if got.Verdict != tc.verdict {
			t.Errorf("Evaluate(%s, %s) = %s, want %s", tc.value, tc.op, got.Verdict, tc.verdict)
		}
		if got.Reason != tc.reason {
			t.Errorf("Evaluate(%s, %s) reason = %q, want %q", tc.value, tc.op, got.Reason, tc.reason)
		}
	}
}

func TestEvaluate_ModeNone(t *testing.T) {
	got := Evaluate(val("0.11"), Rule{Mode: ModeNone})
	if got.Verdict != VerdictNone {
		t.Errorf("verdict = %s, want NONE", got.Verdict)
	}
	if got.Reason != "classification disabled" {
		t.Errorf("reason = %q", got.Reason)
	}

	// mode none wins even without a parsed value
	if got := Evaluate(nil, Rule{Mode: ModeNone}); got.Verdict != VerdictNone {
		t.Errorf("verdict = %s, want NONE", got.Verdict)
	}
}

func TestEvaluate_NilValue(t *testing.T) {
	rule := Rule{Mode: ModeThreshold, Operator: OpBetween, Low: dec("0"), High: dec("1")}
	got := Evaluate(nil, rule)
	if got.Verdict != VerdictUnknown {
		t.Errorf("verdict = %s, want UNKNOWN", got.Verdict)
	}
	if got.Reason != "no numeric value parsed" {
		t.Errorf("reason = %q", got.Reason)
	}
}

func TestEvaluate_UnknownModeAndOperator(t *testing.T) {
	got := Evaluate(val("0.11"), Rule{Mode: "window"})
	if got.Verdict != VerdictUnknown || got.Reason != "unknown mode: window" {
		t.Errorf("window mode = (%s, %q)", got.Verdict, got.Reason)
	}

	got = Evaluate(val("0.11"), Rule{Mode: ModeThreshold, Operator: "near"})
	if got.Verdict != VerdictUnknown || got.Reason != "unknown operator: near" {
		t.Errorf("bad operator = (%s, %q)", got.Verdict, got.Reason)
	}
}
