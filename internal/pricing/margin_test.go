package pricing

import "testing"

func TestApplyMarginDefault(t *testing.T) {
	if got := ApplyMargin(100, nil); got != 140 {
		t.Fatalf("expected default 40%% markup to yield 140, got %v", got)
	}
}

func TestApplyMarginExplicitZero(t *testing.T) {
	// An explicit zero margin must not be replaced by the default.
	if got := ApplyMargin(100, MarginOf(0)); got != 100 {
		t.Fatalf("expected explicit zero margin to yield 100, got %v", got)
	}
}

func TestApplyMarginClamp(t *testing.T) {
	if got := ApplyMargin(100, MarginOf(150)); got != 200 {
		t.Fatalf("expected margin clamped to 100%%, got %v", got)
	}
	if got := ApplyMargin(100, MarginOf(-10)); got != 100 {
		t.Fatalf("expected negative margin clamped to 0, got %v", got)
	}
}

func TestApplyMarginRounds(t *testing.T) {
	if got := ApplyMargin(9.99, MarginOf(10)); got != 10.99 {
		t.Fatalf("expected 10.99, got %v", got)
	}
}
