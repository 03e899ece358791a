package matcher

import "testing"

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"123456", "123459", 1},
		{"عقد", "عقد", 0},
		{"عقد", "عقود", 1},
	}

	for _, test := range tests {
		if got := LevenshteinDistance(test.a, test.b); got != test.want {
			t.Errorf("LevenshteinDistance(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestIdentifierScoreLadder(t *testing.T) {
	tests := []struct {
		name       string
		extracted  string
		candidate  string
		confidence float64
		want       float64
	}{
		{"containment forward", "123456", "lto123456", 0.95, 95},
		{"containment reverse", "lto123456", "123456", 0.95, 95},
		{"containment partial", "3456", "123456", 0.75, 75},
		{"shared suffix", "123456", "999456", 0.95, 66.5},
		{"edit distance", "12345", "12395", 0.80, 40},
		{"no relation", "111", "987654", 0.90, 0},
		{"empty candidate", "123456", "", 0.95, 0},
		{"empty extracted", "", "123456", 0.95, 0},
	}

	for _, test := range tests {
		got := identifierScore(test.extracted, test.candidate, test.confidence)
		if diff := got - test.want; diff > 0.0001 || diff < -0.0001 {
			t.Errorf("%s: identifierScore(%q, %q, %.2f) = %.4f, want %.4f",
				test.name, test.extracted, test.candidate, test.confidence, got, test.want)
		}
	}
}

func TestIdentifierScorePrefersStrongerRung(t *testing.T) {
	// Containment outranks the suffix rung even though both would apply
	got := identifierScore("456", "123456", 0.95)
	if got != 95 {
		t.Errorf("containment should win over suffix, got %.2f, want 95", got)
	}
}

func TestNameTokenScore(t *testing.T) {
	// Two exact token matches out of a three-token candidate name
	got := nameTokenScore("Sun Magic", "Sun Magic Trading", 0.95)
	if diff := got - 47.5; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("nameTokenScore = %.4f, want 47.5", got)
	}

	// Near-miss tokens earn the reduced award
	fuzzy := nameTokenScore("Ahmed Hasan", "Ahmad Hassan", 0.70)
	if diff := fuzzy - 21.0; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("fuzzy nameTokenScore = %.4f, want 21.0", fuzzy)
	}

	if nameTokenScore("", "Sun Magic", 0.95) != 0 {
		t.Error("empty extracted name should score 0")
	}
	if nameTokenScore("Sun Magic", "", 0.95) != 0 {
		t.Error("empty candidate name should score 0")
	}
}

func TestNameTokenScoreCapsBeforeConfidence(t *testing.T) {
	// Mutually contained short tokens accumulate 200 raw points; the cap
	// applies to the raw total first, then confidence scales it down
	got := nameTokenScore("al ali al ali", "al ali", 0.75)
	if diff := got - 75.0; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("capped nameTokenScore = %.4f, want 75.0 (cap applied before confidence)", got)
	}
}
