package crisis

import (
	"reflect"
	"testing"
)

func TestDetect(t *testing.T) {
	s := NewScanner(nil)

	tests := []struct {
		text string
		want bool
	}{
		{"I feel hopeless", true},
		{"I want to KILL MYSELF", true},
		{"thinking about Self-Harm again", true},
		{"hopelessly devoted", true},
		{"suicide prevention week", true},
		{"I am not suicidal", false},
		{"killing it at work", false},
		{"", false},
		{"great day, went for a run", false},
	}
	for _, tt := range tests {
		if got := s.Detect(tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestMatchesKeywordOrder(t *testing.T) {
	s := NewScanner(nil)
	got := s.Matches("so hopeless, thinking of suicide")
	want := []string{"suicide", "hopeless"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Matches = %v, want %v", got, want)
	}
	if got := s.Matches("fine"); got != nil {
		t.Errorf("Matches(no hit) = %v, want nil", got)
	}
}

func TestNewScannerNormalizes(t *testing.T) {
	s := NewScanner([]string{"  Overdose ", "", "   "})
	if !reflect.DeepEqual(s.Keywords(), []string{"overdose"}) {
		t.Errorf("Keywords = %v, want [overdose]", s.Keywords())
	}
	if !s.Detect("thinking about an OVERDOSE") {
		t.Error("custom keyword not detected")
	}
	if s.Detect("I feel hopeless") {
		t.Error("default keyword matched with a custom list")
	}
}

func TestNewScannerBlankFallsBackToDefaults(t *testing.T) {
	s := NewScanner([]string{" ", ""})
	if !reflect.DeepEqual(s.Keywords(), DefaultKeywords) {
		t.Errorf("Keywords = %v, want defaults %v", s.Keywords(), DefaultKeywords)
	}
}
