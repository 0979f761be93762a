package domain

import "testing"

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Severity
	}{
		{"mild", "mild", SeverityMild},
		{"mixed case padded", "  Moderate ", SeverityModerate},
		{"severe", "SEVERE", SeveritySevere},
		{"pain score 2", "2", SeverityMild},
		{"pain score 5", "5", SeverityModerate},
		{"pain score 7", "7", SeveritySevere},
		{"pain score 10", "10", SeveritySevere},
		{"unknown passes through", "Extreme", Severity("extreme")},
		{"empty", "", Severity("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSeverity(tt.input); got != tt.want {
				t.Errorf("ParseSeverity(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSeverityRank(t *testing.T) {
	if !(SeverityMild.Rank() < SeverityModerate.Rank() &&
		SeverityModerate.Rank() < SeveritySevere.Rank() &&
		SeveritySevere.Rank() < SeverityCritical.Rank()) {
		t.Error("severity ranks should be strictly increasing mild < moderate < severe < critical")
	}
	if Severity("whatever").Rank() != 0 {
		t.Error("unknown severity should rank 0")
	}
}

func TestValidSeverity(t *testing.T) {
	for _, s := range []string{"mild", "moderate", "severe"} {
		if !ValidSeverity(s) {
			t.Errorf("ValidSeverity(%q) = false, want true", s)
		}
	}
	if ValidSeverity("critical") {
		t.Error("critical is a sentinel and must not be a valid corpus severity")
	}
}

func TestSecondaryOpinion_Disagrees(t *testing.T) {
	yes, no := true, false
	alt, empty := "Influenza", ""

	tests := []struct {
		name    string
		opinion SecondaryOpinion
		want    string
		wantOK  bool
	}{
		{"no opinion", NoOpinion(), "", false},
		{"agrees", SecondaryOpinion{Match: &yes, Suggested: &alt}, "", false},
		{"disagrees without alternative", SecondaryOpinion{Match: &no}, "", false},
		{"disagrees with empty alternative", SecondaryOpinion{Match: &no, Suggested: &empty}, "", false},
		{"disagrees with alternative", SecondaryOpinion{Match: &no, Suggested: &alt}, "Influenza", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.opinion.Disagrees()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Disagrees() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
