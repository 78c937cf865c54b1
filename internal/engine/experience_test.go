package engine

import "testing"

func TestExperienceScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate float64
		required  float64
		want      float64
	}{
		{"partial ratio", 3, 5, 0.6},
		{"meets exactly", 5, 5, 1.0},
		{"exceeds capped", 10, 5, 1.0},
		{"no requirement", 5, 0, 1.0},
		{"negative requirement", 5, -1, 1.0},
		{"no experience", 0, 5, 0.0},
		{"negative experience", -2, 5, 0.0},
		{"fractional years", 1.5, 2, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExperienceScore(tt.candidate, tt.required)
			if !floatEq(got, tt.want) {
				t.Errorf("ExperienceScore(%v, %v) = %v, want %v", tt.candidate, tt.required, got, tt.want)
			}
		})
	}
}
