package engine

import "testing"

func TestSoftSkillScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate []string
		required  []string
		want      float64
	}{
		{
			name:      "full overlap",
			candidate: []string{"Communication", "Teamwork"},
			required:  []string{"communication", "teamwork"},
			want:      1.0,
		},
		{
			name:      "half overlap",
			candidate: []string{"Communication", "Teamwork"},
			required:  []string{"communication", "leadership"},
			want:      0.5,
		},
		{
			name:      "no overlap",
			candidate: []string{"patience"},
			required:  []string{"communication", "leadership"},
			want:      0.0,
		},
		{
			name:      "no requirement with candidate skills",
			candidate: []string{"communication"},
			required:  nil,
			want:      0.3,
		},
		{
			name:      "no requirement and no candidate skills",
			candidate: nil,
			required:  nil,
			want:      0.0,
		},
		{
			name:      "case insensitive",
			candidate: []string{"  LEADERSHIP "},
			required:  []string{"leadership"},
			want:      1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SoftSkillScore(tt.candidate, tt.required)
			if !floatEq(got, tt.want) {
				t.Errorf("SoftSkillScore(%v, %v) = %v, want %v", tt.candidate, tt.required, got, tt.want)
			}
		})
	}
}
