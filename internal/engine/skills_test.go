package engine

import (
	"math"
	"reflect"
	"testing"
)

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalizeSkills(t *testing.T) {
	tests := []struct {
		name   string
		skills []string
		want   map[string]struct{}
	}{
		{
			name:   "lowercases and trims",
			skills: []string{"  Python ", "GO"},
			want:   map[string]struct{}{"python": {}, "go": {}},
		},
		{
			name:   "drops empties and duplicates",
			skills: []string{"python", "Python", "", "   "},
			want:   map[string]struct{}{"python": {}},
		},
		{
			name:   "nil input",
			skills: nil,
			want:   map[string]struct{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSkills(tt.skills)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeSkills(%v) = %v, want %v", tt.skills, got, tt.want)
			}
		})
	}
}

func TestSkillScore(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	tests := []struct {
		name      string
		candidate []string
		job       []string
		want      float64
	}{
		{
			name:      "exact self match",
			candidate: []string{"Python", "Docker"},
			job:       []string{"python", "docker"},
			want:      1.0,
		},
		{
			name:      "synonym heavy match caps at one",
			candidate: []string{"Python", "ReactJS", "AWS"},
			job:       []string{"Python", "React", "Amazon Web Services"},
			want:      1.0,
		},
		{
			name:      "single synonym match",
			candidate: []string{"k8s"},
			job:       []string{"kubernetes", "python"},
			want:      0.7,
		},
		{
			name:      "partial exact match",
			candidate: []string{"python"},
			job:       []string{"python", "java"},
			want:      0.5,
		},
		{
			name:      "no required skills with candidate skills",
			candidate: []string{"python"},
			job:       nil,
			want:      0.5,
		},
		{
			name:      "no required skills and no candidate skills",
			candidate: nil,
			job:       nil,
			want:      0.0,
		},
		{
			name:      "no overlap at all",
			candidate: []string{"cobol"},
			job:       []string{"rust", "haskell"},
			want:      0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := taxonomy.SkillScore(tt.candidate, tt.job)
			if !floatEq(got, tt.want) {
				t.Errorf("SkillScore(%v, %v) = %v, want %v", tt.candidate, tt.job, got, tt.want)
			}
		})
	}
}

func TestSkillScoreRange(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	inputs := [][2][]string{
		{{"python", "go", "aws", "amazon web services"}, {"aws"}},
		{{"js", "javascript", "ecmascript"}, {"javascript"}},
		{{}, {"python"}},
	}
	for _, pair := range inputs {
		got := taxonomy.SkillScore(pair[0], pair[1])
		if got < 0 || got > 1 {
			t.Errorf("SkillScore(%v, %v) = %v, out of [0,1]", pair[0], pair[1], got)
		}
	}
}

func TestMatchedSkills(t *testing.T) {
	matched, missing := MatchedSkills(
		[]string{"Python", "Go", "Docker"},
		[]string{"python", "java", "docker", "kubernetes"},
	)

	wantMatched := []string{"docker", "python"}
	wantMissing := []string{"java", "kubernetes"}

	if !reflect.DeepEqual(matched, wantMatched) {
		t.Errorf("matched = %v, want %v", matched, wantMatched)
	}
	if !reflect.DeepEqual(missing, wantMissing) {
		t.Errorf("missing = %v, want %v", missing, wantMissing)
	}
}

func TestMatchedSkillsEmptyJob(t *testing.T) {
	matched, missing := MatchedSkills([]string{"python"}, nil)
	if len(matched) != 0 || len(missing) != 0 {
		t.Errorf("expected empty results, got matched=%v missing=%v", matched, missing)
	}
}
