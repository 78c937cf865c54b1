package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpand(t *testing.T) {
	taxonomy := DefaultTaxonomy()

	tests := []struct {
		name   string
		skills []string
		want   []string
	}{
		{
			name:   "alias expands to canonical and siblings",
			skills: []string{"k8s"},
			want:   []string{"k8s", "kubernetes"},
		},
		{
			name:   "canonical expands to aliases",
			skills: []string{"react"},
			want:   []string{"react", "reactjs", "react.js"},
		},
		{
			name:   "unknown token kept as-is",
			skills: []string{"cobol"},
			want:   []string{"cobol"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := taxonomy.Expand(NormalizeSkills(tt.skills))
			for _, token := range tt.want {
				if _, ok := got[token]; !ok {
					t.Errorf("Expand(%v) missing %q, got %v", tt.skills, token, got)
				}
			}
		})
	}
}

func TestNewTaxonomyNormalizes(t *testing.T) {
	taxonomy := NewTaxonomy(map[string][]string{
		"  JavaScript ": {" JS ", "javascript"},
	}, nil)

	expanded := taxonomy.Expand(NormalizeSkills([]string{"js"}))
	if _, ok := expanded["javascript"]; !ok {
		t.Errorf("alias should resolve to normalized canonical, got %v", expanded)
	}
	// Self-referencing aliases are dropped, not duplicated
	if _, ok := expanded["js"]; !ok {
		t.Errorf("original token should be preserved, got %v", expanded)
	}
}

func TestLoadTaxonomyDefaults(t *testing.T) {
	taxonomy, err := LoadTaxonomy("", "")
	if err != nil {
		t.Fatalf("LoadTaxonomy with empty paths failed: %v", err)
	}

	if level, ok := taxonomy.InferDegreeLevel("PhD"); !ok || level != 4.0 {
		t.Errorf("default ladder should recognize PhD, got %v %v", level, ok)
	}
}

func TestLoadTaxonomyOverrides(t *testing.T) {
	dir := t.TempDir()

	synonymsPath := filepath.Join(dir, "synonyms.yaml")
	synonymsYAML := `synonyms:
  terraform:
    - tf
`
	if err := os.WriteFile(synonymsPath, []byte(synonymsYAML), 0600); err != nil {
		t.Fatal(err)
	}

	ladderPath := filepath.Join(dir, "ladder.yaml")
	ladderYAML := `ladder:
  - level: 2.0
    keywords: ["journeyman"]
  - level: 1.0
    keywords: ["apprentice"]
`
	if err := os.WriteFile(ladderPath, []byte(ladderYAML), 0600); err != nil {
		t.Fatal(err)
	}

	taxonomy, err := LoadTaxonomy(synonymsPath, ladderPath)
	if err != nil {
		t.Fatalf("LoadTaxonomy failed: %v", err)
	}

	score := taxonomy.SkillScore([]string{"tf"}, []string{"terraform", "ansible"})
	if !floatEq(score, 0.7) {
		t.Errorf("override synonym score = %v, want 0.7", score)
	}

	if level, ok := taxonomy.InferDegreeLevel("journeyman electrician"); !ok || level != 2.0 {
		t.Errorf("override ladder level = %v %v, want 2.0 true", level, ok)
	}
	// Default ladder is replaced, not merged
	if _, ok := taxonomy.InferDegreeLevel("PhD"); ok {
		t.Error("default ladder bands should not survive an override")
	}
}

func TestLoadTaxonomyErrors(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	tests := []struct {
		name         string
		synonymsPath string
		ladderPath   string
		wantErr      string
	}{
		{
			name:         "missing synonyms file",
			synonymsPath: filepath.Join(dir, "nope.yaml"),
			wantErr:      "failed to read",
		},
		{
			name:         "invalid yaml",
			synonymsPath: writeFile("bad.yaml", "synonyms: [not a map"),
			wantErr:      "failed to parse",
		},
		{
			name:         "empty synonyms",
			synonymsPath: writeFile("empty.yaml", "synonyms: {}"),
			wantErr:      "no synonym groups",
		},
		{
			name:       "empty ladder",
			ladderPath: writeFile("noladder.yaml", "ladder: []"),
			wantErr:    "no ladder bands",
		},
		{
			name:       "non-positive level",
			ladderPath: writeFile("badlevel.yaml", "ladder:\n  - level: 0\n    keywords: [\"x\"]"),
			wantErr:    "must be positive",
		},
		{
			name:       "band without keywords",
			ladderPath: writeFile("nokeywords.yaml", "ladder:\n  - level: 1\n    keywords: []"),
			wantErr:    "has no keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTaxonomy(tt.synonymsPath, tt.ladderPath)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
