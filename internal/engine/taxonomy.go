package engine

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DegreeBand maps a set of keywords to an ordinal degree level.
type DegreeBand struct {
	Level    float64  `yaml:"level"`
	Keywords []string `yaml:"keywords"`
}

// Taxonomy holds the skill synonym table and the degree ladder.
// It is immutable after construction; a single instance is shared
// across concurrent scoring calls.
type Taxonomy struct {
	synonyms map[string][]string
	ladder   []DegreeBand

	// aliasIndex maps every alias back to its canonical skill so that
	// expansion is symmetric: a match on either spelling counts.
	aliasIndex map[string]string
}

// defaultSynonyms maps canonical skill names to accepted aliases.
// Keys and values are stored pre-normalized (lowercase, trimmed).
var defaultSynonyms = map[string][]string{
	"javascript":              {"js", "ecmascript"},
	"typescript":              {"ts"},
	"react":                   {"reactjs", "react.js"},
	"angular":                 {"angularjs"},
	"vue":                     {"vuejs", "vue.js"},
	"node.js":                 {"node", "nodejs"},
	"golang":                  {"go"},
	"c#":                      {"csharp", ".net c#"},
	"c++":                     {"cpp"},
	"aws":                     {"amazon web services"},
	"gcp":                     {"google cloud", "google cloud platform"},
	"azure":                   {"microsoft azure"},
	"kubernetes":              {"k8s"},
	"postgresql":              {"postgres"},
	"mongodb":                 {"mongo"},
	"elasticsearch":           {"elastic search", "es"},
	"machine learning":        {"ml"},
	"artificial intelligence": {"ai"},
	"natural language processing": {"nlp"},
	"continuous integration":      {"ci/cd", "ci"},
	"rest":                        {"restful", "rest api"},
	"sql server":                  {"mssql", "microsoft sql server"},
	"version control":             {"git"},
	"user experience":             {"ux"},
	"user interface":              {"ui"},
}

// defaultLadder orders degree bands from highest to lowest attainment.
// Keywords are matched against diacritic-folded, lowercased text, so
// French spellings (doctorat, ingénieur, licence, baccalauréat) resolve
// to the same bands as their English counterparts.
var defaultLadder = []DegreeBand{
	{Level: 4.0, Keywords: []string{"phd", "ph.d", "doctorate", "doctorat", "doctoral"}},
	{Level: 3.5, Keywords: []string{"master", "msc", "m.sc", "mba", "ingenieur", "engineering degree", "bac+5"}},
	{Level: 2.5, Keywords: []string{"bachelor", "licence", "bsc", "b.sc", "bac+3"}},
	{Level: 1.5, Keywords: []string{"associate", "bts", "dut", "bac+2", "diploma"}},
	{Level: 1.2, Keywords: []string{"certificat", "certificate", "certification"}},
	{Level: 0.7, Keywords: []string{"high school", "baccalaureat", "bac", "secondary school", "lycee"}},
}

// NewTaxonomy builds a taxonomy from the given synonym table and ladder.
// Nil arguments select the built-in defaults.
func NewTaxonomy(synonyms map[string][]string, ladder []DegreeBand) *Taxonomy {
	if synonyms == nil {
		synonyms = defaultSynonyms
	}
	if ladder == nil {
		ladder = defaultLadder
	}

	normalized := make(map[string][]string, len(synonyms))
	aliasIndex := make(map[string]string)
	for canonical, aliases := range synonyms {
		key := normalizeToken(canonical)
		if key == "" {
			continue
		}
		cleaned := make([]string, 0, len(aliases))
		for _, alias := range aliases {
			a := normalizeToken(alias)
			if a == "" || a == key {
				continue
			}
			cleaned = append(cleaned, a)
			aliasIndex[a] = key
		}
		normalized[key] = cleaned
	}

	sorted := make([]DegreeBand, len(ladder))
	copy(sorted, ladder)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Level > sorted[j].Level
	})

	return &Taxonomy{
		synonyms:   normalized,
		ladder:     sorted,
		aliasIndex: aliasIndex,
	}
}

// DefaultTaxonomy returns a taxonomy backed by the built-in tables.
func DefaultTaxonomy() *Taxonomy {
	return NewTaxonomy(nil, nil)
}

// Expand returns the working set for a normalized skill set: every token
// plus, for tokens that belong to a synonym group, the canonical name and
// all of its aliases.
func (t *Taxonomy) Expand(skills map[string]struct{}) map[string]struct{} {
	expanded := make(map[string]struct{}, len(skills)*2)
	for skill := range skills {
		expanded[skill] = struct{}{}

		canonical := skill
		if c, ok := t.aliasIndex[skill]; ok {
			canonical = c
		}
		aliases, ok := t.synonyms[canonical]
		if !ok {
			continue
		}
		expanded[canonical] = struct{}{}
		for _, alias := range aliases {
			expanded[alias] = struct{}{}
		}
	}
	return expanded
}

// taxonomyFile is the on-disk override format for synonym and ladder tables.
type taxonomyFile struct {
	Synonyms map[string][]string `yaml:"synonyms"`
	Ladder   []DegreeBand        `yaml:"ladder"`
}

// LoadTaxonomy builds a taxonomy with optional file-based overrides for the
// synonym table and the degree ladder. Empty paths keep the defaults.
func LoadTaxonomy(synonymsPath, ladderPath string) (*Taxonomy, error) {
	synonyms := defaultSynonyms
	ladder := defaultLadder

	if synonymsPath != "" {
		parsed, err := readTaxonomyFile(synonymsPath)
		if err != nil {
			return nil, err
		}
		if len(parsed.Synonyms) == 0 {
			return nil, fmt.Errorf("taxonomy file %s contains no synonym groups", synonymsPath)
		}
		synonyms = parsed.Synonyms
	}

	if ladderPath != "" {
		parsed, err := readTaxonomyFile(ladderPath)
		if err != nil {
			return nil, err
		}
		if len(parsed.Ladder) == 0 {
			return nil, fmt.Errorf("taxonomy file %s contains no ladder bands", ladderPath)
		}
		for _, band := range parsed.Ladder {
			if band.Level <= 0 {
				return nil, fmt.Errorf("taxonomy file %s: ladder level must be positive, got %v", ladderPath, band.Level)
			}
			if len(band.Keywords) == 0 {
				return nil, fmt.Errorf("taxonomy file %s: ladder band %v has no keywords", ladderPath, band.Level)
			}
		}
		ladder = parsed.Ladder
	}

	return NewTaxonomy(synonyms, ladder), nil
}

func readTaxonomyFile(path string) (*taxonomyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file %s: %w", path, err)
	}

	var parsed taxonomyFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy file %s: %w", path, err)
	}
	return &parsed, nil
}

// normalizeToken lowercases and trims a single skill token.
func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
