package engine

import (
	"math"
	"sort"
)

const (
	// synonymCredit is the fractional credit for a skill matched only
	// through the synonym table rather than by exact token equality.
	synonymCredit = 0.7

	// noRequiredSkillsCredit applies when the job lists no skills but
	// the candidate lists at least one.
	noRequiredSkillsCredit = 0.5
)

// NormalizeSkills lowercases and trims every token and drops empties and
// duplicates. The result is the canonical working set for all skill math.
func NormalizeSkills(skills []string) map[string]struct{} {
	normalized := make(map[string]struct{}, len(skills))
	for _, skill := range skills {
		token := normalizeToken(skill)
		if token == "" {
			continue
		}
		normalized[token] = struct{}{}
	}
	return normalized
}

// SkillScore computes the technical-skill sub-score in [0,1].
//
// Exact matches between the normalized sets count fully. Tokens that only
// meet after synonym expansion count at synonymCredit. The denominator is
// the number of distinct required skills, and the sum is clamped so heavy
// synonym overlap cannot push the score past 1.
func (t *Taxonomy) SkillScore(candidate, job []string) float64 {
	candSet := NormalizeSkills(candidate)
	jobSet := NormalizeSkills(job)

	if len(jobSet) == 0 {
		if len(candSet) > 0 {
			return noRequiredSkillsCredit
		}
		return 0.0
	}

	exact := make(map[string]struct{})
	for token := range candSet {
		if _, ok := jobSet[token]; ok {
			exact[token] = struct{}{}
		}
	}

	expandedCand := t.Expand(candSet)
	expandedJob := t.Expand(jobSet)

	synonym := 0
	for token := range expandedCand {
		if _, ok := expandedJob[token]; !ok {
			continue
		}
		if _, ok := exact[token]; ok {
			continue
		}
		synonym++
	}

	required := float64(len(jobSet))
	score := float64(len(exact))/required + synonymCredit*float64(synonym)/required
	return math.Min(1.0, score)
}

// MatchedSkills splits the job's normalized skills into those the candidate
// has (by exact token equality) and those the candidate lacks. Results are
// returned in sorted order so explanations are deterministic.
func MatchedSkills(candidate, job []string) (matched, missing []string) {
	candSet := NormalizeSkills(candidate)
	jobSet := NormalizeSkills(job)

	for token := range jobSet {
		if _, ok := candSet[token]; ok {
			matched = append(matched, token)
		} else {
			missing = append(missing, token)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)
	return matched, missing
}
