package engine

// noRequiredSoftSkillsCredit applies when the job lists no soft skills but
// the candidate lists at least one.
const noRequiredSoftSkillsCredit = 0.3

// SoftSkillScore computes the soft-skill sub-score in [0,1] as the fraction
// of required soft skills present in the candidate's normalized set.
func SoftSkillScore(candidate, required []string) float64 {
	candSet := NormalizeSkills(candidate)
	reqSet := NormalizeSkills(required)

	if len(reqSet) == 0 {
		if len(candSet) > 0 {
			return noRequiredSoftSkillsCredit
		}
		return 0.0
	}

	overlap := 0
	for token := range reqSet {
		if _, ok := candSet[token]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(reqSet))
}
