package engine

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// educationUnknownPenalty applies when the job states a requirement
	// but the candidate's education text matches no ladder band.
	educationUnknownPenalty = 0.2

	// educationMeetBase is the score for exactly meeting the requirement.
	// Each full level above it adds educationExceedStep, capped at
	// educationExceedCap of bonus.
	educationMeetBase   = 0.85
	educationExceedStep = 0.1
	educationExceedCap  = 0.2

	// educationShortfallFloor bounds the ratio score for candidates
	// below the required level.
	educationShortfallFloor = 0.3

	// With no stated requirement, a recognized degree scores
	// educationNoReqBase plus level/educationNoReqScale, and unrecognized
	// text scores educationNoReqUnknown.
	educationNoReqBase    = 0.6
	educationNoReqScale   = 5.0
	educationNoReqUnknown = 0.4
)

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldEducationText lowercases and strips diacritics so that French degree
// spellings (ingénieur, licence, baccalauréat) hit the same ladder keywords
// as their ASCII forms.
func foldEducationText(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// InferDegreeLevel maps free-form education text to a ladder level. Bands
// are scanned from highest to lowest, so text mentioning several degrees
// resolves to the most advanced one. The second return is false when no
// keyword matches.
func (t *Taxonomy) InferDegreeLevel(education string) (float64, bool) {
	folded := foldEducationText(education)
	if folded == "" {
		return 0, false
	}
	for _, band := range t.ladder {
		for _, keyword := range band.Keywords {
			if strings.Contains(folded, keyword) {
				return band.Level, true
			}
		}
	}
	return 0, false
}

// EducationScore computes the education sub-score in [0,1] from the
// candidate's and the job's education text.
func (t *Taxonomy) EducationScore(candidate, required string) float64 {
	candLevel, candKnown := t.InferDegreeLevel(candidate)
	reqLevel, reqKnown := t.InferDegreeLevel(required)

	if !reqKnown {
		if candKnown {
			return math.Min(1.0, educationNoReqBase+candLevel/educationNoReqScale)
		}
		return educationNoReqUnknown
	}

	if !candKnown {
		return educationUnknownPenalty
	}

	if candLevel >= reqLevel {
		bonus := math.Min(educationExceedCap, (candLevel-reqLevel)*educationExceedStep)
		return math.Min(1.0, educationMeetBase+bonus)
	}

	return math.Max(educationShortfallFloor, candLevel/reqLevel)
}
