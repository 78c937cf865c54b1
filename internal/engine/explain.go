package engine

import (
	"fmt"
	"strconv"
	"strings"

	"cvmatch/internal/types"
)

// Recommendation tiers are driven by the plain average of the four
// sub-scores rather than the weighted overall score. The unweighted view
// surfaces candidates with one strong weighted dimension but weak coverage
// elsewhere, which is exactly what a recruiter reading the explanation
// wants flagged.
const (
	tierHighlyRecommended = 0.8
	tierGoodCandidate     = 0.6
)

// Explain produces the human-readable breakdown for one candidate/job pair.
// Line content depends only on the profiles and sub-scores, so the same
// inputs always produce the same explanation. Every missing skill gets both
// a gap line and a matching training recommendation.
func (t *Taxonomy) Explain(candidate types.CandidateProfile, job types.JobProfile, scores types.SubScores) types.Explanation {
	var expl types.Explanation

	matched, missing := MatchedSkills(candidate.TechnicalSkills, job.RequiredSkills)
	for _, skill := range matched {
		expl.Strengths = append(expl.Strengths, "+ Has required skill: "+skill)
	}
	for _, skill := range missing {
		expl.Gaps = append(expl.Gaps, "- Missing skill: "+skill)
		expl.Recommendations = append(expl.Recommendations,
			fmt.Sprintf("Consider candidates with %s experience or provide training", skill))
	}

	if candidate.ExperienceYears >= job.RequiredExperienceYears {
		expl.Strengths = append(expl.Strengths,
			fmt.Sprintf("+ Meets experience requirement: %s years", formatYears(candidate.ExperienceYears)))
	} else {
		expl.Gaps = append(expl.Gaps,
			fmt.Sprintf("- Experience gap: has %s years, requires %s",
				formatYears(candidate.ExperienceYears), formatYears(job.RequiredExperienceYears)))
		if candidate.ExperienceYears >= 0.7*job.RequiredExperienceYears {
			expl.Recommendations = append(expl.Recommendations,
				"Experience is close to the requirement; consider a practical assessment")
		}
	}

	if job.RequiredEducation != "" {
		if scores.Education >= educationMeetBase {
			expl.Strengths = append(expl.Strengths, "+ Education meets the stated requirement")
		} else {
			expl.Gaps = append(expl.Gaps,
				fmt.Sprintf("- Education below requirement: %s (requires %s)",
					orUnspecified(candidate.Education), job.RequiredEducation))
		}
	}

	coarse := coarseScore(scores)
	expl.Recommendations = append([]string{tierMessage(coarse)}, expl.Recommendations...)
	expl.Narrative = buildNarrative(candidate, job, coarse, matched, missing)

	return expl
}

// coarseScore is the unweighted mean of the four sub-scores, used for the
// recommendation tier and the narrative headline.
func coarseScore(scores types.SubScores) float64 {
	return (scores.TechnicalSkills + scores.Experience + scores.Education + scores.SoftSkills) / 4
}

func tierMessage(coarse float64) string {
	switch {
	case coarse >= tierHighlyRecommended:
		return "Highly recommended candidate"
	case coarse >= tierGoodCandidate:
		return "Good candidate with potential"
	default:
		return "Consider alternative candidates or adjust requirements"
	}
}

func buildNarrative(candidate types.CandidateProfile, job types.JobProfile, coarse float64, matched, missing []string) string {
	var b strings.Builder

	subject := "The candidate"
	if candidate.FullName != "" {
		subject = candidate.FullName
	}
	target := "this position"
	if job.Title != "" {
		target = "the " + job.Title + " position"
	}

	fmt.Fprintf(&b, "Compatibility score: %.0f%%. ", coarse*100)

	switch {
	case len(matched) > 0 && len(missing) == 0:
		fmt.Fprintf(&b, "%s covers every required skill for %s (%s). ", subject, target, strings.Join(matched, ", "))
	case len(matched) > 0:
		fmt.Fprintf(&b, "%s brings %s to %s but lacks %s. ",
			subject, strings.Join(matched, ", "), target, strings.Join(missing, ", "))
	case len(missing) > 0:
		fmt.Fprintf(&b, "%s shows no direct overlap with the required skills for %s (%s). ",
			subject, target, strings.Join(missing, ", "))
	default:
		fmt.Fprintf(&b, "%s was evaluated against %s without a stated skill list. ", subject, target)
	}

	if job.RequiredExperienceYears > 0 {
		if candidate.ExperienceYears >= job.RequiredExperienceYears {
			b.WriteString("Experience meets the requirement. ")
		} else {
			fmt.Fprintf(&b, "Experience falls short of the required %s years. ",
				formatYears(job.RequiredExperienceYears))
		}
	}

	b.WriteString(tierMessage(coarse) + ".")
	return b.String()
}

// Summarize builds an executive summary with suggested interview questions.
// Templated output only; wording comes from the profiles themselves.
func (t *Taxonomy) Summarize(candidate types.CandidateProfile, job types.JobProfile, scores types.SubScores) types.CandidateSummary {
	matched, missing := MatchedSkills(candidate.TechnicalSkills, job.RequiredSkills)
	coarse := coarseScore(scores)

	var b strings.Builder
	subject := "The candidate"
	if candidate.FullName != "" {
		subject = candidate.FullName
	}

	fmt.Fprintf(&b, "%s has %s years of experience", subject, formatYears(candidate.ExperienceYears))
	if candidate.Education != "" {
		fmt.Fprintf(&b, " and holds: %s", candidate.Education)
	}
	b.WriteString(". ")
	if len(matched) > 0 {
		fmt.Fprintf(&b, "Matched skills: %s. ", strings.Join(matched, ", "))
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "Missing skills: %s. ", strings.Join(missing, ", "))
	}
	b.WriteString(tierMessage(coarse) + ".")

	return types.CandidateSummary{
		Summary:            b.String(),
		MatchedSkills:      matched,
		InterviewQuestions: interviewQuestions(matched, missing),
	}
}

const maxInterviewQuestions = 5

func interviewQuestions(matched, missing []string) []string {
	var questions []string
	for _, skill := range matched {
		questions = append(questions,
			fmt.Sprintf("Walk me through a project where you used %s.", skill))
	}
	for _, skill := range missing {
		questions = append(questions,
			fmt.Sprintf("How would you approach getting up to speed with %s?", skill))
	}
	if len(questions) > maxInterviewQuestions {
		questions = questions[:maxInterviewQuestions]
	}
	return questions
}

func formatYears(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return s
}
