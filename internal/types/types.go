package types

// CandidateProfile holds the extracted attributes of a candidate.
// All fields default to their zero value; scorers treat empty collections
// and zero years as valid, scorable inputs.
type CandidateProfile struct {
	FullName        string    `json:"fullName,omitempty"`
	Text            string    `json:"text,omitempty"`
	TechnicalSkills []string  `json:"technicalSkills"`
	SoftSkills      []string  `json:"softSkills"`
	ExperienceYears float64   `json:"experienceYears"`
	Education       string    `json:"education"`
	Embedding       []float32 `json:"embedding,omitempty"`
}

// JobProfile holds the extracted requirements of a job posting.
type JobProfile struct {
	Title                   string    `json:"title,omitempty"`
	Text                    string    `json:"text,omitempty"`
	RequiredSkills          []string  `json:"requiredSkills"`
	RequiredSoftSkills      []string  `json:"requiredSoftSkills"`
	RequiredExperienceYears float64   `json:"requiredExperienceYears"`
	RequiredEducation       string    `json:"requiredEducation"`
	Embedding               []float32 `json:"embedding,omitempty"`
}

// SubScores holds the four per-dimension scores, each in [0,1].
// A full scoring pass always populates every field.
type SubScores struct {
	TechnicalSkills float64 `json:"technicalSkills"`
	Experience      float64 `json:"experience"`
	Education       float64 `json:"education"`
	SoftSkills      float64 `json:"softSkills"`
}

// Explanation is the human-readable breakdown of a match.
type Explanation struct {
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
	Narrative       string   `json:"narrative"`
}

// MatchResult is the full output for one candidate/job pair.
type MatchResult struct {
	CandidateName string      `json:"candidateName,omitempty"`
	JobTitle      string      `json:"jobTitle,omitempty"`
	Similarity    float64     `json:"similarity"`
	SubScores     SubScores   `json:"subScores"`
	OverallScore  float64     `json:"overallScore"`
	Explanation   Explanation `json:"explanation"`
	Degraded      bool        `json:"degraded,omitempty"` // true when a placeholder embedding was used
}

// BatchMatchResult is the output of matching one job against many candidates.
type BatchMatchResult struct {
	Count   int           `json:"count"`
	Matches []MatchResult `json:"matches"`
	Errors  []string      `json:"errors,omitempty"`
}

// EmbedResult is the output of a standalone embedding request.
type EmbedResult struct {
	Embedding   []float32 `json:"embedding"`
	Dimension   int       `json:"dimension"`
	Placeholder bool      `json:"placeholder"`
}

// CandidateSummary is an executive summary of a candidate for a job.
type CandidateSummary struct {
	Summary            string   `json:"summary"`
	MatchedSkills      []string `json:"matchedSkills"`
	InterviewQuestions []string `json:"interviewQuestions"`
}
