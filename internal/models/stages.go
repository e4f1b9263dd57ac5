package models

// Stage structures. Every list field is non-nil in a normalized value so the
// JSON encoding carries [] instead of null.

type PersonalInfo struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
	Title    *string `json:"title"`
}

type ExperienceEntry struct {
	Company          string   `json:"company"`
	Title            string   `json:"title"`
	Dates            string   `json:"dates"`
	Responsibilities []string `json:"responsibilities"`
}

type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

type ProjectEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ParsedResume struct {
	PersonalInfo PersonalInfo      `json:"personal_info"`
	Experience   []ExperienceEntry `json:"experience"`
	Education    []EducationEntry  `json:"education"`
	Skills       []string          `json:"skills"`
	Projects     []ProjectEntry    `json:"projects"`
}

type JobRequirements struct {
	RequiredSkills   []string `json:"required_skills"`
	PreferredSkills  []string `json:"preferred_skills"`
	ExperienceLevel  string   `json:"experience_level"`
	Education        string   `json:"education"`
	Responsibilities []string `json:"responsibilities"`
}

type SkillsMatch struct {
	MatchingSkills  []string `json:"matching_skills"`
	MissingSkills   []string `json:"missing_skills"`
	MatchPercentage float64  `json:"match_percentage"`
}

type EvaluationResult struct {
	SkillsMatch          SkillsMatch `json:"skills_match"`
	ExperienceAssessment string      `json:"experience_assessment"`
	EducationFit         string      `json:"education_fit"`
	OverallAssessment    string      `json:"overall_assessment"`
}

type GapAnalysis struct {
	MissingSkills    []string `json:"missing_skills"`
	ExperienceGaps   []string `json:"experience_gaps"`
	DevelopmentAreas []string `json:"development_areas"`
	OverallConcerns  string   `json:"overall_concerns"`
}

// Rating holds the candidate score. Value is nil when the model gave none.
type Rating struct {
	Value         *float64 `json:"value"`
	Justification string   `json:"justification"`
	Strengths     []string `json:"strengths"`
	Weaknesses    []string `json:"weaknesses"`
}

type InterviewNotes struct {
	TechnicalQuestions  []string `json:"technical_questions"`
	BehavioralQuestions []string `json:"behavioral_questions"`
	AreasToExplore      []string `json:"areas_to_explore"`
}

func DefaultParsedResume() ParsedResume {
	return ParsedResume{
		Experience: []ExperienceEntry{},
		Education:  []EducationEntry{},
		Skills:     []string{},
		Projects:   []ProjectEntry{},
	}
}

func DefaultJobRequirements() JobRequirements {
	return JobRequirements{
		RequiredSkills:   []string{},
		PreferredSkills:  []string{},
		Responsibilities: []string{},
	}
}

func DefaultEvaluationResult() EvaluationResult {
	return EvaluationResult{
		SkillsMatch: SkillsMatch{
			MatchingSkills: []string{},
			MissingSkills:  []string{},
		},
	}
}

func DefaultGapAnalysis() GapAnalysis {
	return GapAnalysis{
		MissingSkills:    []string{},
		ExperienceGaps:   []string{},
		DevelopmentAreas: []string{},
	}
}

func DefaultRating() Rating {
	return Rating{
		Strengths:  []string{},
		Weaknesses: []string{},
	}
}

func DefaultInterviewNotes() InterviewNotes {
	return InterviewNotes{
		TechnicalQuestions:  []string{},
		BehavioralQuestions: []string{},
		AreasToExplore:      []string{},
	}
}
