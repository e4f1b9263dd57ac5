package services

import (
	"fmt"
	"strings"
)

// NoJobDescription stands in for the job description when none is stored.
const NoJobDescription = "No specific job description found. Please evaluate general qualifications."

const jsonOnly = "Respond with a single JSON object and nothing else."

type PromptBuilder struct {
	minRating float64
	maxRating float64
}

func NewPromptBuilder(minRating, maxRating float64) *PromptBuilder {
	return &PromptBuilder{minRating: minRating, maxRating: maxRating}
}

// BuildResumeParsingPrompt asks for the candidate's structured resume.
func (pb *PromptBuilder) BuildResumeParsingPrompt(resumeText string) string {
	return fmt.Sprintf(`You are an expert HR assistant extracting structured information from a resume.

RESUME:
%s

Extract the candidate's personal details, work history, education, skills and projects.
Use null for personal details that are not present. Do not invent information.

Return your response in the following JSON format:
{
  "personal_info": {"name": "<string|null>", "email": "<string|null>", "phone": "<string|null>", "location": "<string|null>", "title": "<string|null>"},
  "experience": [{"company": "<string>", "title": "<string>", "dates": "<string>", "responsibilities": ["<string>"]}],
  "education": [{"degree": "<string>", "institution": "<string>", "year": "<string>"}],
  "skills": ["<string>"],
  "projects": [{"name": "<string>", "description": "<string>"}]
}

%s`, resumeText, jsonOnly)
}

// BuildJobAnalysisPrompt asks for the requirements of the job description.
func (pb *PromptBuilder) BuildJobAnalysisPrompt(jobDescription, jobTitle string) string {
	return fmt.Sprintf(`You are an expert HR assistant analyzing a job description for a %s position.

JOB DESCRIPTION:
%s

Identify the required and preferred skills, the expected experience level, the education
requirement and the key responsibilities of the role.

Return your response in the following JSON format:
{
  "required_skills": ["<string>"],
  "preferred_skills": ["<string>"],
  "experience_level": "<string>",
  "education": "<string>",
  "responsibilities": ["<string>"]
}

%s`, titleOrDefault(jobTitle), jobDescription, jsonOnly)
}

// BuildEvaluationPrompt compares the parsed resume with the job requirements.
func (pb *PromptBuilder) BuildEvaluationPrompt(parsedResume, jobRequirements, jobTitle, rubric string) string {
	return fmt.Sprintf(`You are an expert HR recruiter evaluating a candidate for a %s position.

CANDIDATE (parsed resume):
%s

JOB REQUIREMENTS:
%s

EVALUATION GUIDELINES:
%s

Compare the candidate's skills, experience and education with the requirements.
match_percentage is a number from 0 to 100.

Return your response in the following JSON format:
{
  "skills_match": {"matching_skills": ["<string>"], "missing_skills": ["<string>"], "match_percentage": <number>},
  "experience_assessment": "<string>",
  "education_fit": "<string>",
  "overall_assessment": "<string>"
}

%s`, titleOrDefault(jobTitle), parsedResume, jobRequirements, rubricOrDefault(rubric), jsonOnly)
}

// BuildGapAnalysisPrompt looks for gaps and inconsistencies in the resume.
func (pb *PromptBuilder) BuildGapAnalysisPrompt(resumeText, jobRequirements, evaluation string) string {
	return fmt.Sprintf(`You are an expert HR assistant identifying gaps and inconsistencies in a candidate's resume.

Focus on employment gaps, short tenures, vague descriptions of responsibilities,
mismatches between claimed skills and demonstrated experience, and missing information.
Be constructive and point out areas to clarify during interviews.

RESUME:
%s

JOB REQUIREMENTS:
%s

PREVIOUS EVALUATION:
%s

Return your response in the following JSON format:
{
  "missing_skills": ["<string>"],
  "experience_gaps": ["<string>"],
  "development_areas": ["<string>"],
  "overall_concerns": "<string>"
}

%s`, resumeText, jobRequirements, evaluation, jsonOnly)
}

// BuildRatingPrompt asks for a single score within the configured bounds.
func (pb *PromptBuilder) BuildRatingPrompt(jobDescription, resumeText, evaluation, gaps, rubric string) string {
	return fmt.Sprintf(`You are an expert HR assistant rating a candidate from %[1]s (poor fit) to %[2]s (excellent fit).

Consider technical skills match, relevant experience, education and certifications,
project portfolio, career progression and collaboration indicators.

RATING GUIDELINES:
%[3]s

JOB DESCRIPTION:
%[4]s

RESUME:
%[5]s

PREVIOUS EVALUATION:
%[6]s

GAP ANALYSIS:
%[7]s

Return your response in the following JSON format:
{
  "value": <number between %[1]s and %[2]s>,
  "justification": "<string>",
  "strengths": ["<string>"],
  "weaknesses": ["<string>"]
}

%[8]s`, formatBound(pb.minRating), formatBound(pb.maxRating), rubricOrDefault(rubric),
		jobDescription, resumeText, evaluation, gaps, jsonOnly)
}

// BuildInterviewNotesPrompt prepares questions for the recruiter.
func (pb *PromptBuilder) BuildInterviewNotesPrompt(jobDescription, resumeText, evaluation, gaps, rating string) string {
	return fmt.Sprintf(`You are an expert HR assistant preparing interview notes for a recruiter.

Suggest technical questions based on the candidate's experience, behavioral questions
about past work and collaboration, and areas to probe deeper because of gaps or
mismatches with the role.

JOB DESCRIPTION:
%s

RESUME:
%s

CANDIDATE EVALUATION:
%s

GAP ANALYSIS:
%s

CANDIDATE RATING:
%s

Return your response in the following JSON format:
{
  "technical_questions": ["<string>"],
  "behavioral_questions": ["<string>"],
  "areas_to_explore": ["<string>"]
}

%s`, jobDescription, resumeText, evaluation, gaps, rating, jsonOnly)
}

// BuildRetrievalQuery creates the rubric search query for a job title.
func (pb *PromptBuilder) BuildRetrievalQuery(jobTitle string) string {
	if strings.TrimSpace(jobTitle) == "" {
		return "Candidate evaluation criteria and scoring guidelines"
	}
	return fmt.Sprintf("Candidate evaluation criteria and scoring guidelines for %s", jobTitle)
}

// FormatRAGContext joins retrieved rubric chunks into one prompt section.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}

func titleOrDefault(jobTitle string) string {
	if t := strings.TrimSpace(jobTitle); t != "" {
		return t
	}
	return "general"
}

func rubricOrDefault(rubric string) string {
	if r := strings.TrimSpace(rubric); r != "" {
		return r
	}
	return "No additional guidelines. Use standard recruiting judgement."
}

func formatBound(v float64) string {
	return fmt.Sprintf("%g", v)
}
