package assembler

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"alfredoptarigan/resume-evaluator/internal/models"
)

func normalizeParsedResume(obj map[string]any) models.ParsedResume {
	out := models.DefaultParsedResume()

	if info, ok := obj["personal_info"].(map[string]any); ok {
		out.PersonalInfo = models.PersonalInfo{
			Name:     optString(first(info, "name", "full_name")),
			Email:    optString(first(info, "email")),
			Phone:    optString(first(info, "phone", "phone_number")),
			Location: optString(first(info, "location", "address")),
			Title:    optString(first(info, "title", "professional_title", "role")),
		}
	}

	for _, item := range objectList(obj["experience"], "title") {
		entry := models.ExperienceEntry{
			Company:          coerceString(first(item, "company", "company_name", "employer")),
			Title:            coerceString(first(item, "title", "role", "position", "job_title")),
			Dates:            coerceString(first(item, "dates", "duration", "period", "employment_dates")),
			Responsibilities: stringList(first(item, "responsibilities", "achievements", "highlights")),
		}
		if entry.Company == "" && entry.Title == "" && entry.Dates == "" && len(entry.Responsibilities) == 0 {
			continue
		}
		out.Experience = append(out.Experience, entry)
	}

	for _, item := range objectList(obj["education"], "degree") {
		entry := models.EducationEntry{
			Degree:      coerceString(first(item, "degree", "qualification")),
			Institution: coerceString(first(item, "institution", "school", "university")),
			Year:        coerceString(first(item, "year", "graduation_year", "graduation_date", "dates")),
		}
		if entry.Degree == "" && entry.Institution == "" && entry.Year == "" {
			continue
		}
		out.Education = append(out.Education, entry)
	}

	out.Skills = uniqueFold(stringList(obj["skills"]))

	for _, item := range objectList(obj["projects"], "name") {
		entry := models.ProjectEntry{
			Name:        coerceString(first(item, "name", "title", "project_name")),
			Description: coerceString(first(item, "description", "summary")),
		}
		if entry.Name == "" && entry.Description == "" {
			continue
		}
		out.Projects = append(out.Projects, entry)
	}

	return out
}

func normalizeJobRequirements(obj map[string]any) models.JobRequirements {
	return models.JobRequirements{
		RequiredSkills:   stringList(obj["required_skills"]),
		PreferredSkills:  stringList(obj["preferred_skills"]),
		ExperienceLevel:  coerceString(obj["experience_level"]),
		Education:        coerceString(obj["education"]),
		Responsibilities: stringList(obj["responsibilities"]),
	}
}

func normalizeEvaluationResult(obj map[string]any) models.EvaluationResult {
	out := models.DefaultEvaluationResult()

	switch match := obj["skills_match"].(type) {
	case map[string]any:
		out.SkillsMatch.MatchingSkills = stringList(match["matching_skills"])
		out.SkillsMatch.MissingSkills = stringList(match["missing_skills"])
		if pct, ok := coerceNumber(match["match_percentage"]); ok {
			out.SkillsMatch.MatchPercentage = clamp(pct, 0, 100)
		}
	default:
		if pct, ok := coerceNumber(match); ok {
			out.SkillsMatch.MatchPercentage = clamp(pct, 0, 100)
		}
	}

	out.ExperienceAssessment = coerceString(obj["experience_assessment"])
	out.EducationFit = coerceString(obj["education_fit"])
	out.OverallAssessment = coerceString(obj["overall_assessment"])

	return out
}

func normalizeGapAnalysis(obj map[string]any) models.GapAnalysis {
	return models.GapAnalysis{
		MissingSkills:    stringList(obj["missing_skills"]),
		ExperienceGaps:   stringList(obj["experience_gaps"]),
		DevelopmentAreas: stringList(obj["development_areas"]),
		OverallConcerns:  coerceString(obj["overall_concerns"]),
	}
}

func normalizeRating(obj map[string]any, minRating, maxRating float64) models.Rating {
	out := models.Rating{
		Justification: coerceString(obj["justification"]),
		Strengths:     stringList(obj["strengths"]),
		Weaknesses:    stringList(obj["weaknesses"]),
	}

	if value, ok := coerceNumber(obj["value"]); ok {
		value = clamp(value, minRating, maxRating)
		out.Value = &value
	}

	return out
}

func normalizeInterviewNotes(obj map[string]any) models.InterviewNotes {
	return models.InterviewNotes{
		TechnicalQuestions:  stringList(obj["technical_questions"]),
		BehavioralQuestions: stringList(obj["behavioral_questions"]),
		AreasToExplore:      stringList(obj["areas_to_explore"]),
	}
}

// first returns the value of the first key present in m.
func first(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// textKeys are looked up when a model wraps a plain string in an object.
var textKeys = []string{"text", "question", "name", "title", "description", "value"}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		return strings.Join(stringList(val), "; ")
	case map[string]any:
		for _, key := range textKeys {
			if s, ok := val[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		bytes, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(bytes)
	default:
		return ""
	}
}

func optString(v any) *string {
	s := coerceString(v)
	if s == "" {
		return nil
	}
	return &s
}

// stringList always returns a non-nil slice. A single string becomes a
// one-element list and an object is flattened in key order, which turns
// {"technical": [...], "soft": [...]} skill groups into one list.
func stringList(v any) []string {
	out := []string{}

	switch val := v.(type) {
	case nil:
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			out = append(out, stringList(val[key])...)
		}
	default:
		if s := coerceString(val); s != "" {
			out = append(out, s)
		}
	}

	return out
}

// objectList returns the object items of v. Bare strings are wrapped as
// {fallbackKey: s} so a list of degree names still yields education entries.
func objectList(v any, fallbackKey string) []map[string]any {
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case map[string]any:
		items = []any{val}
	default:
		return nil
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case map[string]any:
			out = append(out, it)
		case string:
			if s := strings.TrimSpace(it); s != "" {
				out = append(out, map[string]any{fallbackKey: s})
			}
		}
	}
	return out
}

func uniqueFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// coerceNumber accepts JSON numbers and strings such as "4", "4.5/5" or "85%".
func coerceNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return val, true
	case string:
		match := numberPattern.FindString(val)
		if match == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
