package assembler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Extract converts raw model text into a value of the requested kind. It never
// fails: text without a decodable JSON object yields the kind's default
// structure with ParseFailed set.
func (a *Assembler) Extract(raw string, kind SchemaKind) StructuredValue {
	schema, known := a.schemas[kind]
	if !known {
		return Failed(kind)
	}

	obj, ok := locateJSON(raw)
	if !ok {
		return Failed(kind)
	}

	canonicalize(kind, obj)

	out := StructuredValue{Kind: kind}
	out.Issues = validate(schema, obj)

	switch kind {
	case KindParsedResume:
		out.value = normalizeParsedResume(obj)
	case KindJobRequirements:
		out.value = normalizeJobRequirements(obj)
	case KindEvaluationResult:
		out.value = normalizeEvaluationResult(obj)
	case KindGapAnalysis:
		out.value = normalizeGapAnalysis(obj)
	case KindRating:
		out.value = normalizeRating(obj, a.cfg.MinRating, a.cfg.MaxRating)
	case KindInterviewNotes:
		out.value = normalizeInterviewNotes(obj)
	}

	return out
}

// locateJSON returns the first JSON object embedded in text. Candidates start at
// every '{' or '[' from left to right; the first one that decodes into a
// complete value wins, so the outermost well-formed value is preferred over the
// objects nested inside it. An array yields its first non-empty object element.
// Empty objects such as a "{}" placeholder in prose are only used when nothing
// else decodes.
func locateJSON(text string) (map[string]any, bool) {
	var empty map[string]any

	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}

		var obj map[string]any
		switch val := v.(type) {
		case map[string]any:
			obj = val
		case []any:
			obj = firstObject(val)
		}

		if len(obj) > 0 {
			return obj, true
		}
		if obj != nil && empty == nil {
			empty = obj
		}
		// skip past the decoded value
		i += int(dec.InputOffset()) - 1
	}

	if empty != nil {
		return empty, true
	}
	return nil, false
}

// firstObject returns the first non-empty object in items, else the first
// empty one, else nil.
func firstObject(items []any) map[string]any {
	var empty map[string]any
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if len(obj) > 0 {
			return obj
		}
		if empty == nil {
			empty = obj
		}
	}
	return empty
}

func validate(schema *gojsonschema.Schema, obj map[string]any) []string {
	result, err := schema.Validate(gojsonschema.NewGoLoader(obj))
	if err != nil {
		return []string{fmt.Sprintf("schema validation unavailable: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return issues
}

// aliases maps canonical top-level keys to the alternative names models use
// for them. The canonical key always wins when both are present.
var aliases = map[SchemaKind]map[string][]string{
	KindParsedResume: {
		"personal_info": {"personal_information", "contact", "contact_info"},
		"experience":    {"work_experience", "employment"},
		"projects":      {"project"},
	},
	KindJobRequirements: {
		"required_skills":  {"required", "must_have_skills"},
		"preferred_skills": {"preferred", "nice_to_have_skills"},
		"experience_level": {"years_of_experience", "experience"},
		"education":        {"education_requirements", "education_requirement"},
		"responsibilities": {"key_responsibilities", "duties"},
	},
	KindEvaluationResult: {
		"experience_assessment": {"experience_relevance", "experience_summary"},
		"education_fit":         {"education_alignment", "education_summary"},
		"overall_assessment":    {"analysis", "job_match_analysis", "summary"},
	},
	KindGapAnalysis: {
		"missing_skills":    {"skill_mismatches", "missing_qualifications"},
		"experience_gaps":   {"employment_gaps"},
		"development_areas": {"areas_for_development", "areas_needing_clarification"},
		"overall_concerns":  {"analysis", "concerns"},
	},
	KindRating: {
		"value":         {"rating", "overall_rating", "score", "overall_fit_score"},
		"justification": {"reasoning", "reason", "explanation"},
		"weaknesses":    {"areas_for_development", "concerns"},
	},
	KindInterviewNotes: {
		"technical_questions":  {"questions", "skill_verification"},
		"behavioral_questions": {"experience_questions", "behavioural_questions"},
		"areas_to_explore":     {"focus_areas", "areas_to_probe", "concerns_to_address"},
	},
}

func canonicalize(kind SchemaKind, obj map[string]any) {
	for canonical, alts := range aliases[kind] {
		if _, ok := obj[canonical]; ok {
			continue
		}
		for _, alt := range alts {
			if v, ok := obj[alt]; ok {
				obj[canonical] = v
				break
			}
		}
	}

	if kind == KindEvaluationResult {
		canonicalizeSkillsMatch(obj)
	}
}

// canonicalizeSkillsMatch lifts flat skills-match fields into the nested object.
func canonicalizeSkillsMatch(obj map[string]any) {
	nested, _ := obj["skills_match"].(map[string]any)
	if nested == nil {
		if _, present := obj["skills_match"]; present {
			return
		}
		nested = map[string]any{}
	}

	lift := map[string][]string{
		"matching_skills":  {"matching_skills", "matched_skills"},
		"missing_skills":   {"missing_skills"},
		"match_percentage": {"match_percentage", "skills_match_percentage"},
	}
	lifted := false
	for key, alts := range lift {
		if _, ok := nested[key]; ok {
			continue
		}
		for _, alt := range alts {
			if v, ok := obj[alt]; ok {
				nested[key] = v
				lifted = true
				break
			}
		}
	}

	if _, ok := obj["skills_match"]; ok || lifted {
		obj["skills_match"] = nested
	}
}
