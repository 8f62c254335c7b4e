package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ICD10Code is a single extracted diagnosis code.
type ICD10Code struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// SOAPNote is the four-section clinical note produced from a transcript.
type SOAPNote struct {
	Subjective string `json:"Subjective"`
	Objective  string `json:"Objective"`
	Assessment string `json:"Assessment"`
	Plan       string `json:"Plan"`
}

// RadiologyReport is the structured report produced for a medical image.
// AnswerToUserQuestion is nil whenever no question was asked or the model gave no answer.
type RadiologyReport struct {
	Technique            string  `json:"technique"`
	Findings             string  `json:"findings"`
	Impression           string  `json:"impression"`
	Recommendations      string  `json:"recommendations"`
	AnswerToUserQuestion *string `json:"answer_to_user_question"`
}

// DecodeICD10Codes converts a parsed generic result into code records.
func DecodeICD10Codes(v any) ([]ICD10Code, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: icd10 result is %T, want list", ErrUnexpectedResult, v)
	}
	codes := make([]ICD10Code, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: icd10 entry %d is %T, want object", ErrUnexpectedResult, i, item)
		}
		codes = append(codes, ICD10Code{
			Code:        stringify(m["code"]),
			Description: stringify(m["description"]),
		})
	}
	return codes, nil
}

// DecodeSOAPNote converts a parsed generic result into a SOAP note. Missing
// sections default to the empty string.
func DecodeSOAPNote(v any) (SOAPNote, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return SOAPNote{}, fmt.Errorf("%w: soap result is %T, want object", ErrUnexpectedResult, v)
	}
	return SOAPNote{
		Subjective: stringify(m["Subjective"]),
		Objective:  stringify(m["Objective"]),
		Assessment: stringify(m["Assessment"]),
		Plan:       stringify(m["Plan"]),
	}, nil
}

// DecodeRadiologyReport converts a parsed generic result into a report. The
// answer is kept only when questionAsked is true and the model supplied one.
func DecodeRadiologyReport(v any, questionAsked bool) (RadiologyReport, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return RadiologyReport{}, fmt.Errorf("%w: image_analysis result is %T, want object", ErrUnexpectedResult, v)
	}
	r := RadiologyReport{
		Technique:       stringify(m["technique"]),
		Findings:        stringify(m["findings"]),
		Impression:      stringify(m["impression"]),
		Recommendations: stringify(m["recommendations"]),
	}
	if questionAsked {
		answer := strings.TrimSpace(stringify(m["answer_to_user_question"]))
		if answer != "" && !strings.EqualFold(answer, "null") {
			r.AnswerToUserQuestion = &answer
		}
	}
	return r, nil
}

// stringify flattens a generic JSON value into display text. Lists (models
// often answer SOAP sections with bullet arrays) are joined line by line.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		lines := make([]string, 0, len(x))
		for _, item := range x {
			if s := stringify(item); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	case json.Number:
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
