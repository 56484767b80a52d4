// file: internals/features/marking/llm/response_parser.go
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJudgment ekstrak + validasi judgment dari teks mentah model.
// Urutan: buang code fence → cari span {..} seimbang pertama → decode →
// validasi field wajib. Gagal decode = *ParseError (bawa teks asli),
// field wajib hilang/salah tipe = *ValidationError.
func ParseJudgment(raw string) (*Judgment, error) {
	clean := StripCodeFences(raw)

	span, ok := firstJSONObject(clean)
	if !ok {
		return nil, &ParseError{Raw: raw, Err: fmt.Errorf("no JSON object found")}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	if err := requireNumber(fields, "awarded_marks"); err != nil {
		return nil, err
	}
	conf, err := requireNumberValue(fields, "confidence_score")
	if err != nil {
		return nil, err
	}
	if conf < 0 || conf > 1 {
		return nil, &ValidationError{Field: "confidence_score", Reason: fmt.Sprintf("must be within [0,1], got %g", conf)}
	}
	if err := requireNonEmptyString(fields, "feedback"); err != nil {
		return nil, err
	}

	var j Judgment
	if err := json.Unmarshal([]byte(span), &j); err != nil {
		return nil, &ValidationError{Field: "judgment", Reason: err.Error()}
	}

	// array opsional default []
	if j.Strengths == nil {
		j.Strengths = []string{}
	}
	if j.Weaknesses == nil {
		j.Weaknesses = []string{}
	}
	if j.KeyPointsIdentified == nil {
		j.KeyPointsIdentified = []KeyPointFinding{}
	}
	if j.MissingPoints == nil {
		j.MissingPoints = []string{}
	}

	return &j, nil
}

// StripCodeFences buang pembungkus ```json ... ```
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// firstJSONObject span {...} seimbang pertama (kurung dalam string dilewati)
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func requireNumber(fields map[string]json.RawMessage, key string) error {
	_, err := requireNumberValue(fields, key)
	return err
}

func requireNumberValue(fields map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, &ValidationError{Field: key, Reason: "missing"}
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, &ValidationError{Field: key, Reason: "must be a number"}
	}
	return v, nil
}

func requireNonEmptyString(fields map[string]json.RawMessage, key string) error {
	raw, ok := fields[key]
	if !ok {
		return &ValidationError{Field: key, Reason: "missing"}
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return &ValidationError{Field: key, Reason: "must be a string"}
	}
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: key, Reason: "must not be empty"}
	}
	return nil
}
