package ai

import (
	"encoding/json"
	"strings"

	"github.com/vcscsvcscs/healthscope/internal/apperr"
	"github.com/vcscsvcscs/healthscope/pkg/model"
)

// MaxHospitals caps the number of hospitals returned for one lookup
const MaxHospitals = 10

// StripCodeFences removes a surrounding markdown code block (``` or ```json)
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		// drop the language tag line
		if tag := strings.TrimSpace(text[:nl]); !strings.ContainsAny(tag, "[{") {
			text = text[nl+1:]
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// ExtractJSON returns the JSON value in a model reply: the whole reply, the body
// of a surrounding code fence, or the first balanced array or object in prose.
func ExtractJSON(text string) (string, bool) {
	cleaned := StripCodeFences(text)
	if json.Valid([]byte(cleaned)) {
		return cleaned, true
	}
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '[' && cleaned[i] != '{' {
			continue
		}
		if span, ok := balancedSpan(cleaned[i:]); ok && json.Valid([]byte(span)) {
			return span, true
		}
	}
	return cleaned, false
}

// balancedSpan returns the prefix of text up to the bracket closing text[0].
// Brackets inside string literals are ignored.
func balancedSpan(text string) (string, bool) {
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}
	return "", false
}

// DecodeHospitals parses a model reply into at most MaxHospitals entries.
// A syntactically invalid reply is a schema error; a valid reply that is not
// an array yields an empty list. Array elements that are not objects are skipped.
func DecodeHospitals(raw string) ([]model.Hospital, error) {
	cleaned, _ := ExtractJSON(raw)

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return nil, apperr.AISchema(SchemaMessage, err)
	}
	if _, ok := value.([]any); !ok {
		return []model.Hospital{}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elements); err != nil {
		return nil, apperr.AISchema(SchemaMessage, err)
	}

	hospitals := make([]model.Hospital, 0, min(len(elements), MaxHospitals))
	for _, el := range elements {
		if len(hospitals) == MaxHospitals {
			break
		}
		var h model.Hospital
		if err := json.Unmarshal(el, &h); err != nil {
			continue
		}
		if strings.TrimSpace(h.Name) == "" {
			continue
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, nil
}
