// Package scoring grades submitted answers against stored answer keys. It is
// pure: no I/O, no shared state, and no input can make it return an error.
package scoring

import (
	"encoding/json"
	"strings"

	"quiz-attempt-service/internal/domain"
)

// IsCorrect reports whether the submitted answer payload matches the
// question's answer key under the comparison rule of the question type.
// Malformed or structurally invalid JSON on either side, missing fields, and
// unknown question types all grade as incorrect rather than failing, so a
// single bad question can never abort a submission batch.
func IsCorrect(q domain.Question, answer json.RawMessage) bool {
	key := q.AnswerKey

	switch q.Type {
	case domain.SingleChoice, domain.ListChoice:
		return eqText(answer, key)
	case domain.TrueFalse:
		return eqBool(answer, key)
	case domain.MultiChoice:
		return eqStringSet(answer, key)
	case domain.ShortAnswer:
		return eqNormalised(answer, key)
	case domain.FillBlanks:
		return eqNormalisedList(answer, key)
	case domain.Sorting:
		return eqStringList(answer, key)
	case domain.Matching:
		return eqStringMap(answer, key)
	default:
		return false
	}
}

// valuePayload covers the {"value": ...} shapes. Pointers distinguish
// missing or null fields from zero values.
type valuePayload struct {
	Value *string `json:"value"`
}

type boolPayload struct {
	Value *bool `json:"value"`
}

// valuesPayload covers the {"values": [...]} shapes. A nil slice means the
// field was missing or null; an empty array decodes to a non-nil slice.
type valuesPayload struct {
	Values []string `json:"values"`
}

type pairsPayload struct {
	Pairs map[string]string `json:"pairs"`
}

func eqText(a, b json.RawMessage) bool {
	va, okA := decodeValue(a)
	vb, okB := decodeValue(b)
	return okA && okB && va == vb
}

func eqBool(a, b json.RawMessage) bool {
	var pa, pb boolPayload
	if json.Unmarshal(a, &pa) != nil || json.Unmarshal(b, &pb) != nil {
		return false
	}
	if pa.Value == nil || pb.Value == nil {
		return false
	}
	return *pa.Value == *pb.Value
}

func eqNormalised(a, b json.RawMessage) bool {
	va, okA := decodeValue(a)
	vb, okB := decodeValue(b)
	return okA && okB && normalise(va) == normalise(vb)
}

func eqStringSet(a, b json.RawMessage) bool {
	la, okA := decodeValues(a)
	lb, okB := decodeValues(b)
	if !okA || !okB {
		return false
	}
	sa := toSet(la)
	sb := toSet(lb)
	if len(sa) != len(sb) {
		return false
	}
	for v := range sa {
		if _, ok := sb[v]; !ok {
			return false
		}
	}
	return true
}

func eqStringList(a, b json.RawMessage) bool {
	la, okA := decodeValues(a)
	lb, okB := decodeValues(b)
	if !okA || !okB || len(la) != len(lb) {
		return false
	}
	for i := range la {
		if la[i] != lb[i] {
			return false
		}
	}
	return true
}

func eqNormalisedList(a, b json.RawMessage) bool {
	la, okA := decodeValues(a)
	lb, okB := decodeValues(b)
	if !okA || !okB || len(la) != len(lb) {
		return false
	}
	for i := range la {
		if normalise(la[i]) != normalise(lb[i]) {
			return false
		}
	}
	return true
}

func eqStringMap(a, b json.RawMessage) bool {
	var pa, pb pairsPayload
	if json.Unmarshal(a, &pa) != nil || json.Unmarshal(b, &pb) != nil {
		return false
	}
	if pa.Pairs == nil || pb.Pairs == nil {
		return false
	}
	if len(pa.Pairs) != len(pb.Pairs) {
		return false
	}
	for k, v := range pa.Pairs {
		if w, ok := pb.Pairs[k]; !ok || v != w {
			return false
		}
	}
	return true
}

func decodeValue(raw json.RawMessage) (string, bool) {
	var p valuePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.Value == nil {
		return "", false
	}
	return *p.Value, true
}

func decodeValues(raw json.RawMessage) ([]string, bool) {
	var p valuesPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.Values == nil {
		return nil, false
	}
	return p.Values, true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// normalise lowercases, trims, and collapses internal whitespace runs to a
// single space, so SHORT_ANSWER and FILL_BLANKS tolerate sloppy typing.
func normalise(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
