package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractObject returns the span from the first '{' to the last '}' in raw,
// provided it is valid JSON. Surrounding prose and markdown fences are
// ignored because they fall outside the span. It never panics; ok is false
// when no valid object is found.
func ExtractObject(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end < start {
		return "", false
	}
	candidate := raw[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

// Validator checks a decoded value field by field. A non-nil error sends the
// caller down its fallback path.
type Validator[T any] func(T) error

// Decode extracts and unmarshals a JSON object of type T from raw model
// output, then runs validate if non-nil. Every failure wraps ErrInvalidOutput.
func Decode[T any](raw string, validate Validator[T]) (T, error) {
	var zero T

	obj, ok := ExtractObject(raw)
	if !ok {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	var result T
	if err := json.Unmarshal([]byte(obj), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validate != nil {
		if err := validate(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}
