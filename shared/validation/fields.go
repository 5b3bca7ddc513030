package validation

import (
	internal_errors "github.com/msgboard/msgboard/shared/errors"
)

const (
	ScopeBody  = "request_body"
	ScopeQuery = "query"
)

// Strings checks that every field is present and a string. All violations are
// collected, in the order fields are given, into a single *errors.ShapeError.
// On success the values are returned in the same order.
func (p Payload) Strings(scope string, fields ...string) ([]string, error) {
	values := make([]string, len(fields))
	var violations []internal_errors.FieldViolation
	for i, field := range fields {
		raw, ok := p[field]
		if !ok {
			violations = append(violations, internal_errors.FieldViolation{Scope: scope, Field: field, Missing: true})
			continue
		}
		s, ok := raw.(string)
		if !ok {
			violations = append(violations, internal_errors.FieldViolation{Scope: scope, Field: field})
			continue
		}
		values[i] = s
	}
	if len(violations) > 0 {
		return nil, &internal_errors.ShapeError{Violations: violations}
	}
	return values, nil
}
