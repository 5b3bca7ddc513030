package validation

import "errors"

// ErrPayloadTooLarge is returned when the request body exceeds size limits
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrMalformedBody is returned when the body can't be decoded as JSON or a form
var ErrMalformedBody = errors.New("malformed body")
