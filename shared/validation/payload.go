package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// Payload is a decoded request body. Values keep their JSON type; form values are
// strings, or []string when a key is repeated.
type Payload map[string]any

// DefaultMaxBodySize bounds a request body. Posts are plain text, so 1 MiB is plenty.
const DefaultMaxBodySize int64 = 1 << 20

// ParsePayload reads a JSON, urlencoded or multipart body. An empty body is an empty payload.
// MaxBytesReader stops reading at maxSize; the client sees a reset connection in that case.
func ParsePayload(w http.ResponseWriter, r *http.Request, maxSize int64) (Payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		return decodeJSON(r)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return nil, bodyError(err)
		}
		return fromValues(r.MultipartForm.Value), nil
	default:
		// ParseForm ignores DELETE bodies, and report/delete requests carry their fields there.
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, bodyError(err)
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, bodyError(err)
		}
		return fromValues(values), nil
	}
}

func decodeJSON(r *http.Request) (Payload, error) {
	var body any
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return Payload{}, nil
		}
		return nil, bodyError(err)
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body is not an object", ErrMalformedBody)
	}
	return Payload(obj), nil
}

func fromValues(values url.Values) Payload {
	p := make(Payload, len(values))
	for k, v := range values {
		if len(v) == 1 {
			p[k] = v[0]
		} else {
			p[k] = v
		}
	}
	return p
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: %v", ErrPayloadTooLarge, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedBody, err)
}

// QueryPayload exposes URL query parameters the same way as a form body.
func QueryPayload(r *http.Request) Payload {
	return fromValues(r.URL.Query())
}
