package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/validation"
)

// boardParam returns the decoded {board} path segment. chi matches on RawPath
// when the request has one, and only then is the segment still escaped.
func boardParam(r *http.Request) domain.BoardName {
	param := chi.URLParam(r, "board")
	if r.URL.RawPath == "" {
		return param
	}
	if name, err := url.PathUnescape(param); err == nil {
		return name
	}
	return param
}

// bodyStrings parses the request body and returns the named string fields in order.
// Every missing or non-string field is reported in one shape error.
func (h *Handler) bodyStrings(w http.ResponseWriter, r *http.Request, fields ...string) ([]string, error) {
	maxSize := h.maxBodySize
	if maxSize <= 0 {
		maxSize = validation.DefaultMaxBodySize
	}
	payload, err := validation.ParsePayload(w, r, maxSize)
	if err != nil {
		return nil, err
	}
	return payload.Strings(validation.ScopeBody, fields...)
}

func queryStrings(r *http.Request, fields ...string) ([]string, error) {
	return validation.QueryPayload(r).Strings(validation.ScopeQuery, fields...)
}

// viewURL builds a front-end link under public_url, e.g. /b/{board}/{thread}.
func (h *Handler) viewURL(segments ...string) string {
	var b strings.Builder
	if h.cfg != nil {
		b.WriteString(strings.TrimRight(h.cfg.Public.PublicURL, "/"))
	}
	b.WriteString("/b")
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}
