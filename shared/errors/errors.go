package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Scope      string // key of the entry in the error list, "server" if empty
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// FieldViolation is one request field that is missing or not a string.
type FieldViolation struct {
	Scope   string // "request_body" or "query"
	Field   string
	Missing bool
}

func (v FieldViolation) Message() string {
	source := "body"
	if v.Scope == "query" {
		source = "query"
	}
	if v.Missing {
		return fmt.Sprintf("Request %s missing property [%s].", source, v.Field)
	}
	return fmt.Sprintf("Request %s property [%s] value must be a string.", source, v.Field)
}

// ShapeError collects every violated field, in the order the operation declares them.
type ShapeError struct {
	Violations []FieldViolation
}

func (e *ShapeError) Error() string {
	if len(e.Violations) == 0 {
		return "malformed request"
	}
	return e.Violations[0].Message()
}

type NotFoundKind int

const (
	BoardNotFound NotFoundKind = iota
	ThreadNotFound
	ReplyNotFound
)

type NotFoundError struct {
	Kind     NotFoundKind
	Board    string
	ThreadId string
	ReplyId  string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case ThreadNotFound:
		return fmt.Sprintf("Thread [%s] not found in board [%s].", e.ThreadId, e.Board)
	case ReplyNotFound:
		return fmt.Sprintf("Reply [%s] not found in thread [%s] in board [%s].", e.ReplyId, e.ThreadId, e.Board)
	default:
		return fmt.Sprintf("Board [%s] not found.", e.Board)
	}
}

func NewBoardNotFound(board string) error {
	return &NotFoundError{Kind: BoardNotFound, Board: board}
}

func NewThreadNotFound(threadId, board string) error {
	return &NotFoundError{Kind: ThreadNotFound, Board: board, ThreadId: threadId}
}

func NewReplyNotFound(replyId, threadId, board string) error {
	return &NotFoundError{Kind: ReplyNotFound, Board: board, ThreadId: threadId, ReplyId: replyId}
}

var ErrIncorrectPassword = errors.New("Incorrect Password")

// ConflictError means the board name is taken.
type ConflictError struct {
	Board string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Board [%s] already exists. Please choose another name.", e.Board)
}

type ValidationError struct {
	Scope   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StoreFailure hides a persistence error from the caller. Err is only logged.
type StoreFailure struct {
	Write bool
	Err   error
}

func (e *StoreFailure) Error() string {
	if e.Write {
		return "Database Write Error."
	}
	return "Database Read Error."
}

func (e *StoreFailure) Unwrap() error {
	return e.Err
}

// Is reports whether err is (or wraps) an error of type T.
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// IsTyped reports whether err already belongs to the taxonomy and must pass through unchanged.
func IsTyped(err error) bool {
	return Is[*ShapeError](err) || Is[*NotFoundError](err) || Is[*ConflictError](err) ||
		Is[*ValidationError](err) || Is[*StoreFailure](err) || Is[*ErrorWithStatusCode](err) ||
		errors.Is(err, ErrIncorrectPassword)
}

// Read wraps an untyped storage error from a read path.
func Read(err error) error {
	if err == nil || IsTyped(err) {
		return err
	}
	return &StoreFailure{Err: err}
}

// Write wraps an untyped storage error from a write path.
func Write(err error) error {
	if err == nil || IsTyped(err) {
		return err
	}
	return &StoreFailure{Write: true, Err: err}
}

// Entry is a single element of the error list sent to clients.
type Entry map[string]string

// Describe maps err to a status code and the list of entries sent to the client.
// Anything outside the taxonomy is a 500 without details.
func Describe(err error) (int, []Entry) {
	var (
		shape      *ShapeError
		notFound   *NotFoundError
		conflict   *ConflictError
		validation *ValidationError
		store      *StoreFailure
		withStatus *ErrorWithStatusCode
	)
	switch {
	case errors.As(err, &shape):
		entries := make([]Entry, len(shape.Violations))
		for i, v := range shape.Violations {
			entries[i] = Entry{v.Scope: v.Message()}
		}
		return http.StatusBadRequest, entries
	case errors.As(err, &notFound):
		scope := "request"
		if notFound.Kind == BoardNotFound {
			scope = "endpoint"
		}
		return http.StatusNotFound, []Entry{{scope: notFound.Error()}}
	case errors.Is(err, ErrIncorrectPassword):
		return http.StatusBadRequest, []Entry{{"password": ErrIncorrectPassword.Error()}}
	case errors.As(err, &conflict):
		return http.StatusBadRequest, []Entry{{"name": conflict.Error()}}
	case errors.As(err, &validation):
		return http.StatusBadRequest, []Entry{{validation.Scope: validation.Message}}
	case errors.As(err, &store):
		return http.StatusInternalServerError, []Entry{{"server": store.Error()}}
	case errors.As(err, &withStatus):
		scope := withStatus.Scope
		if scope == "" {
			scope = "server"
		}
		return withStatus.StatusCode, []Entry{{scope: withStatus.Message}}
	default:
		return http.StatusInternalServerError, []Entry{{"server": "Internal server error."}}
	}
}
