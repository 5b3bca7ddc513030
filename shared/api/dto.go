package api

import (
	"github.com/msgboard/msgboard/shared/errors"
)

// Request field names, in the order each operation declares them.
// Shape errors are reported in this order.

const (
	FieldText           = "text"
	FieldDeletePassword = "delete_password"
	FieldThreadId       = "thread_id"
	FieldReplyId        = "reply_id"
	FieldBoard          = "board"
)

var (
	CreateThreadFields = []string{FieldText, FieldDeletePassword}
	ReportThreadFields = []string{FieldThreadId}
	DeleteThreadFields = []string{FieldThreadId, FieldDeletePassword}
	CreateReplyFields  = []string{FieldText, FieldDeletePassword, FieldThreadId}
	GetThreadFields    = []string{FieldThreadId}
	ReportReplyFields  = []string{FieldThreadId, FieldReplyId}
	DeleteReplyFields  = []string{FieldThreadId, FieldReplyId, FieldDeletePassword}
	CreateBoardFields  = []string{FieldBoard}
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error []errors.Entry `json:"error"`
}
