package api

import (
	"github.com/msgboard/msgboard/shared/domain"
)

// Response DTOs

// BoardSummaryResponse is the latest-threads view of a board.
type BoardSummaryResponse struct {
	domain.BoardSummary
}

// ThreadResponse wraps a full thread with all its replies
type ThreadResponse struct {
	Thread domain.ThreadDetail `json:"thread"`
}

type ReportThreadResponse struct {
	Success  string          `json:"success"`
	ThreadId domain.ThreadId `json:"thread_id"`
}

// ReplyAckResponse acknowledges a delete, or a reply report. A thread delete
// carries the thread id in reply_id.
type ReplyAckResponse struct {
	Success string         `json:"success"`
	ReplyId domain.ReplyId `json:"reply_id"`
}

const (
	ThreadReported = "Thread successfully reported."
	ThreadDeleted  = "Thread successfully deleted."
	ReplyReported  = "Reply successfully reported."
	ReplyDeleted   = "Reply successfully deleted."
)
