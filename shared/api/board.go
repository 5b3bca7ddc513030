package api

import (
	"github.com/msgboard/msgboard/shared/domain"
)

// Response DTOs

type BoardEntry struct {
	Board       domain.BoardName `json:"board"`
	ThreadCount int              `json:"thread_count"`
}

// BoardListResponse wraps a list of boards
type BoardListResponse struct {
	Boards []BoardEntry `json:"boards"`
}

func NewBoardListResponse(boards []domain.BoardMetadata) BoardListResponse {
	entries := make([]BoardEntry, len(boards))
	for i, b := range boards {
		entries[i] = BoardEntry{Board: b.Name, ThreadCount: b.ThreadCount}
	}
	return BoardListResponse{Boards: entries}
}
