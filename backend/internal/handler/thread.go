package handler

import (
	"net/http"

	"github.com/msgboard/msgboard/shared/api"
	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/utils"
)

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	board := boardParam(r)
	values, err := h.bodyStrings(w, r, api.CreateThreadFields...)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	creation := domain.ThreadCreationData{
		Board:          board,
		Text:           values[0],
		DeletePassword: values[1],
	}
	if _, err := h.thread.Create(r.Context(), creation); err != nil {
		utils.WriteError(w, err)
		return
	}

	redirect(w, r, h.viewURL(board)+"/")
}

func (h *Handler) GetThreads(w http.ResponseWriter, r *http.Request) {
	summary, err := h.thread.ListLatest(r.Context(), boardParam(r))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.BoardSummaryResponse{BoardSummary: *summary})
}

func (h *Handler) ReportThread(w http.ResponseWriter, r *http.Request) {
	board := boardParam(r)
	values, err := h.bodyStrings(w, r, api.ReportThreadFields...)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	threadId := values[0]

	if err := h.thread.Report(r.Context(), board, threadId); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.ReportThreadResponse{Success: api.ThreadReported, ThreadId: threadId})
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	board := boardParam(r)
	values, err := h.bodyStrings(w, r, api.DeleteThreadFields...)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	threadId, password := values[0], values[1]

	if err := h.thread.Delete(r.Context(), board, threadId, password); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.ReplyAckResponse{Success: api.ThreadDeleted, ReplyId: threadId})
}
