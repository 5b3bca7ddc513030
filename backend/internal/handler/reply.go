package handler

import (
	"net/http"

	"github.com/msgboard/msgboard/shared/api"
	"github.com/msgboard/msgboard/shared/domain"
	"github.com/msgboard/msgboard/shared/utils"
)

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	board := boardParam(r)
	values, err := h.bodyStrings(w, r, api.CreateReplyFields...)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	creation := domain.ReplyCreationData{
		Board:          board,
		Text:           values[0],
		DeletePassword: values[1],
		ThreadId:       values[2],
	}
	if _, err := h.reply.Create(r.Context(), creation); err != nil {
		utils.WriteError(w, err)
		return
	}

	redirect(w, r, h.viewURL(board, creation.ThreadId))
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	board := boardParam(r)
	values, err := queryStrings(r, api.GetThreadFields...)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	thread, err := h.reply.GetThread(r.Context(), board, values[0])
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.ThreadResponse{Thread: *thread})
}

func (h *Handler) ReportReply(w http.ResponseWriter, r *http.Request) {
	board := boardParam(r)
	values, err := h.bodyStrings(w, r, api.ReportReplyFields...)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	threadId, replyId := values[0], values[1]

	if err := h.reply.Report(r.Context(), board, threadId, replyId); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.ReplyAckResponse{Success: api.ReplyReported, ReplyId: replyId})
}

func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	board := boardParam(r)
	values, err := h.bodyStrings(w, r, api.DeleteReplyFields...)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	threadId, replyId, password := values[0], values[1], values[2]

	if err := h.reply.Delete(r.Context(), board, threadId, replyId, password); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.ReplyAckResponse{Success: api.ReplyDeleted, ReplyId: replyId})
}
