package handler

import (
	"net/http"

	"github.com/msgboard/msgboard/shared/api"
	"github.com/msgboard/msgboard/shared/utils"
)

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	values, err := h.bodyStrings(w, r, api.CreateBoardFields...)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	name := values[0]

	if err := h.board.Create(r.Context(), name); err != nil {
		utils.WriteError(w, err)
		return
	}

	redirect(w, r, h.viewURL(name))
}

func (h *Handler) GetBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.board.List(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.NewBoardListResponse(boards))
}
