package rest

import (
	"net/http"

	"github.com/dmitrijs2005/rotamanager/internal/server/services"
)

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	u, err := h.identity.GetAccount(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccount(u))
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.identity.UpdateAccount(r.Context(), userIDFrom(r.Context()), services.AccountUpdate{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccount(u))
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeleteAccount(r.Context(), userIDFrom(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
