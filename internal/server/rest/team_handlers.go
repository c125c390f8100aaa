package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) createTeam(w http.ResponseWriter, r *http.Request) {
	var req createTeamRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	t, err := h.teams.CreateTeam(r.Context(), userIDFrom(r.Context()), req.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTeam(t))
}

func (h *Handler) listTeams(w http.ResponseWriter, r *http.Request) {
	list, err := h.teams.ListTeams(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]teamResponse, 0, len(list))
	for i := range list {
		out = append(out, toTeam(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getTeam(w http.ResponseWriter, r *http.Request) {
	t, err := h.teams.GetTeam(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTeam(t))
}

func (h *Handler) joinTeam(w http.ResponseWriter, r *http.Request) {
	m, err := h.teams.JoinTeam(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMember(m))
}

func (h *Handler) leaveTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.teams.LeaveTeam(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.teams.DeleteTeam(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	list, err := h.teams.ListMembers(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]memberProfileResponse, 0, len(list))
	for _, p := range list {
		out = append(out, memberProfileResponse{memberResponse: toMember(&p.Member), FullName: p.FullName, Email: p.Email})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) exportSchedule(w http.ResponseWriter, r *http.Request) {
	link, err := h.exporter.ExportSchedule(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{URL: link.URL, ExpiresAt: link.ExpiresAt})
}
