package rest

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/rotamanager/internal/common"
	"github.com/dmitrijs2005/rotamanager/internal/server/services"
	"github.com/dmitrijs2005/rotamanager/internal/timex"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) createShift(w http.ResponseWriter, r *http.Request) {
	var req createShiftRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	date, err := timex.ParseDate(req.Date)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrValidation))
		return
	}
	start, end, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sh, err := h.schedule.CreateShift(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId"), services.ShiftInput{
		Name:      req.Name,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShift(sh))
}

func (h *Handler) listShifts(w http.ResponseWriter, r *http.Request) {
	list, err := h.schedule.ListShifts(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]shiftDetailResponse, 0, len(list))
	for i := range list {
		out = append(out, toShiftDetail(&list[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getShift(w http.ResponseWriter, r *http.Request) {
	sh, err := h.schedule.GetShift(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId"), chi.URLParam(r, "shiftId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDetail(sh))
}

func (h *Handler) myShifts(w http.ResponseWriter, r *http.Request) {
	list, err := h.schedule.MyShifts(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]myShiftResponse, 0, len(list))
	for i := range list {
		out = append(out, myShiftResponse{
			memberShiftResponse: toMemberShift(&list[i].MemberShift),
			Shift:               toShift(&list[i].Shift),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteShift(w http.ResponseWriter, r *http.Request) {
	err := h.schedule.DeleteShift(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "teamId"), chi.URLParam(r, "shiftId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) assignShift(w http.ResponseWriter, r *http.Request) {
	var req assignShiftRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	start, end, err := parseWindow(req.StartTime, req.EndTime)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ms, err := h.schedule.AssignShift(r.Context(), userIDFrom(r.Context()),
		chi.URLParam(r, "teamId"), chi.URLParam(r, "shiftId"), req.MemberID, start, end)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMemberShift(ms))
}

func (h *Handler) unassignShift(w http.ResponseWriter, r *http.Request) {
	err := h.schedule.UnassignShift(r.Context(), userIDFrom(r.Context()),
		chi.URLParam(r, "teamId"), chi.URLParam(r, "shiftId"), chi.URLParam(r, "memberShiftId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
