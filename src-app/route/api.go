package route

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"rooydad/src-app/agenda"
	"rooydad/src-app/handler"
	"rooydad/src-app/jalali"
	"rooydad/src-app/utils"

	"github.com/go-chi/chi/v5"
)

type errorResponse struct {
	Error string `json:"error"`
}

type nearestResponse struct {
	Event   *agenda.Row `json:"event"`
	Date    string      `json:"date,omitempty"`
	Message string      `json:"message"`
}

type weekDayResponse struct {
	Name    string   `json:"name"`
	Date    string   `json:"date"`
	Entries []string `json:"entries"`
}

type weekResponse struct {
	Start string            `json:"start"`
	Days  []weekDayResponse `json:"days"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("can't write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, handler.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, handler.ErrInvalidSearch),
		errors.Is(err, handler.ErrInvalidMode):
		status = http.StatusBadRequest
	default:
		slog.Error("api request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: handler.UserMessage(err)})
}

func API(r chi.Router, as *utils.AppState) {
	r.Route("/api", func(r chi.Router) {
		list := func(mode handler.Mode) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				events, err := handler.List(r.Context(), as, mode)
				if err != nil {
					writeError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, agenda.PresentAll(events))
			}
		}
		r.Get("/events", list(handler.ModeAll))
		r.Get("/upcoming", list(handler.ModeUpcoming))
		r.Get("/tasks", list(handler.ModeTasks))

		r.Get("/events/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				writeError(w, handler.ErrNotFound)
				return
			}
			e, err := handler.GetEvent(r.Context(), as, id)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, agenda.Present(e))
		})

		// ?from= takes a Jalali date or a phrase; without it the search
		// starts at now.
		r.Get("/nearest", func(w http.ResponseWriter, r *http.Request) {
			var occ *agenda.Occurrence
			var err error
			if from := r.URL.Query().Get("from"); from != "" {
				occ, err = handler.FindNearestFrom(r.Context(), as, from)
			} else {
				occ, err = handler.Nearest(r.Context(), as)
			}
			if err != nil {
				writeError(w, err)
				return
			}
			resp := nearestResponse{Message: agenda.Describe(occ)}
			if occ != nil {
				row := agenda.Present(occ.Event)
				resp.Event = &row
				resp.Date = jalali.FormatWithWeekday(occ.Day)
			}
			writeJSON(w, http.StatusOK, resp)
		})

		r.Get("/week", func(w http.ResponseWriter, r *http.Request) {
			week, err := handler.Week(r.Context(), as)
			if err != nil {
				writeError(w, err)
				return
			}
			resp := weekResponse{
				Start: jalali.Format(week.Start),
				Days:  make([]weekDayResponse, 0, len(week.Days)),
			}
			for _, day := range week.Days {
				entries := make([]string, 0, len(day.Entries))
				for _, entry := range day.Entries {
					entries = append(entries, entry.Text)
				}
				resp.Days = append(resp.Days, weekDayResponse{
					Name:    day.Name,
					Date:    jalali.Format(day.Date),
					Entries: entries,
				})
			}
			writeJSON(w, http.StatusOK, resp)
		})
	})
}
