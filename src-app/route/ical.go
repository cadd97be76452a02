package route

import (
	"bytes"
	"log/slog"
	"net/http"

	"rooydad/src-app/handler"
	"rooydad/src-app/ics"
	"rooydad/src-app/utils"

	"github.com/go-chi/chi/v5"
)

func Ical(r chi.Router, as *utils.AppState) {
	r.Get("/ical", func(w http.ResponseWriter, r *http.Request) {
		events, err := handler.List(r.Context(), as, handler.ModeAll)
		if err != nil {
			slog.Error("can't list events", "error", err)
			http.Error(w, "can't list events", http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		if err := ics.Export(&buf, events, as.Config.GetLocation(), as.Now()); err != nil {
			slog.Error("can't export events", "error", err)
			http.Error(w, "can't export events", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `inline; filename="events.ics"`)
		w.Write(buf.Bytes())
	})
}
