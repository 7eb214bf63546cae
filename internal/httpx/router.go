package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/AngelCh415/collabhub/internal/guard"
	"github.com/AngelCh415/collabhub/internal/ingest"
	"github.com/AngelCh415/collabhub/internal/metrics"
	"github.com/AngelCh415/collabhub/internal/session"
	"github.com/AngelCh415/collabhub/internal/telemetry"
	"github.com/AngelCh415/collabhub/internal/utils"
)

const maxHookBody = 1 << 20

type Deps struct {
	Log           *slog.Logger
	Guard         *guard.Guard
	Sync          *ingest.Syncer
	Metrics       *metrics.Service
	Telemetry     *telemetry.Metrics
	WebhookSecret string
}

func NewRouter(d Deps) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(d.Log, d.Telemetry.RequestDuration))
	mux.Use(middleware.Recoverer)
	mux.Use(d.Guard.Middleware)

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", d.Telemetry.Handler())

	// the login page itself is rendered elsewhere; this tells it where to go back to
	mux.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		redirect := r.URL.Query().Get("redirect")
		if redirect == "" || redirect[0] != '/' || (len(redirect) > 1 && (redirect[1] == '/' || redirect[1] == '\\')) {
			redirect = "/dashboard"
		}
		writeJSON(w, map[string]any{"login": true, "redirect": redirect})
	})


	mux.Post("/hooks/participations", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxHookBody))
		if err != nil {
			http.Error(w, "bad body", 400)
			return
		}
		if !ingest.VerifySignature(d.WebhookSecret, body, r.Header.Get("X-Signature")) {
			http.Error(w, "bad signature", http.StatusUnauthorized)
			return
		}
		d.Sync.Trigger()
		w.WriteHeader(202)
		w.Write([]byte("resync queued"))
	})

	mux.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.Metrics.Dashboard(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, out)
	})

	// under /dashboard so the guard covers it
	mux.Post("/dashboard/sync", func(w http.ResponseWriter, r *http.Request) {
		n, err := d.Sync.Run(r.Context())
		if err != nil {
			if errors.Is(err, ingest.ErrNotConfigured) {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			d.Log.Error("manual sync failed", slog.String("err", err.Error()), slog.String("rid", utils.RID(r.Context())))
			http.Error(w, "upstream sync failed", 502)
			return
		}
		writeJSON(w, map[string]any{"upserted": n})
	})

	mux.Get("/campaigns", func(w http.ResponseWriter, r *http.Request) {
		rows, err := d.Metrics.Campaigns(r.Context(), r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, rows)
	})

	mux.Get("/campaigns/{id}", func(w http.ResponseWriter, r *http.Request) {
		out, err := d.Metrics.Campaign(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, out)
	})

	mux.Get("/influencers", func(w http.ResponseWriter, r *http.Request) {
		rows, err := d.Metrics.Influencers(r.Context(), r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, rows)
	})

	mux.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		if !ok {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}
		writeJSON(w, s)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
