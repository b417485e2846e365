package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	chathandler "voicewidget/internal/handler/chat"
	livehandler "voicewidget/internal/handler/live"
	scenariohandler "voicewidget/internal/handler/scenario"
	scenarioModel "voicewidget/internal/model/scenario"
	"voicewidget/internal/service/session"
	"voicewidget/pkg/utils"
)

// NewRouter wires HTTP routes to core services. A nil completer means the
// upstream credential is missing; the chat endpoint then answers 503 instead
// of failing at startup.
func NewRouter(scenarios scenarioModel.Store, sessions *session.Store, completer chathandler.Completer, clientOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{clientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	scenarioHandler := scenariohandler.New(scenarios)
	liveHandler := livehandler.New(sessions)

	r.Route("/api", func(api chi.Router) {
		api.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		scenarioHandler.RegisterRoutes(api)
		liveHandler.RegisterRoutes(api)

		if completer != nil {
			chathandler.New(sessions, scenarios, completer).RegisterRoutes(api)
		} else {
			api.Post("/chat", func(w http.ResponseWriter, _ *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "chat unavailable")
			})
		}
	})

	return r
}
