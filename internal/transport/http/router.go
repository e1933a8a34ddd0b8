package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"quizo-service/internal/app"
	"quizo-service/internal/auth"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Quiz        *app.QuizService
	Questions   *app.QuestionService
	Accounts    *app.AccountService
	Leaderboard *app.LeaderboardService
	Tokens      *auth.TokenService
}

// NewRouter mounts the REST API, the play websocket and the health check.
func NewRouter(s Services, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	api := &apiHandler{services: s}
	r.Route("/api", func(ar chi.Router) {
		ar.Use(middleware.Timeout(30 * time.Second))

		ar.Post("/auth/register", api.register)
		ar.Post("/auth/login", api.login)

		ar.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(s.Tokens))
			pr.Post("/auth/password", api.changePassword)
			pr.Get("/topics", api.topics)

			pr.Post("/sessions", api.startSession)
			pr.Get("/sessions/{id}/question", api.currentQuestion)
			pr.Post("/sessions/{id}/answer", api.answer)
			pr.Delete("/sessions/{id}", api.abortSession)

			pr.Get("/leaderboard", api.leaderboard)
			pr.Get("/history", api.history)

			pr.Route("/questions", func(qr chi.Router) {
				qr.Use(auth.RequireAdmin)
				qr.Get("/", api.listQuestions)
				qr.Post("/", api.addQuestion)
				qr.Delete("/{id}", api.deleteQuestion)
			})
		})
	})

	ws := NewWSHandler(s.Quiz)
	r.With(auth.Middleware(s.Tokens)).Get("/ws", ws.ServeWS)
	return r
}
