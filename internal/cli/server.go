package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"quizo-service/internal/app"
	"quizo-service/internal/config"
	transport "quizo-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	quiz := app.NewQuizService(b.cache, b.attempts, b.leaderboard, b.sessions, app.QuizOptions{
		ShuffleQuestions: cfg.Quiz.ShuffleQuestions,
		LedgerRetries:    cfg.Quiz.LedgerRetries,
	})
	accounts, tokens := newAccountService(cfg, b.users)
	router := transport.NewRouter(transport.Services{
		Quiz:        quiz,
		Questions:   app.NewQuestionService(b.questions, b.cache),
		Accounts:    accounts,
		Leaderboard: app.NewLeaderboardService(b.leaderboard, b.attempts, b.users),
		Tokens:      tokens,
	}, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweepIdleSessions(sweepCtx, quiz, config.TTLDuration(cfg.Quiz.SessionTTL, 30*time.Minute))

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sweepIdleSessions aborts sessions left untouched for longer than ttl.
func sweepIdleSessions(ctx context.Context, quiz *app.QuizService, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := quiz.ExpireIdle(ctx, now.Add(-ttl)); n > 0 {
				log.Printf("expired %d idle sessions", n)
			}
		}
	}
}
