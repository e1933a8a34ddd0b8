package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"quizo-service/internal/app"
	"quizo-service/internal/auth"
	"quizo-service/internal/config"
	"quizo-service/internal/infra/memory"
	pgstore "quizo-service/internal/infra/postgres"
	infraredis "quizo-service/internal/infra/redis"
	"quizo-service/internal/infra/sqlite"
)

// backend is the set of stores selected by configuration.
type backend struct {
	questions   app.QuestionStore
	attempts    app.AttemptStore
	users       app.UserStore
	leaderboard app.LeaderboardProjector
	sessions    app.SessionRepository
	cache       interface {
		app.QuestionSource
		app.CacheInvalidator
	}
	// durable is set when attempts outlive the process.
	durable bool
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, pool.Close)
		b.questions = pgstore.NewQuestionStore(pool)
		b.attempts = pgstore.NewAttemptStore(pool)
		b.users = pgstore.NewUserStore(pool)
		b.durable = true
	case config.DriverSQLite:
		store, err := sqlite.NewStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Storage.SQLitePath, err)
		}
		b.closers = append(b.closers, func() { _ = store.Close() })
		b.questions = store
		b.attempts = store
		b.users = store
		b.durable = true
	case config.DriverMemory:
		b.questions = memory.NewQuestionStore(sampleQuestions()...)
		b.attempts = memory.NewAttemptStore()
		b.users = memory.NewUserStore()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	log.Printf("storage driver: %s", cfg.Storage.Driver)

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = client.Close() })
		redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		b.cache = infraredis.NewQuestionRepository(client, b.questions, quizTTL)
		b.leaderboard = infraredis.NewLeaderboard(client)
		b.sessions = infraredis.NewSessionStore(client, redisTTL)
	} else {
		b.cache = memory.NewQuestionRepository(b.questions, quizTTL)
		b.leaderboard = memory.NewLeaderboard()
		b.sessions = memory.NewSessionStore()
		if b.durable {
			n, err := app.NewLeaderboardService(b.leaderboard, b.attempts, b.users).Rebuild(ctx)
			if err != nil {
				b.Close()
				return nil, fmt.Errorf("restore leaderboard: %w", err)
			}
			log.Printf("restored %d leaderboard entries from the attempt ledger", n)
		}
	}
	return b, nil
}

func newAccountService(cfg config.Config, users app.UserStore) (*app.AccountService, *auth.TokenService) {
	tokens := auth.NewTokenService(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour))
	return app.NewAccountService(users, auth.NewBcryptHasher(), tokens), tokens
}
