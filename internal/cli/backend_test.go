package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"quizo-service/internal/app"
	"quizo-service/internal/config"
)

func TestOpenBackendMemoryIsPlayable(t *testing.T) {
	cfg := config.Config{}
	cfg.Storage.Driver = config.DriverMemory
	cfg.Quiz.ShuffleQuestions = true

	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.Close()

	quiz := app.NewQuizService(b.cache, b.attempts, b.leaderboard, b.sessions, app.QuizOptions{ShuffleQuestions: true})
	started, err := quiz.Start(context.Background(), app.Player{Email: "ann@example.com"}, "Math")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Report.Loaded != len(sampleQuestions()) {
		t.Fatalf("expected sample bank loaded, got %+v", started.Report)
	}
}

func TestOpenBackendSQLiteSeedAndAccount(t *testing.T) {
	cfg := config.Config{}
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "quizo.db")
	cfg.Auth.Secret = "test"
	ctx := context.Background()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	defer b.Close()

	svc := app.NewQuestionService(b.questions, b.cache)
	for _, q := range sampleQuestions() {
		if _, err := svc.AddQuestion(ctx, q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	n, _ := svc.CountByTopic(ctx, "Math")
	if n != len(sampleQuestions()) {
		t.Fatalf("expected %d questions, got %d", len(sampleQuestions()), n)
	}

	accounts, tokens := newAccountService(cfg, b.users)
	tok, err := accounts.CreateAdmin(ctx, app.RegisterInput{Username: "root", Email: "root@example.com", Password: "adm1n!pass"})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	claims, err := tokens.Parse(tok.AccessToken)
	if err != nil || claims.Role != "admin" {
		t.Fatalf("unexpected claims %+v err=%v", claims, err)
	}
}

func TestOpenBackendUnknownDriver(t *testing.T) {
	cfg := config.Config{}
	cfg.Storage.Driver = "mongo"
	if _, err := openBackend(context.Background(), cfg); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenBackendSQLiteRestoresLeaderboardAfterRestart(t *testing.T) {
	cfg := config.Config{}
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "quizo.db")
	cfg.Auth.Secret = "test"
	ctx := context.Background()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("open backend: %v", err)
	}
	questions := app.NewQuestionService(b.questions, b.cache)
	for _, q := range sampleQuestions() {
		if _, err := questions.AddQuestion(ctx, q); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	accounts, _ := newAccountService(cfg, b.users)
	if _, err := accounts.Register(ctx, app.RegisterInput{Username: "ann", Email: "ann@example.com", Password: "s3cret!pw"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	quiz := app.NewQuizService(b.cache, b.attempts, b.leaderboard, b.sessions, app.QuizOptions{})
	player := app.Player{Email: "ann@example.com", Name: "ann"}
	started, err := quiz.Start(ctx, player, "Math")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < started.Report.Loaded; i++ {
		if _, err := quiz.Answer(ctx, started.SessionID, player.Email, "wrong"); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	b.Close()

	reopened, err := openBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen backend: %v", err)
	}
	defer reopened.Close()

	total, _ := reopened.attempts.CumulativePoints(ctx, player.Email)
	if total != -10 {
		t.Fatalf("expected ledger total -10, got %d", total)
	}
	top, err := reopened.leaderboard.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Email != player.Email || top[0].Name != "ann" || top[0].TotalPoints != total {
		t.Fatalf("expected leaderboard to match ledger, got %+v", top)
	}
}

func TestRebuildLeaderboardRequiresRedis(t *testing.T) {
	cfg := config.Config{}
	cfg.Storage.Driver = config.DriverSQLite
	cfg.Storage.SQLitePath = filepath.Join(t.TempDir(), "quizo.db")

	if _, err := rebuildLeaderboard(context.Background(), cfg); !errors.Is(err, errLocalLeaderboard) {
		t.Fatalf("expected local leaderboard error, got %v", err)
	}
}
