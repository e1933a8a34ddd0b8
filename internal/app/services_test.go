package app_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"quizo-service/internal/app"
	"quizo-service/internal/domain"
	"quizo-service/internal/infra/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "h:" + pw, nil }
func (plainHasher) Compare(hash, pw string) error {
	if hash != "h:"+pw {
		return errors.New("mismatch")
	}
	return nil
}

type stubIssuer struct{ n int }

func (s *stubIssuer) Issue(u domain.User) (string, time.Time, error) {
	s.n++
	return u.Email + "#" + strconv.Itoa(s.n), time.Now().Add(time.Hour), nil
}

func TestAccountServiceRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAccountService(memory.NewUserStore(), plainHasher{}, &stubIssuer{})

	tok, err := svc.Register(ctx, app.RegisterInput{Username: " ann ", Email: "Ann@Example.com", Password: "secret1!x"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if tok.User.Email != "ann@example.com" || tok.User.Username != "ann" || tok.User.Role != domain.RoleUser {
		t.Fatalf("unexpected user %+v", tok.User)
	}
	if _, err := svc.Register(ctx, app.RegisterInput{Username: "ann2", Email: "ann@example.com", Password: "secret1!x"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}

	if _, err := svc.Login(ctx, "ANN@example.com", "secret1!x"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Login(ctx, "ann@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "secret1!x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}

	if err := svc.ChangePassword(ctx, "ann@example.com", "secret1!x", "short"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if err := svc.ChangePassword(ctx, "ann@example.com", "secret1!x", "n3w+passw"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "ann@example.com", "n3w+passw"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestAccountServiceRejectsInput(t *testing.T) {
	svc := app.NewAccountService(memory.NewUserStore(), plainHasher{}, &stubIssuer{})
	cases := []app.RegisterInput{
		{Username: "", Email: "a@example.com", Password: "secret1!x"},
		{Username: "a", Email: "not-an-email", Password: "secret1!x"},
		{Username: "a", Email: "a@example.com", Password: "nospecial1"},
		{Username: "abcdefghijklmnopqrstu", Email: "a@example.com", Password: "secret1!x"},
	}
	for _, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", in, err)
		}
	}
}

func TestValidPassword(t *testing.T) {
	good := []string{"abc123!@", "Passw0rd#", "a1=bcdefghijklmn"}
	bad := []string{"abc12!", "abcdefgh!", "12345678!", "abcd1234", "a1!bcdefghijklmnop"}
	for _, pw := range good {
		if !app.ValidPassword(pw) {
			t.Fatalf("expected %q valid", pw)
		}
	}
	for _, pw := range bad {
		if app.ValidPassword(pw) {
			t.Fatalf("expected %q invalid", pw)
		}
	}
}

type recordingCache struct{ topics []string }

func (c *recordingCache) Invalidate(_ context.Context, topic string) { c.topics = append(c.topics, topic) }

func TestQuestionServiceAuthoring(t *testing.T) {
	ctx := context.Background()
	cache := &recordingCache{}
	svc := app.NewQuestionService(memory.NewQuestionStore(), cache)

	stored, err := svc.AddQuestion(ctx, domain.Question{Topic: " Math ", Text: "1+1?", OptionA: "1", OptionB: "2", OptionC: "3", OptionD: "4", CorrectAnswer: "2"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if stored.ID == 0 || stored.Topic != "Math" {
		t.Fatalf("unexpected stored question %+v", stored)
	}

	_, err = svc.AddQuestion(ctx, domain.Question{Topic: "Math", Text: "bad", OptionA: "1", OptionB: "1", OptionC: "3", OptionD: "4", CorrectAnswer: "1"})
	var rejection *app.Rejection
	if !errors.Is(err, domain.ErrInvalidQuestion) || !errors.As(err, &rejection) || rejection.Reason != app.ReasonDuplicateOptions {
		t.Fatalf("expected duplicate-options rejection, got %v", err)
	}
	if _, err := svc.AddQuestion(ctx, domain.Question{Text: "no topic", OptionA: "1", OptionB: "2", OptionC: "3", OptionD: "4", CorrectAnswer: "2"}); !errors.Is(err, domain.ErrInvalidQuestion) {
		t.Fatalf("expected topic required, got %v", err)
	}

	n, _ := svc.CountByTopic(ctx, "Math")
	if n != 1 {
		t.Fatalf("expected 1 question, got %d", n)
	}
	if err := svc.DeleteQuestion(ctx, stored.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteQuestion(ctx, stored.ID); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(cache.topics) != 2 || cache.topics[1] != "Math" {
		t.Fatalf("expected invalidation on add and delete, got %v", cache.topics)
	}
}

func TestLeaderboardServiceRebuild(t *testing.T) {
	ctx := context.Background()
	attempts := memory.NewAttemptStore()
	users := memory.NewUserStore()
	board := memory.NewLeaderboard()
	_ = users.CreateUser(ctx, domain.User{Email: "ann@example.com", Username: "Ann"})
	_ = attempts.AppendAttempt(ctx, domain.AttemptRecord{Timestamp: 1, Email: "ann@example.com", Earned: 20, OverallPoints: 20}, 0)
	_ = attempts.AppendAttempt(ctx, domain.AttemptRecord{Timestamp: 2, Email: "ghost@example.com", Earned: 5, OverallPoints: 5}, 0)
	_ = board.Upsert(ctx, "ann@example.com", "Ann", 3)

	svc := app.NewLeaderboardService(board, attempts, users)
	n, err := svc.Rebuild(ctx)
	if err != nil || n != 2 {
		t.Fatalf("rebuild: n=%d err=%v", n, err)
	}
	top, _ := svc.Top(ctx, 0)
	if len(top) != 2 || top[0].Email != "ann@example.com" || top[0].TotalPoints != 20 || top[0].LastUpdated != 1 {
		t.Fatalf("unexpected leaderboard %+v", top)
	}
	if ghost, ok, _ := svc.Standing(ctx, "ghost@example.com"); !ok || ghost.LastUpdated != 2 {
		t.Fatalf("expected ghost projected, got %+v", ghost)
	}
}

func TestLeaderboardRebuildKeepsEarliestToReachTotal(t *testing.T) {
	ctx := context.Background()
	attempts := memory.NewAttemptStore()
	users := memory.NewUserStore()
	board := memory.NewLeaderboard()
	_ = users.CreateUser(ctx, domain.User{Email: "bob@example.com", Username: "Bob"})
	_ = users.CreateUser(ctx, domain.User{Email: "zed@example.com", Username: "Zed"})
	// Zed reached 20 first, Bob caught up later; names alone would rank Bob first.
	_ = attempts.AppendAttempt(ctx, domain.AttemptRecord{Timestamp: 100, Email: "zed@example.com", Earned: 20, OverallPoints: 20}, 0)
	_ = attempts.AppendAttempt(ctx, domain.AttemptRecord{Timestamp: 200, Email: "bob@example.com", Earned: 25, OverallPoints: 25}, 0)
	_ = attempts.AppendAttempt(ctx, domain.AttemptRecord{Timestamp: 300, Email: "bob@example.com", Earned: -5, OverallPoints: 20}, 25)

	svc := app.NewLeaderboardService(board, attempts, users)
	if _, err := svc.Rebuild(ctx); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	top, _ := svc.Top(ctx, 0)
	if len(top) != 2 || top[0].Name != "Zed" || top[1].Name != "Bob" || top[1].LastUpdated != 300 {
		t.Fatalf("unexpected order %+v", top)
	}
}
