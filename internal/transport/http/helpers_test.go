package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizo-service/internal/app"
	"quizo-service/internal/auth"
	"quizo-service/internal/domain"
	"quizo-service/internal/infra/memory"
)

var correctAnswers = map[string]string{
	"What is 2 + 2?": "4",
	"What is 3 * 3?": "9",
}

type testServer struct {
	*httptest.Server
	services Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	questions := memory.NewQuestionStore(
		domain.Question{Topic: "Math", Text: "What is 2 + 2?", OptionA: "3", OptionB: "4", OptionC: "5", OptionD: "6", CorrectAnswer: "4"},
		domain.Question{Topic: "Math", Text: "What is 3 * 3?", OptionA: "6", OptionB: "9", OptionC: "12", OptionD: "33", CorrectAnswer: "9"},
		domain.Question{Topic: "Math", Text: "missing option", OptionA: "1", OptionB: "2", OptionD: "4", CorrectAnswer: "2"},
	)
	cache := memory.NewQuestionRepository(questions, time.Minute)
	attempts := memory.NewAttemptStore()
	board := memory.NewLeaderboard()
	users := memory.NewUserStore()
	tokens := auth.NewTokenService("test-secret", time.Hour)

	services := Services{
		Quiz:        app.NewQuizService(cache, attempts, board, memory.NewSessionStore(), app.QuizOptions{Shuffler: app.NewShuffler(1)}),
		Questions:   app.NewQuestionService(questions, cache),
		Accounts:    app.NewAccountService(users, auth.BcryptHasher{Cost: 4}, tokens),
		Leaderboard: app.NewLeaderboardService(board, attempts, users),
		Tokens:      tokens,
	}
	srv := httptest.NewServer(NewRouter(services, nil))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, services: services}
}

func (s *testServer) register(t *testing.T, name, email string) string {
	t.Helper()
	var tok app.Token
	status := s.do(t, http.MethodPost, "/api/auth/register", "", app.RegisterInput{Username: name, Email: email, Password: "secret1!x"}, &tok)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d", email, status)
	}
	return tok.AccessToken
}

func (s *testServer) admin(t *testing.T) string {
	t.Helper()
	tok, err := s.services.Accounts.CreateAdmin(context.Background(), app.RegisterInput{Username: "root", Email: "admin@example.com", Password: "adm1n!pass"})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return tok.AccessToken
}

func (s *testServer) do(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}
