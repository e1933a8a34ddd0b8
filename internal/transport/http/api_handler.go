package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"quizo-service/internal/app"
	"quizo-service/internal/auth"
	"quizo-service/internal/domain"
)

type apiHandler struct {
	services Services
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type startRequest struct {
	Topic string `json:"topic"`
}

type answerRequest struct {
	Option string `json:"option"`
}

type questionRequest struct {
	Topic         string `json:"topic"`
	Text          string `json:"text"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	CorrectAnswer string `json:"correctAnswer"`
}

// rankedEntry is a leaderboard row as displayed, with the points abbreviated.
type rankedEntry struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	TotalPoints int64  `json:"totalPoints"`
	Display     string `json:"display"`
}

type leaderboardResponse struct {
	Entries []rankedEntry `json:"entries"`
	Me      *rankedEntry  `json:"me,omitempty"`
}

type historyEntry struct {
	domain.AttemptRecord
	CreatedAt string `json:"createdAt"`
}

func (h *apiHandler) register(w http.ResponseWriter, r *http.Request) {
	var in app.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}
	tok, err := h.services.Accounts.Register(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tok)
}

func (h *apiHandler) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}
	tok, err := h.services.Accounts.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tok)
}

func (h *apiHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var in passwordRequest
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}
	claims := auth.ClaimsFromContext(r.Context())
	if err := h.services.Accounts.ChangePassword(r.Context(), claims.Subject, in.OldPassword, in.NewPassword); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.services.Questions.Topics(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, topics)
}

func (h *apiHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.services.Questions.ListQuestions(r.Context(), r.URL.Query().Get("topic"))
	if err != nil {
		respondError(w, err)
		return
	}
	if qs == nil {
		qs = []domain.Question{}
	}
	respondJSON(w, http.StatusOK, qs)
}

func (h *apiHandler) addQuestion(w http.ResponseWriter, r *http.Request) {
	var in questionRequest
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}
	stored, err := h.services.Questions.AddQuestion(r.Context(), domain.Question{
		Topic:         in.Topic,
		Text:          in.Text,
		OptionA:       in.OptionA,
		OptionB:       in.OptionB,
		OptionC:       in.OptionC,
		OptionD:       in.OptionD,
		CorrectAnswer: in.CorrectAnswer,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, stored)
}

func (h *apiHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, domain.ErrQuestionNotFound)
		return
	}
	if err := h.services.Questions.DeleteQuestion(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) startSession(w http.ResponseWriter, r *http.Request) {
	var in startRequest
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}
	started, err := h.services.Quiz.Start(r.Context(), playerFrom(r), strings.TrimSpace(in.Topic))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, started)
}

func (h *apiHandler) currentQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.services.Quiz.Current(r.Context(), chi.URLParam(r, "id"), playerFrom(r).Email)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (h *apiHandler) answer(w http.ResponseWriter, r *http.Request) {
	var in answerRequest
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, err)
		return
	}
	out, err := h.services.Quiz.Answer(r.Context(), chi.URLParam(r, "id"), playerFrom(r).Email, in.Option)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *apiHandler) abortSession(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Quiz.Abort(r.Context(), chi.URLParam(r, "id"), playerFrom(r).Email); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.services.Leaderboard.Top(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}

	resp := leaderboardResponse{Entries: make([]rankedEntry, 0, len(entries))}
	email := playerFrom(r).Email
	for i, e := range entries {
		row := rankedEntry{Rank: i + 1, Name: e.Name, TotalPoints: e.TotalPoints, Display: domain.FormatScore(e.TotalPoints)}
		resp.Entries = append(resp.Entries, row)
		if e.Email == email {
			me := row
			resp.Me = &me
		}
	}
	if resp.Me == nil {
		entry, ok, err := h.services.Leaderboard.Standing(r.Context(), email)
		if err != nil {
			respondError(w, err)
			return
		}
		if ok {
			resp.Me = &rankedEntry{Name: entry.Name, TotalPoints: entry.TotalPoints, Display: domain.FormatScore(entry.TotalPoints)}
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *apiHandler) history(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.services.Quiz.History(r.Context(), playerFrom(r).Email)
	if err != nil {
		respondError(w, err)
		return
	}
	out := make([]historyEntry, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, historyEntry{AttemptRecord: a, CreatedAt: a.CreatedAt().UTC().Format("2006-01-02 15:04")})
	}
	respondJSON(w, http.StatusOK, out)
}

func playerFrom(r *http.Request) app.Player {
	c := auth.ClaimsFromContext(r.Context())
	if c == nil {
		return app.Player{}
	}
	return app.Player{Email: c.Subject, Name: c.Name}
}
