package app

import (
	"context"
	"fmt"
	"strings"

	"quizo-service/internal/domain"
)

// QuestionService is the administrator authoring flow.
type QuestionService struct {
	store QuestionStore
	cache CacheInvalidator
}

// NewQuestionService wires a store and an optional cache to invalidate on changes.
func NewQuestionService(store QuestionStore, cache CacheInvalidator) *QuestionService {
	return &QuestionService{store: store, cache: cache}
}

// AddQuestion validates and stores a question. Rejected questions are never
// stored; the error wraps domain.ErrInvalidQuestion and the *Rejection.
func (s *QuestionService) AddQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	valid, rejection := ValidateQuestion(q)
	if rejection != nil {
		return domain.Question{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuestion, rejection)
	}
	if valid.Topic() == "" {
		return domain.Question{}, fmt.Errorf("%w: topic is empty", domain.ErrInvalidQuestion)
	}
	stored, err := s.store.AddQuestion(ctx, valid.Question())
	if err != nil {
		return domain.Question{}, err
	}
	s.invalidate(ctx, stored.Topic)
	return stored, nil
}

// DeleteQuestion removes a question by id.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteQuestion(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, deleted.Topic)
	return nil
}

// ListQuestions returns the stored questions of a topic as authored, including
// malformed ones so they can be fixed or removed.
func (s *QuestionService) ListQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	return s.store.ListQuestions(ctx, strings.TrimSpace(topic))
}

func (s *QuestionService) CountByTopic(ctx context.Context, topic string) (int, error) {
	return s.store.CountByTopic(ctx, strings.TrimSpace(topic))
}

func (s *QuestionService) Topics(ctx context.Context) ([]domain.TopicSummary, error) {
	return s.store.Topics(ctx)
}

func (s *QuestionService) invalidate(ctx context.Context, topic string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, topic)
	}
}
