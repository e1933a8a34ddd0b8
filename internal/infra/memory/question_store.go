package memory

import (
	"context"
	"sort"
	"sync"

	"quizo-service/internal/domain"
)

// QuestionStore is an in-memory question table (useful for tests/demos).
type QuestionStore struct {
	mu        sync.RWMutex
	nextID    int64
	questions map[int64]domain.Question
}

// NewQuestionStore seeds the store; seed ids are reassigned in order.
func NewQuestionStore(seed ...domain.Question) *QuestionStore {
	s := &QuestionStore{questions: make(map[int64]domain.Question)}
	for _, q := range seed {
		s.insertLocked(q)
	}
	return s
}

func (s *QuestionStore) AddQuestion(_ context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(q), nil
}

func (s *QuestionStore) insertLocked(q domain.Question) domain.Question {
	s.nextID++
	q.ID = s.nextID
	s.questions[q.ID] = q
	return q
}

func (s *QuestionStore) DeleteQuestion(_ context.Context, id int64) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return q, nil
}

// ListQuestions returns the topic's questions in insertion order.
func (s *QuestionStore) ListQuestions(_ context.Context, topic string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0)
	for _, q := range s.questions {
		if q.Topic == topic {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *QuestionStore) CountByTopic(_ context.Context, topic string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, q := range s.questions {
		if q.Topic == topic {
			n++
		}
	}
	return n, nil
}

func (s *QuestionStore) Topics(_ context.Context) ([]domain.TopicSummary, error) {
	s.mu.RLock()
	counts := make(map[string]int)
	for _, q := range s.questions {
		counts[q.Topic]++
	}
	s.mu.RUnlock()

	out := make([]domain.TopicSummary, 0, len(counts))
	for topic, n := range counts {
		out = append(out, domain.TopicSummary{Topic: topic, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out, nil
}
