package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quizo-service/internal/domain"
)

const questionColumns = `id, topic, COALESCE(question_text, ''), COALESCE(option_a, ''), COALESCE(option_b, ''),
	COALESCE(option_c, ''), COALESCE(option_d, ''), COALESCE(correct_answer, '')`

// QuestionStore reads and writes raw questions. Nullable columns come back
// as empty strings so malformed rows reach validation instead of failing scans.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) ListQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE topic=$1 ORDER BY id`, topic)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Topic, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *QuestionStore) AddQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO questions (topic, question_text, option_a, option_b, option_c, option_d, correct_answer)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		q.Topic, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer,
	).Scan(&q.ID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *QuestionStore) DeleteQuestion(ctx context.Context, id int64) (domain.Question, error) {
	var q domain.Question
	err := s.pool.QueryRow(ctx, `DELETE FROM questions WHERE id=$1 RETURNING `+questionColumns, id).
		Scan(&q.ID, &q.Topic, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("delete question: %w", err)
	}
	return q, nil
}

func (s *QuestionStore) CountByTopic(ctx context.Context, topic string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE topic=$1`, topic).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (s *QuestionStore) Topics(ctx context.Context) ([]domain.TopicSummary, error) {
	rows, err := s.pool.Query(ctx, `SELECT topic, COUNT(*) FROM questions GROUP BY topic ORDER BY topic`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var out []domain.TopicSummary
	for rows.Next() {
		var t domain.TopicSummary
		if err := rows.Scan(&t.Topic, &t.Count); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
