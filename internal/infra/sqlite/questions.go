package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"quizo-service/internal/domain"
)

const questionColumns = `id, topic, COALESCE(question_text, ''), COALESCE(option_a, ''), COALESCE(option_b, ''),
	COALESCE(option_c, ''), COALESCE(option_d, ''), COALESCE(correct_answer, '')`

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (domain.Question, error) {
	var q domain.Question
	err := row.Scan(&q.ID, &q.Topic, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer)
	return q, err
}

func (s *Store) ListQuestions(ctx context.Context, topic string) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE topic = ? ORDER BY id`, topic)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) AddQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO questions (topic, question_text, option_a, option_b, option_c, option_d, correct_answer)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.Topic, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectAnswer,
	)
	if err != nil {
		return domain.Question{}, err
	}
	q.ID, err = res.LastInsertId()
	return q, err
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) (domain.Question, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Question{}, err
	}
	defer tx.Rollback()

	q, err := scanQuestion(tx.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id); err != nil {
		return domain.Question{}, err
	}
	return q, tx.Commit()
}

func (s *Store) CountByTopic(ctx context.Context, topic string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions WHERE topic = ?`, topic).Scan(&n)
	return n, err
}

func (s *Store) Topics(ctx context.Context) ([]domain.TopicSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT topic, COUNT(*) FROM questions GROUP BY topic ORDER BY topic`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TopicSummary
	for rows.Next() {
		var t domain.TopicSummary
		if err := rows.Scan(&t.Topic, &t.Count); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
