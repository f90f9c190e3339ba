package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aptiva/examgate-backend/internal/model"
)

// QuestionRepository handles question-bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	correct, err := json.Marshal(q.CorrectAnswer)
	if err != nil {
		return fmt.Errorf("marshal correct answer: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (author_id, type, subject, tags, difficulty, options, correct_answer, marks, negative_marks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		q.AuthorID, q.Type, q.Subject, q.Tags, q.Difficulty, q.Options, correct, q.Marks, q.NegativeMarks,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByIDs retrieves a set of questions by id. The whole lookup fails with
// ErrQuestionsMissing if any id cannot be resolved.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error) {
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, author_id, type, subject, tags, difficulty, options, correct_answer, marks, negative_marks, created_at, updated_at
		 FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make(map[uuid.UUID]model.Question, len(unique))
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(questions) != len(unique) {
		return nil, ErrQuestionsMissing
	}
	return questions, nil
}

// ListByAuthor retrieves all questions created by one author.
func (r *QuestionRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, author_id, type, subject, tags, difficulty, options, correct_answer, marks, negative_marks, created_at, updated_at
		 FROM questions WHERE author_id = $1
		 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (model.Question, error) {
	var q model.Question
	var correct []byte
	if err := row.Scan(&q.ID, &q.AuthorID, &q.Type, &q.Subject, &q.Tags, &q.Difficulty,
		&q.Options, &correct, &q.Marks, &q.NegativeMarks, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return model.Question{}, err
	}
	if err := json.Unmarshal(correct, &q.CorrectAnswer); err != nil {
		return model.Question{}, fmt.Errorf("decode correct answer for question %s: %w", q.ID, err)
	}
	return q, nil
}
