package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aptiva/examgate-backend/internal/model"
)

const examColumns = `id, title, author_id, question_ids, duration_minutes, start_time, end_time,
	assigned_batch, attempt_limit, randomize_questions, shuffle_options, created_at, updated_at`

// ExamRepository handles exam definition data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+examColumns+` FROM exams WHERE id = $1`, id)
	return scanExam(row)
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, author_id, question_ids, duration_minutes, start_time, end_time,
		                    assigned_batch, attempt_limit, randomize_questions, shuffle_options)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.AuthorID, e.QuestionIDs, e.DurationMinutes, e.StartTime, e.EndTime,
		e.AssignedBatch, e.AttemptLimit, e.RandomizeQuestions, e.ShuffleOptions,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// ListForStudent retrieves unexpired exams a student's department may sit,
// soonest first.
func (r *ExamRepository) ListForStudent(ctx context.Context, department string, now time.Time) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE end_time >= $1 AND (assigned_batch = $2 OR assigned_batch = $3)
		 ORDER BY start_time`, now, model.BatchAll, department)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

// ListByAuthor retrieves exams created by one author, soonest first.
func (r *ExamRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams WHERE author_id = $1 ORDER BY start_time`, authorID)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

// ListAll retrieves every exam, soonest first.
func (r *ExamRepository) ListAll(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+examColumns+` FROM exams ORDER BY start_time`)
	if err != nil {
		return nil, err
	}
	return collectExams(rows)
}

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.Title, &e.AuthorID, &e.QuestionIDs, &e.DurationMinutes,
		&e.StartTime, &e.EndTime, &e.AssignedBatch, &e.AttemptLimit,
		&e.RandomizeQuestions, &e.ShuffleOptions, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func collectExams(rows pgx.Rows) ([]model.Exam, error) {
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, err
		}
		exams = append(exams, *e)
	}
	return exams, rows.Err()
}
