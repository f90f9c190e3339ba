package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aptiva/examgate-backend/internal/model"
)

const attemptColumns = `id, exam_id, student_id, status, started_at, ended_at, deadline_at,
	ip_address, session_token_hash, question_snapshot, answers, score, violation_flags,
	created_at, updated_at`

// AttemptRepository handles attempt data access. The attempt row is the unit
// of mutual exclusion: every mutation is a single conditional statement so
// concurrent callers race on the database, not on application locks.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// GetActive retrieves the IN_PROGRESS attempt for (exam, student), or
// pgx.ErrNoRows when none exists. The partial unique index guarantees at
// most one row can match.
func (r *AttemptRepository) GetActive(ctx context.Context, examID, studentID uuid.UUID) (*model.Attempt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE exam_id = $1 AND student_id = $2 AND status = $3`,
		examID, studentID, model.AttemptStatusInProgress)
	return scanAttempt(row)
}

// GetScoped retrieves an attempt only when it belongs to the given exam and
// student. Cross-student or cross-exam ids fail with pgx.ErrNoRows so
// existence is never revealed to the wrong caller.
func (r *AttemptRepository) GetScoped(ctx context.Context, attemptID, examID, studentID uuid.UUID) (*model.Attempt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE id = $1 AND exam_id = $2 AND student_id = $3`,
		attemptID, examID, studentID)
	return scanAttempt(row)
}

// CountByExamAndStudent counts all attempts regardless of status.
func (r *AttemptRepository) CountByExamAndStudent(ctx context.Context, examID, studentID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE exam_id = $1 AND student_id = $2`,
		examID, studentID).Scan(&n)
	return n, err
}

// Create inserts a new IN_PROGRESS attempt. A concurrent start that already
// holds the active slot surfaces as ErrActiveAttemptExists via the partial
// unique index.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	snapshot, err := json.Marshal(a.QuestionSnapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO attempts (exam_id, student_id, status, started_at, deadline_at,
		                       ip_address, session_token_hash, question_snapshot, answers, score, violation_flags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (exam_id, student_id) WHERE status = 'IN_PROGRESS' DO NOTHING
		 RETURNING id, created_at, updated_at`,
		a.ExamID, a.StudentID, model.AttemptStatusInProgress, a.StartedAt, a.DeadlineAt,
		a.IPAddress, a.SessionTokenHash, snapshot, answers, a.Score, a.ViolationFlags,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return ErrActiveAttemptExists
	}
	return err
}

// RotateSessionToken swaps the stored token hash, conditional on the attempt
// still being IN_PROGRESS.
func (r *AttemptRepository) RotateSessionToken(ctx context.Context, attemptID uuid.UUID, tokenHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts SET session_token_hash = $1, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		tokenHash, attemptID, model.AttemptStatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAttemptNotInProgress
	}
	return nil
}

// FinalizeAttemptParams carries a terminal transition: answers, score, end
// time, flags and target status are written in one conditional update.
type FinalizeAttemptParams struct {
	AttemptID      uuid.UUID
	Status         model.AttemptStatus
	Answers        []model.SubmittedAnswer
	Score          float64
	EndedAt        time.Time
	ViolationFlags []string
	// ReplaceFlags false keeps whatever flags the attempt already carries
	// (timeout without a client-provided list).
	ReplaceFlags bool
}

// Finalize performs the IN_PROGRESS → terminal transition as a single
// compare-and-swap. ErrAttemptNotInProgress means another caller finalized
// first; nothing is written in that case.
func (r *AttemptRepository) Finalize(ctx context.Context, p FinalizeAttemptParams) error {
	answers, err := json.Marshal(p.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE attempts
		 SET status = $2,
		     answers = $3,
		     score = $4,
		     ended_at = $5,
		     violation_flags = CASE WHEN $6 THEN $7::text[] ELSE violation_flags END,
		     updated_at = NOW()
		 WHERE id = $1 AND status = $8`,
		p.AttemptID, p.Status, answers, p.Score, p.EndedAt,
		p.ReplaceFlags, p.ViolationFlags, model.AttemptStatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAttemptNotInProgress
	}
	return nil
}

// ListByStudent retrieves a student's most recent attempts across all exams.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+` FROM attempts
		 WHERE student_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	var snapshot, answers []byte
	err := row.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.Status, &a.StartedAt, &a.EndedAt,
		&a.DeadlineAt, &a.IPAddress, &a.SessionTokenHash, &snapshot, &answers,
		&a.Score, &a.ViolationFlags, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(snapshot, &a.QuestionSnapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot for attempt %s: %w", a.ID, err)
	}
	if err := json.Unmarshal(answers, &a.Answers); err != nil {
		return nil, fmt.Errorf("decode answers for attempt %s: %w", a.ID, err)
	}
	return a, nil
}
