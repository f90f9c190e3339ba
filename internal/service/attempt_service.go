package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aptiva/examgate-backend/internal/config"
	"github.com/aptiva/examgate-backend/internal/engine"
	"github.com/aptiva/examgate-backend/internal/model"
	"github.com/aptiva/examgate-backend/internal/repository"
)

// AttemptStore is the attempt persistence surface the lifecycle engine
// drives. All mutations are conditional on the attempt still being
// IN_PROGRESS, which is what makes the state machine race-safe.
type AttemptStore interface {
	GetActive(ctx context.Context, examID, studentID uuid.UUID) (*model.Attempt, error)
	GetScoped(ctx context.Context, attemptID, examID, studentID uuid.UUID) (*model.Attempt, error)
	CountByExamAndStudent(ctx context.Context, examID, studentID uuid.UUID) (int, error)
	Create(ctx context.Context, a *model.Attempt) error
	RotateSessionToken(ctx context.Context, attemptID uuid.UUID, tokenHash string) error
	Finalize(ctx context.Context, p repository.FinalizeAttemptParams) error
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]model.Attempt, error)
}

// ExamStore is the exam lookup surface the engine needs.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// QuestionStore resolves question ids into full bank entries.
type QuestionStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Question, error)
}

// StartAttemptResult is returned to the student on start or resume. The
// session token appears here in plaintext exactly once.
type StartAttemptResult struct {
	AttemptID        uuid.UUID               `json:"attempt_id"`
	SessionToken     string                  `json:"session_token"`
	DeadlineAt       time.Time               `json:"deadline_at"`
	RemainingSeconds int64                   `json:"remaining_seconds"`
	Resumed          bool                    `json:"resumed"`
	Questions        []model.StudentQuestion `json:"questions"`
}

// FinalizeResult is returned after a submit or timeout lands.
type FinalizeResult struct {
	Status model.AttemptStatus `json:"status"`
	engine.ScoreResult
}

// AttemptService is the attempt lifecycle engine: it owns the
// IN_PROGRESS → SUBMITTED/TIMEOUT state machine, snapshot creation, session
// token rotation and grading. Stores are interfaces and the clock is
// injected so every transition is testable without a database.
type AttemptService struct {
	exams     ExamStore
	questions QuestionStore
	attempts  AttemptStore
	rdb       *redis.Client
	audit     *AuditPublisher
	log       zerolog.Logger
	clock     func() time.Time
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	exams ExamStore,
	questions QuestionStore,
	attempts AttemptStore,
	rdb *redis.Client,
	audit *AuditPublisher,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		exams:     exams,
		questions: questions,
		attempts:  attempts,
		rdb:       rdb,
		audit:     audit,
		log:       log.With().Str("component", "attempt_service").Logger(),
		clock:     time.Now,
	}
}

// Start begins or resumes an attempt for the student. Exactly one attempt
// per (exam, student) can be IN_PROGRESS; a live one is resumed with a fresh
// session token, an expired one is lazily finalized as TIMEOUT before a new
// start is considered.
//
// Live-attempt handling runs before the scheduling-window check: a resume
// never needs the window (the deadline is already capped at end_time), and an
// expired attempt gets its lazy TIMEOUT finalization even when the request
// arrives after the window closed and will be rejected with ErrExamNotActive.
func (s *AttemptService) Start(ctx context.Context, student *model.User, examID uuid.UUID, clientIP string) (*StartAttemptResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}
	if !exam.EligibleFor(student.Department) {
		return nil, ErrNotEligible
	}

	now := s.clock()

	active, err := s.attempts.GetActive(ctx, examID, student.ID)
	switch {
	case err == nil:
		if now.After(active.DeadlineAt) {
			if err := s.lazyTimeout(ctx, student, active); err != nil {
				return nil, err
			}
			// The expired attempt is closed; fall through to a fresh start.
		} else {
			if active.IPAddress != clientIP {
				return nil, ErrDeviceConflict
			}
			return s.resume(ctx, student, active, clientIP, now)
		}
	case errors.Is(err, pgx.ErrNoRows):
		// No active attempt; fresh start below.
	default:
		return nil, fmt.Errorf("load active attempt: %w", err)
	}

	if !exam.ActiveAt(now) {
		return nil, ErrExamNotActive
	}

	count, err := s.attempts.CountByExamAndStudent(ctx, examID, student.ID)
	if err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if count >= exam.AttemptLimit {
		return nil, ErrAttemptLimitReached
	}

	bank, err := s.questions.GetByIDs(ctx, exam.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load exam questions: %w", err)
	}
	ordered := make([]model.Question, 0, len(exam.QuestionIDs))
	for _, id := range exam.QuestionIDs {
		ordered = append(ordered, bank[id])
	}

	builder := engine.NewSnapshotBuilder(rand.New(rand.NewSource(now.UnixNano())))
	snapshot := builder.Build(engine.ShuffleFlags{
		RandomizeQuestions: exam.RandomizeQuestions,
		ShuffleOptions:     exam.ShuffleOptions,
	}, ordered)

	token, err := engine.NewSessionToken()
	if err != nil {
		return nil, err
	}

	attempt := &model.Attempt{
		ExamID:           examID,
		StudentID:        student.ID,
		Status:           model.AttemptStatusInProgress,
		StartedAt:        now,
		DeadlineAt:       attemptDeadline(exam, now),
		IPAddress:        clientIP,
		SessionTokenHash: engine.HashSessionToken(token),
		QuestionSnapshot: snapshot,
		Answers:          []model.SubmittedAnswer{},
		ViolationFlags:   []string{},
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		if errors.Is(err, repository.ErrActiveAttemptExists) {
			// Lost a start race; the winner's attempt is the active one now.
			winner, gerr := s.attempts.GetActive(ctx, examID, student.ID)
			if gerr != nil {
				return nil, fmt.Errorf("load racing attempt: %w", gerr)
			}
			if winner.IPAddress != clientIP {
				return nil, ErrDeviceConflict
			}
			return s.resume(ctx, student, winner, clientIP, now)
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		UserID:    &student.ID,
		Action:    model.AuditStartAttempt,
		IPAddress: clientIP,
		Metadata:  map[string]any{"exam_id": examID, "attempt_id": attempt.ID},
	})
	s.publishAttemptEvent(ctx, examID, "attempt_started", attempt, student)

	return &StartAttemptResult{
		AttemptID:        attempt.ID,
		SessionToken:     token,
		DeadlineAt:       attempt.DeadlineAt,
		RemainingSeconds: remainingSeconds(attempt.DeadlineAt, now),
		Questions:        studentQuestions(snapshot),
	}, nil
}

// Submit finalizes an attempt with the student's answers. Submits landing
// after the deadline are recorded as TIMEOUT, not rejected.
func (s *AttemptService) Submit(ctx context.Context, student *model.User, examID uuid.UUID, req *model.FinalizeAttemptRequest, clientIP string) (*FinalizeResult, error) {
	return s.finalize(ctx, student, examID, req, clientIP, false)
}

// ForceTimeout finalizes an attempt as TIMEOUT regardless of the clock. The
// client calls this when its local timer expires or the proctoring layer
// forces the attempt closed.
func (s *AttemptService) ForceTimeout(ctx context.Context, student *model.User, examID uuid.UUID, req *model.FinalizeAttemptRequest, clientIP string) (*FinalizeResult, error) {
	return s.finalize(ctx, student, examID, req, clientIP, true)
}

// ListResults retrieves the student's finished attempts, most recent first.
// IN_PROGRESS attempts are excluded so live answers never leak out through
// the results surface.
func (s *AttemptService) ListResults(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	attempts, err := s.attempts.ListByStudent(ctx, studentID, 50)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	finished := make([]model.Attempt, 0, len(attempts))
	for _, a := range attempts {
		if a.Status.Terminal() {
			finished = append(finished, a)
		}
	}
	return finished, nil
}

func (s *AttemptService) finalize(ctx context.Context, student *model.User, examID uuid.UUID, req *model.FinalizeAttemptRequest, clientIP string, forced bool) (*FinalizeResult, error) {
	attemptID, err := uuid.Parse(req.AttemptID)
	if err != nil {
		return nil, ErrAttemptNotFound
	}

	attempt, err := s.attempts.GetScoped(ctx, attemptID, examID, student.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if attempt.Status.Terminal() {
		return nil, &AttemptFinalizedError{Status: attempt.Status}
	}
	if !engine.SessionTokenMatches(attempt.SessionTokenHash, req.SessionToken) {
		return nil, ErrInvalidSession
	}
	if attempt.IPAddress != clientIP {
		return nil, ErrDeviceConflict
	}

	answers := req.Answers
	if answers == nil {
		answers = []model.SubmittedAnswer{}
	}
	result := engine.Score(attempt.QuestionSnapshot, answers)

	now := s.clock()
	status := model.AttemptStatusSubmitted
	if forced || now.After(attempt.DeadlineAt) {
		status = model.AttemptStatusTimeout
	}

	flags := req.ViolationFlags
	if flags == nil {
		flags = []string{}
	}
	// A forced timeout with no flag list keeps whatever the attempt already
	// carries; a submit always replaces the list.
	replaceFlags := !forced || len(req.ViolationFlags) > 0

	err = s.attempts.Finalize(ctx, repository.FinalizeAttemptParams{
		AttemptID:      attempt.ID,
		Status:         status,
		Answers:        answers,
		Score:          result.Score,
		EndedAt:        now,
		ViolationFlags: flags,
		ReplaceFlags:   replaceFlags,
	})
	if err != nil {
		if errors.Is(err, repository.ErrAttemptNotInProgress) {
			// Another request finalized first; report the state it won.
			current, gerr := s.attempts.GetScoped(ctx, attemptID, examID, student.ID)
			if gerr != nil {
				return nil, fmt.Errorf("load finalized attempt: %w", gerr)
			}
			return nil, &AttemptFinalizedError{Status: current.Status}
		}
		return nil, fmt.Errorf("finalize attempt: %w", err)
	}

	action := model.AuditSubmitAttempt
	event := "attempt_submitted"
	switch {
	case forced:
		action = model.AuditForcedTimeout
		event = "attempt_timeout"
	case status == model.AttemptStatusTimeout:
		action = model.AuditTimeoutSubmit
		event = "attempt_timeout"
	}
	s.audit.Record(ctx, AuditEvent{
		UserID:    &student.ID,
		Action:    action,
		IPAddress: clientIP,
		Metadata:  map[string]any{"exam_id": examID, "attempt_id": attempt.ID, "score": result.Score, "status": status},
	})
	attempt.Status = status
	attempt.Score = result.Score
	s.publishAttemptEvent(ctx, examID, event, attempt, student)

	return &FinalizeResult{Status: status, ScoreResult: result}, nil
}

// lazyTimeout closes an expired IN_PROGRESS attempt using its stored
// answers. EndedAt is pinned to the deadline, not the discovery time.
func (s *AttemptService) lazyTimeout(ctx context.Context, student *model.User, attempt *model.Attempt) error {
	result := engine.Score(attempt.QuestionSnapshot, attempt.Answers)

	err := s.attempts.Finalize(ctx, repository.FinalizeAttemptParams{
		AttemptID:    attempt.ID,
		Status:       model.AttemptStatusTimeout,
		Answers:      attempt.Answers,
		Score:        result.Score,
		EndedAt:      attempt.DeadlineAt,
		ReplaceFlags: false,
	})
	if err != nil && !errors.Is(err, repository.ErrAttemptNotInProgress) {
		return fmt.Errorf("lazy timeout: %w", err)
	}
	if err == nil {
		s.audit.Record(ctx, AuditEvent{
			UserID:    &student.ID,
			Action:    model.AuditLazyTimeout,
			IPAddress: attempt.IPAddress,
			Metadata:  map[string]any{"exam_id": attempt.ExamID, "attempt_id": attempt.ID, "score": result.Score},
		})
		attempt.Status = model.AttemptStatusTimeout
		attempt.Score = result.Score
		s.publishAttemptEvent(ctx, attempt.ExamID, "attempt_timeout", attempt, student)
	}
	return nil
}

func (s *AttemptService) resume(ctx context.Context, student *model.User, attempt *model.Attempt, clientIP string, now time.Time) (*StartAttemptResult, error) {
	token, err := engine.NewSessionToken()
	if err != nil {
		return nil, err
	}
	if err := s.attempts.RotateSessionToken(ctx, attempt.ID, engine.HashSessionToken(token)); err != nil {
		if errors.Is(err, repository.ErrAttemptNotInProgress) {
			// Finalized between lookup and rotation; treat as closed.
			current, gerr := s.attempts.GetScoped(ctx, attempt.ID, attempt.ExamID, student.ID)
			if gerr != nil {
				return nil, fmt.Errorf("load finalized attempt: %w", gerr)
			}
			return nil, &AttemptFinalizedError{Status: current.Status}
		}
		return nil, fmt.Errorf("rotate session token: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		UserID:    &student.ID,
		Action:    model.AuditResumeAttempt,
		IPAddress: clientIP,
		Metadata:  map[string]any{"exam_id": attempt.ExamID, "attempt_id": attempt.ID},
	})
	s.publishAttemptEvent(ctx, attempt.ExamID, "attempt_resumed", attempt, student)

	return &StartAttemptResult{
		AttemptID:        attempt.ID,
		SessionToken:     token,
		DeadlineAt:       attempt.DeadlineAt,
		RemainingSeconds: remainingSeconds(attempt.DeadlineAt, now),
		Resumed:          true,
		Questions:        studentQuestions(attempt.QuestionSnapshot),
	}, nil
}

// publishAttemptEvent fans a lifecycle event out to the exam's monitor
// channel. Best-effort: monitoring must never fail a student request.
func (s *AttemptService) publishAttemptEvent(ctx context.Context, examID uuid.UUID, event string, attempt *model.Attempt, student *model.User) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"event":        event,
		"attempt_id":   attempt.ID,
		"exam_id":      examID,
		"student_id":   student.ID,
		"student_name": student.Name,
		"status":       attempt.Status,
		"timestamp":    s.clock().Unix(),
	})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.ExamMonitorChannel(examID.String()), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("Publish attempt event failed")
	}
}

// attemptDeadline caps the per-attempt duration at the exam's closing time.
func attemptDeadline(exam *model.Exam, now time.Time) time.Time {
	deadline := now.Add(time.Duration(exam.DurationMinutes) * time.Minute)
	if deadline.After(exam.EndTime) {
		return exam.EndTime
	}
	return deadline
}

// remainingSeconds never reports less than one second for a live attempt.
func remainingSeconds(deadline, now time.Time) int64 {
	remaining := int64(deadline.Sub(now) / time.Second)
	if remaining < 1 {
		return 1
	}
	return remaining
}

func studentQuestions(snapshot []model.SnapshotEntry) []model.StudentQuestion {
	questions := make([]model.StudentQuestion, len(snapshot))
	for i, entry := range snapshot {
		questions[i] = entry.ForStudent()
	}
	return questions
}
