package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aptiva/examgate-backend/internal/model"
	"github.com/aptiva/examgate-backend/internal/repository"
)

// ExamService handles exam authoring and listing.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	audit        *AuditPublisher
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo *repository.ExamRepository, questionRepo *repository.QuestionRepository, audit *AuditPublisher) *ExamService {
	return &ExamService{examRepo: examRepo, questionRepo: questionRepo, audit: audit}
}

// Create validates and persists a new exam. Every referenced question must
// exist; a dangling id fails the whole create.
func (s *ExamService) Create(ctx context.Context, author *model.User, req *model.CreateExamRequest, clientIP string) (*model.Exam, error) {
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidSchedule
	}
	if len(req.QuestionIDs) == 0 {
		return nil, ErrNoQuestions
	}

	questionIDs := make([]uuid.UUID, 0, len(req.QuestionIDs))
	for _, raw := range req.QuestionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrUnknownQuestion
		}
		questionIDs = append(questionIDs, id)
	}
	if _, err := s.questionRepo.GetByIDs(ctx, questionIDs); err != nil {
		if errors.Is(err, repository.ErrQuestionsMissing) {
			return nil, ErrUnknownQuestion
		}
		return nil, fmt.Errorf("verify questions: %w", err)
	}

	exam := &model.Exam{
		Title:           req.Title,
		AuthorID:        author.ID,
		QuestionIDs:     questionIDs,
		DurationMinutes: req.DurationMinutes,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		AssignedBatch:   req.AssignedBatch,
		AttemptLimit:    req.AttemptLimit,

		// Both shuffle flags are on unless the author opts out.
		RandomizeQuestions: true,
		ShuffleOptions:     true,
	}
	if exam.AttemptLimit < 1 {
		exam.AttemptLimit = 1
	}
	if req.RandomizeQuestions != nil {
		exam.RandomizeQuestions = *req.RandomizeQuestions
	}
	if req.ShuffleOptions != nil {
		exam.ShuffleOptions = *req.ShuffleOptions
	}

	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		UserID:    &author.ID,
		Action:    model.AuditCreateExam,
		IPAddress: clientIP,
		Metadata:  map[string]any{"exam_id": exam.ID, "title": exam.Title},
	})
	return exam, nil
}

// ListForUser lists exams scoped by role: students see upcoming exams for
// their department, professors see their own, admins and principals see all.
func (s *ExamService) ListForUser(ctx context.Context, user *model.User) ([]model.Exam, error) {
	switch user.Role {
	case model.RoleStudent:
		return s.examRepo.ListForStudent(ctx, user.Department, time.Now())
	case model.RoleProfessor:
		return s.examRepo.ListByAuthor(ctx, user.ID)
	default:
		return s.examRepo.ListAll(ctx)
	}
}

// GetForUser retrieves one exam with role scoping: a student outside the
// assigned batch, or a professor who is not the author, gets a not-found
// style rejection rather than a peek at the definition.
func (s *ExamService) GetForUser(ctx context.Context, user *model.User, examID uuid.UUID) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("load exam: %w", err)
	}

	switch user.Role {
	case model.RoleStudent:
		if !exam.EligibleFor(user.Department) {
			return nil, ErrNotEligible
		}
	case model.RoleProfessor:
		if exam.AuthorID != user.ID {
			return nil, ErrNotExamOwner
		}
	}
	return exam, nil
}
