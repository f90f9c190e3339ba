package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aptiva/examgate-backend/internal/model"
	"github.com/aptiva/examgate-backend/internal/repository"
)

// QuestionService handles question-bank authoring.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	audit        *AuditPublisher
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, audit *AuditPublisher) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, audit: audit}
}

// Create adds a question to the bank.
func (s *QuestionService) Create(ctx context.Context, author *model.User, req *model.CreateQuestionRequest, clientIP string) (*model.Question, error) {
	question := &model.Question{
		AuthorID:      author.ID,
		Type:          req.Type,
		Subject:       req.Subject,
		Tags:          req.Tags,
		Difficulty:    req.Difficulty,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Marks:         req.Marks,
		NegativeMarks: req.NegativeMarks,
	}
	if question.Tags == nil {
		question.Tags = []string{}
	}
	if question.Options == nil {
		question.Options = []string{}
	}
	if question.Marks == 0 {
		question.Marks = 1
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.audit.Record(ctx, AuditEvent{
		UserID:    &author.ID,
		Action:    model.AuditCreateQuestion,
		IPAddress: clientIP,
		Metadata:  map[string]any{"question_id": question.ID, "subject": question.Subject},
	})
	return question, nil
}

// ListByAuthor retrieves the author's own questions.
func (s *QuestionService) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Question, error) {
	return s.questionRepo.ListByAuthor(ctx, authorID)
}
