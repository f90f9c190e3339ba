package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aptiva/examgate-backend/internal/model"
	"github.com/aptiva/examgate-backend/internal/repository"
)

// ProctorService serves the student-proctor views: the roster of assigned
// students and their recent exam performance.
type ProctorService struct {
	userRepo    *repository.UserRepository
	attemptRepo *repository.AttemptRepository
}

// NewProctorService creates a new ProctorService.
func NewProctorService(userRepo *repository.UserRepository, attemptRepo *repository.AttemptRepository) *ProctorService {
	return &ProctorService{userRepo: userRepo, attemptRepo: attemptRepo}
}

// AssignedStudents lists the students assigned to this proctor.
func (s *ProctorService) AssignedStudents(ctx context.Context, proctorID uuid.UUID) ([]model.User, error) {
	return s.userRepo.ListByProctor(ctx, proctorID)
}

// StudentPerformance retrieves a student's recent attempts, but only when
// the student is actually assigned to the requesting proctor.
func (s *ProctorService) StudentPerformance(ctx context.Context, proctorID, studentID uuid.UUID) (*model.User, []model.Attempt, error) {
	student, err := s.userRepo.GetAssignedStudent(ctx, proctorID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrStudentNotFound
		}
		return nil, nil, fmt.Errorf("load assigned student: %w", err)
	}

	attempts, err := s.attemptRepo.ListByStudent(ctx, studentID, 50)
	if err != nil {
		return nil, nil, fmt.Errorf("list attempts: %w", err)
	}
	return student, attempts, nil
}
