package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aptiva/examgate-backend/internal/middleware"
	"github.com/aptiva/examgate-backend/internal/response"
	"github.com/aptiva/examgate-backend/internal/service"
)

// ProctorHandler handles the student-proctor endpoints.
type ProctorHandler struct {
	proctorService *service.ProctorService
}

// NewProctorHandler creates a new ProctorHandler.
func NewProctorHandler(proctorService *service.ProctorService) *ProctorHandler {
	return &ProctorHandler{proctorService: proctorService}
}

// Students godoc
// GET /api/v1/proctor/students
func (h *ProctorHandler) Students(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	students, err := h.proctorService.AssignedStudents(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// StudentPerformance godoc
// GET /api/v1/proctor/students/:id/performance
func (h *ProctorHandler) StudentPerformance(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	student, attempts, err := h.proctorService.StudentPerformance(c.Request.Context(), claims.UserID, studentID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"student":  student,
		"attempts": attempts,
	})
}
