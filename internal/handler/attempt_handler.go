package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aptiva/examgate-backend/internal/middleware"
	"github.com/aptiva/examgate-backend/internal/model"
	"github.com/aptiva/examgate-backend/internal/response"
	"github.com/aptiva/examgate-backend/internal/service"
	"github.com/aptiva/examgate-backend/internal/validator"
)

// AttemptHandler handles the attempt lifecycle endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// Start godoc
// POST /api/v1/exams/:id/attempts
// Begins or resumes the student's attempt on the exam.
func (h *AttemptHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.attemptService.Start(c.Request.Context(), claims.User(), examID, c.ClientIP())
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

// Submit godoc
// POST /api/v1/exams/:id/attempts/submit
func (h *AttemptHandler) Submit(c *gin.Context) {
	h.finalize(c, false)
}

// Timeout godoc
// POST /api/v1/exams/:id/attempts/timeout
// The client reports its timer expired; the attempt closes as TIMEOUT.
func (h *AttemptHandler) Timeout(c *gin.Context) {
	h.finalize(c, true)
}

// Results godoc
// GET /api/v1/attempts/results
func (h *AttemptHandler) Results(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	attempts, err := h.attemptService.ListResults(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}

func (h *AttemptHandler) finalize(c *gin.Context, forced bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.FinalizeAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	var result *service.FinalizeResult
	if forced {
		result, err = h.attemptService.ForceTimeout(c.Request.Context(), claims.User(), examID, &req, c.ClientIP())
	} else {
		result, err = h.attemptService.Submit(c.Request.Context(), claims.User(), examID, &req, c.ClientIP())
	}
	if err != nil {
		h.failAttempt(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// failAttempt maps attempt lifecycle errors onto the response taxonomy.
func (h *AttemptHandler) failAttempt(c *gin.Context, err error) {
	var finalized *service.AttemptFinalizedError
	switch {
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotEligible):
		response.Fail(c, http.StatusForbidden, response.ErrNotEligible)
	case errors.Is(err, service.ErrExamNotActive):
		response.Fail(c, http.StatusConflict, response.ErrExamNotActive)
	case errors.Is(err, service.ErrAttemptLimitReached):
		response.Fail(c, http.StatusConflict, response.ErrAttemptLimitReached)
	case errors.Is(err, service.ErrDeviceConflict):
		response.Fail(c, http.StatusConflict, response.ErrDeviceConflict)
	case errors.Is(err, service.ErrInvalidSession):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidSession)
	case errors.As(err, &finalized):
		response.FailWithMessage(c, http.StatusConflict, response.ErrAttemptFinalized, finalized.Error())
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
