package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the engine and its surrounding plumbing.
const (
	AuditLogin          = "LOGIN"
	AuditLogout         = "LOGOUT"
	AuditCreateUser     = "CREATE_USER"
	AuditCreateExam     = "CREATE_EXAM"
	AuditCreateQuestion = "CREATE_QUESTION"
	AuditStartAttempt   = "START_EXAM_ATTEMPT"
	AuditResumeAttempt  = "RESUME_EXAM_ATTEMPT"
	AuditSubmitAttempt  = "SUBMIT_EXAM_ATTEMPT"
	AuditTimeoutSubmit  = "EXAM_TIMEOUT_SUBMIT"
	AuditForcedTimeout  = "FORCED_EXAM_TIMEOUT"
	AuditLazyTimeout    = "LAZY_EXAM_TIMEOUT"
)

// AuditLog is an immutable trail record of a user-visible action.
type AuditLog struct {
	ID        int64           `json:"id"`
	UserID    *uuid.UUID      `json:"user_id,omitempty"`
	Action    string          `json:"action"`
	IPAddress string          `json:"ip_address"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
}
