package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamMonitorChannel returns the Redis PubSub channel carrying attempt
// lifecycle events for an exam.
func (r *CacheKeyStruct) ExamMonitorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:attempt_events", examID)
}

var CacheKey = NewCacheKeyStruct()

type WorkerKeyStruct struct {
	AuditEventQueue string
}

var WorkerKey = &WorkerKeyStruct{
	AuditEventQueue: "persist_audit_events_queue",
}
