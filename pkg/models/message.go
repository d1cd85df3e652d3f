package models

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeveritySuccess:
		return true
	}
	return false
}

// MessageRecord is one displayable unit extracted from an upstream response.
type MessageRecord struct {
	ID        string                 `json:"id"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Severity  Severity               `json:"severity"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const (
	SentinelNoNewComments = "No new comments"
	SentinelNoNewMessages = "No new messages"
)

// ParsedResult is the outcome of one extraction. HasNewMessages is true iff Messages is non-empty.
type ParsedResult struct {
	Messages       []MessageRecord `json:"messages"`
	HasNewMessages bool            `json:"hasNewMessages"`
	Message        string          `json:"message"`
}

func (r ParsedResult) IsNoNewMessages() bool {
	return ContainsSentinel(r.Message)
}

// ContainsSentinel reports whether text carries one of the "nothing to report" phrases.
func ContainsSentinel(text string) bool {
	return strings.Contains(text, SentinelNoNewComments) || strings.Contains(text, SentinelNoNewMessages)
}
