// Package scheduler defines background tasks processed by the asynq worker.
package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type identifiers. The worker registers a handler per type.
const (
	TypeEmailWelcome     = "email:welcome"
	TypeEmailQuoteStatus = "email:quote_status"
	TypeEmailQuoteNew    = "email:quote_received"
	TypeEmailContactAck  = "email:contact_ack"
	TypeMaintenanceClean = "maintenance:cleanup"
)

// WelcomeEmailPayload is the payload for TypeEmailWelcome.
type WelcomeEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// QuoteReceivedEmailPayload is the payload for TypeEmailQuoteNew.
type QuoteReceivedEmailPayload struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	QuoteID      string `json:"quoteId"`
	ServiceLabel string `json:"serviceLabel"`
	PackageType  string `json:"packageType"`
	TotalPrice   int64  `json:"totalPrice"`
	Currency     string `json:"currency"`
	TimelineDays int    `json:"timelineDays"`
}

// QuoteStatusEmailPayload is the payload for TypeEmailQuoteStatus.
type QuoteStatusEmailPayload struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	QuoteID      string `json:"quoteId"`
	ServiceLabel string `json:"serviceLabel"`
	NewStatus    string `json:"newStatus"`
	ProjectTitle string `json:"projectTitle,omitempty"`
}

// ContactAckEmailPayload is the payload for TypeEmailContactAck.
type ContactAckEmailPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newTask(taskType string, payload interface{}) (*asynq.Task, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return asynq.NewTask(taskType, encoded), nil
}

// NewWelcomeEmailTask builds a welcome email task.
func NewWelcomeEmailTask(payload WelcomeEmailPayload) (*asynq.Task, error) {
	return newTask(TypeEmailWelcome, payload)
}

// NewQuoteReceivedEmailTask builds a quote confirmation email task.
func NewQuoteReceivedEmailTask(payload QuoteReceivedEmailPayload) (*asynq.Task, error) {
	return newTask(TypeEmailQuoteNew, payload)
}

// NewQuoteStatusEmailTask builds a quote status email task.
func NewQuoteStatusEmailTask(payload QuoteStatusEmailPayload) (*asynq.Task, error) {
	return newTask(TypeEmailQuoteStatus, payload)
}

// NewContactAckEmailTask builds a contact acknowledgment email task.
func NewContactAckEmailTask(payload ContactAckEmailPayload) (*asynq.Task, error) {
	return newTask(TypeEmailContactAck, payload)
}

// NewCleanupTask builds the periodic maintenance task.
func NewCleanupTask() *asynq.Task {
	return asynq.NewTask(TypeMaintenanceClean, nil)
}
