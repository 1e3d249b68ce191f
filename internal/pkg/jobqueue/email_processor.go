package jobqueue

import (
	"fmt"

	"github.com/evergreengarden/portal/internal/pkg/mail"
)

// sendMailFunc is swapped out in tests.
var sendMailFunc = mail.SendMail

// processEmailJob delivers one rendered notification email.
func (q *Queue) processEmailJob(job *Job) error {
	payload, err := EmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid email payload: %w", err)
	}
	if payload.To == "" {
		return fmt.Errorf("email payload has no recipient")
	}
	return sendMailFunc(payload.To, payload.Subject, payload.Body)
}

// EnqueueEmail queues a notification email for background delivery.
func (q *Queue) EnqueueEmail(to, subject, body string) (*Job, error) {
	payload := EmailJobPayload{To: to, Subject: subject, Body: body}
	return q.EnqueueJob(JobTypeEmailNotification, payload.ToMap())
}
