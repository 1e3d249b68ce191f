package jobqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailJobPayloadRoundTrip(t *testing.T) {
	payload := EmailJobPayload{
		To:      "thandi@example.com",
		Subject: "Your quote Q-00007 is ready",
		Body:    "<html><body>Hi</body></html>",
	}

	decoded, err := EmailJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *decoded)
}

func TestJobLifecycleMarks(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: DefaultMaxRetries}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("smtp timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "smtp timeout", job.ErrorMsg)
	assert.True(t, job.IsRetryable())

	for i := 0; i < DefaultMaxRetries; i++ {
		job.MarkAsRetrying()
	}
	assert.False(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
}

func TestProcessEmailJobValidation(t *testing.T) {
	sent := 0
	orig := sendMailFunc
	sendMailFunc = func(to, subject, body string) error {
		sent++
		return nil
	}
	defer func() { sendMailFunc = orig }()

	q := &Queue{}

	err := q.processEmailJob(&Job{Payload: map[string]interface{}{"subject": "x", "body": "y"}})
	require.Error(t, err)
	assert.Zero(t, sent)

	payload := EmailJobPayload{To: "a@b.co", Subject: "x", Body: "y"}
	err = q.processEmailJob(&Job{Payload: payload.ToMap()})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
