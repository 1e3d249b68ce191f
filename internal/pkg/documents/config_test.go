package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProofObjectKey(t *testing.T) {
	now := time.UnixMilli(1767225600000)

	key := ProofObjectKey(42, "b7a9c7de-1111-2222-3333-444455556666", "EFT proof (final).pdf", now)
	assert.Equal(t, "pop/42/b7a9c7de-1111-2222-3333-444455556666/1767225600000-EFT_proof__final_.pdf", key)
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"statement.pdf", "statement.pdf"},
		{"../../etc/passwd", "passwd"},
		{"betaling bewys.jpeg", "betaling_bewys.jpeg"},
		{"", "upload"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, sanitizeFileName(tc.in), "input %q", tc.in)
	}
}
