package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerificationTemplate(t *testing.T) {
	body, err := renderTemplate(verificationTemplate, "Asha", "493021")
	require.NoError(t, err)

	assert.Contains(t, body, "Asha")
	assert.Contains(t, body, "493021")
	assert.Contains(t, body, "10 minutes")
}

func TestRenderPasswordResetTemplate(t *testing.T) {
	body, err := renderTemplate(passwordResetTemplate, "Ravi", "118272")
	require.NoError(t, err)

	assert.Contains(t, body, "Ravi")
	assert.Contains(t, body, "118272")
}

func TestRenderTemplateEscapesName(t *testing.T) {
	body, err := renderTemplate(verificationTemplate, "<script>alert(1)</script>", "000000")
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>alert(1)</script>")
}
