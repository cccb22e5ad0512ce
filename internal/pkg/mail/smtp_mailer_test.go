package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("DirBoard", "no-reply@dirboard.test", "buyer@example.test", "A slot opened up", "<p>Hello</p>"))

	parts := strings.SplitN(msg, "\r\n\r\n", 2)
	if len(parts) != 2 {
		t.Fatalf("message has no header/body separator: %q", msg)
	}

	assert.Contains(t, parts[0], "From: DirBoard <no-reply@dirboard.test>")
	assert.Contains(t, parts[0], "To: buyer@example.test")
	assert.Contains(t, parts[0], "Subject: A slot opened up")
	assert.Contains(t, parts[0], "Content-Type: text/html; charset=UTF-8")
	assert.Equal(t, "<p>Hello</p>", parts[1])
}

func TestPublicHostStripsScheme(t *testing.T) {
	t.Setenv("PUBLIC_DOMAIN", "https://dirboard.test/")
	assert.Equal(t, "dirboard.test", publicHost())

	t.Setenv("PUBLIC_DOMAIN", "")
	assert.Equal(t, "localhost", publicHost())
}
