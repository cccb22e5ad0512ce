package mail

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/dirboard/DirBoard/internal/pkg/env"
)

// SendMail delivers one HTML email through the configured SMTP relay. The
// envelope sender falls back to a no-reply address on the public domain when
// SMTP_SENDER is unset, so notification jobs keep working on a bare setup.
func SendMail(to string, subject string, htmlBody string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "587")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")
	senderName := env.GetEnv("SMTP_SENDER_NAME", "DirBoard")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", publicHost())
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	msg := buildMessage(senderName, sender, to, subject, htmlBody)

	if err := smtp.SendMail(addr, auth, sender, []string{to}, msg); err != nil {
		log.Printf("SMTP send to %s failed: %v", to, err)
		return err
	}
	log.Printf("Email sent to %s via %s", to, addr)
	return nil
}

// buildMessage assembles the RFC 5322 message with a named From header and an
// HTML content type.
func buildMessage(senderName, sender, to, subject, htmlBody string) []byte {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", senderName, sender),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + htmlBody)
}

func publicHost() string {
	domain := env.GetEnv("PUBLIC_DOMAIN", "localhost")
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	host := strings.TrimSuffix(domain, "/")
	if host == "" {
		return "localhost"
	}
	return host
}
