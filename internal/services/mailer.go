package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// SMTPMailer sends reply notifications over plain SMTP. With no SMTP
// configuration present it logs a mock line and reports success, so local
// setups work without a mail account.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func (m SMTPMailer) configured() bool {
	return m.Host != "" && m.Port != "" && m.Username != "" && m.Password != ""
}

func (m SMTPMailer) SendReply(to, name, subject, replyText string) error {
	if !m.configured() {
		log.Printf("[MOCK EMAIL] reply to:%s subject:%q", to, subject)
		return nil
	}

	sanitize := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	name = sanitize(name)
	subject = sanitize(subject)

	from := fmt.Sprintf("%s <%s>", m.FromName, m.Username)
	body := fmt.Sprintf(
		"Dear %s,\r\n\r\n"+
			"Thank you for contacting ES GISHOMA. Below is the official response to your inquiry regarding %q:\r\n\r\n"+
			"%s\r\n\r\n"+
			"If you have further questions, please do not hesitate to reach out.\r\n\r\n"+
			"ES GISHOMA Administration\r\n",
		name, subject, replyText,
	)
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: RE: " + subject + " - Official Response",
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	addr := m.Host + ":" + m.Port
	return smtp.SendMail(addr, auth, m.Username, []string{to}, []byte(msg))
}
