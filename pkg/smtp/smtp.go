package smtp

import (
	"fmt"
	smtpPkg "net/smtp"
	"os"
	"strings"
)

type ItfSmtp interface {
	SendEscalationMail(conversationID string, score float64, reason string, transcript string) error
}

type smtp struct {
	auth     smtpPkg.Auth
	mail     string
	salesBox []string
	host     string
	addr     string
}

func New() ItfSmtp {
	mail := os.Getenv("SMTP_MAIL")
	password := os.Getenv("SMTP_PASSWORD")

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	var salesBox []string
	for _, addr := range strings.Split(os.Getenv("SALES_TEAM_MAIL"), ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			salesBox = append(salesBox, addr)
		}
	}

	auth := smtpPkg.PlainAuth("", mail, password, host)

	return &smtp{
		auth:     auth,
		mail:     mail,
		salesBox: salesBox,
		host:     host,
		addr:     host + ":" + port,
	}
}

func (s *smtp) SendEscalationMail(conversationID string, score float64, reason string, transcript string) error {
	if len(s.salesBox) == 0 {
		return fmt.Errorf("SALES_TEAM_MAIL not configured")
	}

	message := []byte(fmt.Sprintf(
		"To: %s\r\nSubject: Hot lead escalated (score %.0f)\r\n\r\nConversation %s was escalated to a human operator.\r\nReason: %s\r\nLead score: %.0f\r\n\r\nTranscript:\r\n%s",
		strings.Join(s.salesBox, ","), score, conversationID, reason, score, transcript))

	if err := smtpPkg.SendMail(s.addr, s.auth, s.mail, s.salesBox, message); err != nil {
		return err
	}

	return nil
}
