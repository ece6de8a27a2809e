package utils

import (
	"fmt"
	"html"
	"log/slog"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the outbound mail settings. An incomplete config switches
// the mailer to mock mode, where messages are only logged.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func (c SMTPConfig) complete() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

// ReservationLine is one row of the confirmation email.
type ReservationLine struct {
	Title  string
	Detail string
	Amount string
}

// ReservationEmail is the content of a reservation confirmation.
type ReservationEmail struct {
	To                 string
	GuestName          string
	ConfirmationNumber string
	ItemType           string
	CheckInDate        string
	CheckOutDate       string
	TotalAmount        string
	Currency           string
	Lines              []ReservationLine
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends reservation confirmations over SMTP.
type Mailer struct {
	cfg    SMTPConfig
	logger *slog.Logger
	send   sendFunc
}

func NewMailer(cfg SMTPConfig, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// SendReservationConfirmation sends a multipart plain/HTML confirmation.
func (m *Mailer) SendReservationConfirmation(e ReservationEmail) error {
	if strings.TrimSpace(e.To) == "" {
		return fmt.Errorf("reservation %s: recipient missing", e.ConfirmationNumber)
	}

	if !m.cfg.complete() {
		m.logger.Info("mock email",
			"to", MaskEmail(e.To),
			"confirmation", e.ConfirmationNumber,
			"item_type", e.ItemType,
			"total", e.TotalAmount+" "+e.Currency,
		)
		return nil
	}

	msg := buildReservationMessage(m.cfg, e)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, m.cfg.Username, []string{e.To}, msg); err != nil {
		return fmt.Errorf("send confirmation %s: %w", e.ConfirmationNumber, err)
	}

	m.logger.Info("confirmation email sent", "to", MaskEmail(e.To), "confirmation", e.ConfirmationNumber)
	return nil
}

func buildReservationMessage(cfg SMTPConfig, e ReservationEmail) []byte {
	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}

	guest := safe(e.GuestName)
	code := safe(e.ConfirmationNumber)
	total := safe(e.TotalAmount + " " + e.Currency)

	var plainLines, htmlLines strings.Builder
	for _, l := range e.Lines {
		plainLines.WriteString(fmt.Sprintf(" - %s: %s (%s)\n", safe(l.Title), safe(l.Detail), safe(l.Amount)))
		htmlLines.WriteString(fmt.Sprintf("<li>%s: %s (%s)</li>",
			html.EscapeString(safe(l.Title)), html.EscapeString(safe(l.Detail)), html.EscapeString(safe(l.Amount))))
	}

	plainBody := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Thank you for your reservation. Here are your booking details:\n\n"+
			"Confirmation Number: %s\n"+
			"Dates: %s - %s\n"+
			"Items:\n%s\n"+
			"Total: %s\n\n"+
			"Best regards,\n%s",
		guest, code, safe(e.CheckInDate), safe(e.CheckOutDate), plainLines.String(), total, cfg.FromName,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Reservation %s</title></head>
<body style="font-family:Arial,Helvetica,sans-serif;color:#222;background:#f5f7fb">
<div style="max-width:700px;margin:20px auto;background:#fff;padding:24px;border-radius:8px">
  <h2>Reservation Confirmation</h2>
  <p>Dear %s,</p>
  <p><b>Confirmation Number:</b> %s</p>
  <p><b>Dates:</b> %s - %s</p>
  <ul>%s</ul>
  <p><b>Total:</b> %s</p>
  <p>Best regards,<br>%s</p>
</div>
</body>
</html>`,
		html.EscapeString(code), html.EscapeString(guest), html.EscapeString(code),
		html.EscapeString(safe(e.CheckInDate)), html.EscapeString(safe(e.CheckOutDate)),
		htmlLines.String(), html.EscapeString(total), html.EscapeString(cfg.FromName),
	)

	boundary := "----=_RESERVATION_EMAIL_BOUNDARY"
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s <%s>\r\n", cfg.FromName, cfg.Username))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", safe(e.To)))
	sb.WriteString(fmt.Sprintf("Subject: Reservation Confirmation %s\r\n", code))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))
	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")
	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")
	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return []byte(sb.String())
}
