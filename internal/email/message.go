package email

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"time"
)

// Message is one outgoing HTML email
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
	Date     time.Time
}

// Bytes renders the message as an RFC 5322 payload with a quoted-printable
// text/html body.
func (m Message) Bytes() ([]byte, error) {
	if m.From == "" || m.To == "" {
		return nil, fmt.Errorf("message requires sender and recipient")
	}

	date := m.Date
	if date.IsZero() {
		date = time.Now()
	}

	from := (&mail.Address{Name: m.FromName, Address: m.From}).String()
	to := (&mail.Address{Address: m.To}).String()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(m.HTML)); err != nil {
		return nil, fmt.Errorf("failed to encode message body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode message body: %w", err)
	}

	return buf.Bytes(), nil
}
