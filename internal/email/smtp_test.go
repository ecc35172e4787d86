package email

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"io"
	"math/big"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"strings"
	"sync"
	"testing"
	"time"

	"geodigest/internal/config"
	"geodigest/internal/logger"
)

// fakeSMTPServer speaks just enough SMTP for one session per connection.
// With a TLS config it advertises STARTTLS and upgrades the connection.
type fakeSMTPServer struct {
	ln        net.Listener
	mu        sync.Mutex
	commands  []string
	data      string
	authOK    bool
	tlsConfig *tls.Config
	rejectTLS bool
}

func newFakeSMTPServer(t *testing.T, authOK bool) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	s := &fakeSMTPServer{ln: ln, authOK: authOK}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func newFakeTLSSMTPServer(t *testing.T, cert tls.Certificate, rejectTLS bool) *fakeSMTPServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	s := &fakeSMTPServer{
		ln:        ln,
		authOK:    true,
		tlsConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
		rejectTLS: rejectTLS,
	}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

// selfSignedCert returns a certificate for 127.0.0.1 and a pool trusting it.
func selfSignedCert(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "fake.smtp"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("Failed to parse certificate: %v", err)
	}
	pool := x509.NewCertPool()
	pool.AddCert(leaf)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}, pool
}

func (s *fakeSMTPServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

func (s *fakeSMTPServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeSMTPServer) handle(conn net.Conn) {
	defer func() { conn.Close() }()
	r := bufio.NewReader(conn)
	write := func(line string) { io.WriteString(conn, line+"\r\n") }
	secure := false

	write("220 fake.smtp ready")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb := strings.ToUpper(strings.SplitN(line, " ", 2)[0])

		s.mu.Lock()
		s.commands = append(s.commands, verb)
		s.mu.Unlock()

		switch verb {
		case "EHLO", "HELO":
			write("250-fake.smtp")
			if s.tlsConfig != nil && !secure {
				write("250-STARTTLS")
			}
			write("250 AUTH PLAIN")
		case "STARTTLS":
			if s.tlsConfig == nil || s.rejectTLS {
				write("454 4.7.0 TLS not available")
				continue
			}
			write("220 2.0.0 Ready to start TLS")
			tlsConn := tls.Server(conn, s.tlsConfig)
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			conn = tlsConn
			r = bufio.NewReader(conn)
			secure = true
		case "AUTH":
			if s.authOK {
				write("235 2.7.0 Authentication successful")
			} else {
				write("535 5.7.8 Authentication failed")
			}
		case "MAIL", "RCPT", "RSET", "NOOP":
			write("250 OK")
		case "DATA":
			write("354 End data with <CR><LF>.<CR><LF>")
			var body strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			s.mu.Lock()
			s.data = body.String()
			s.mu.Unlock()
			write("250 OK queued")
		case "QUIT":
			write("221 Bye")
			return
		default:
			write("502 Command not implemented")
		}
	}
}

func (s *fakeSMTPServer) snapshot() ([]string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...), s.data
}

func testEmailConfig(port int) config.Email {
	return config.Email{
		SMTP: config.SMTPConfig{
			Host:     "127.0.0.1",
			Port:     port,
			Username: "digest@example.com",
			Password: "secret",
			Timeout:  "5s",
		},
		FromAddress: "digest@example.com",
		FromName:    "AI & GIS Digest",
		ToAddress:   "reader@example.com",
	}
}

func TestSMTPSenderSend(t *testing.T) {
	server := newFakeSMTPServer(t, true)
	sender := NewSMTPSender(testEmailConfig(server.port()), logger.Discard())

	msg := sender.NewMessage("AI & GIS Daily Digest - 2025-10-13", "<p>Hello</p>")
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	commands, data := server.snapshot()
	want := []string{"EHLO", "AUTH", "MAIL", "RCPT", "DATA", "QUIT"}
	if strings.Join(commands, ",") != strings.Join(want, ",") {
		t.Errorf("Expected commands %v, got %v", want, commands)
	}
	if !strings.Contains(data, "<p>Hello</p>") {
		t.Errorf("Expected HTML body in message data, got %q", data)
	}
}

func TestSMTPSenderAuthFailure(t *testing.T) {
	server := newFakeSMTPServer(t, false)
	sender := NewSMTPSender(testEmailConfig(server.port()), logger.Discard())

	err := sender.Send(context.Background(), sender.NewMessage("s", "<p>x</p>"))
	if err == nil || !strings.Contains(err.Error(), "authentication") {
		t.Errorf("Expected authentication error, got %v", err)
	}
}

func TestSMTPSenderVerify(t *testing.T) {
	server := newFakeSMTPServer(t, true)
	sender := NewSMTPSender(testEmailConfig(server.port()), logger.Discard())

	if err := sender.Verify(context.Background()); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	commands, data := server.snapshot()
	for _, c := range commands {
		if c == "MAIL" || c == "DATA" {
			t.Errorf("Verify should not send mail, saw %s", c)
		}
	}
	if data != "" {
		t.Error("Verify should not transmit message data")
	}
}

func tlsEmailConfig(port int) config.Email {
	cfg := testEmailConfig(port)
	cfg.SMTP.TLSEnabled = true
	return cfg
}

func TestSMTPSenderSendWithSTARTTLS(t *testing.T) {
	cert, pool := selfSignedCert(t)
	server := newFakeTLSSMTPServer(t, cert, false)
	sender := NewSMTPSender(tlsEmailConfig(server.port()), logger.Discard()).
		WithTLSConfig(&tls.Config{RootCAs: pool, ServerName: "127.0.0.1"})

	msg := sender.NewMessage("AI & GIS Daily Digest - 2025-10-13", "<p>Secure hello</p>")
	if err := sender.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	commands, data := server.snapshot()
	want := []string{"EHLO", "STARTTLS", "EHLO", "AUTH", "MAIL", "RCPT", "DATA", "QUIT"}
	if strings.Join(commands, ",") != strings.Join(want, ",") {
		t.Errorf("Expected commands %v, got %v", want, commands)
	}
	if !strings.Contains(data, "Secure hello") {
		t.Errorf("Expected HTML body in message data, got %q", data)
	}
}

func TestSMTPSenderVerifyWithSTARTTLS(t *testing.T) {
	cert, pool := selfSignedCert(t)
	server := newFakeTLSSMTPServer(t, cert, false)
	sender := NewSMTPSender(tlsEmailConfig(server.port()), logger.Discard()).
		WithTLSConfig(&tls.Config{RootCAs: pool, ServerName: "127.0.0.1"})

	if err := sender.Verify(context.Background()); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	commands, _ := server.snapshot()
	want := []string{"EHLO", "STARTTLS", "EHLO", "AUTH", "QUIT"}
	if strings.Join(commands, ",") != strings.Join(want, ",") {
		t.Errorf("Expected commands %v, got %v", want, commands)
	}
}

func TestSMTPSenderSTARTTLSRejected(t *testing.T) {
	cert, pool := selfSignedCert(t)
	server := newFakeTLSSMTPServer(t, cert, true)
	sender := NewSMTPSender(tlsEmailConfig(server.port()), logger.Discard()).
		WithTLSConfig(&tls.Config{RootCAs: pool, ServerName: "127.0.0.1"})

	err := sender.Send(context.Background(), sender.NewMessage("s", "<p>x</p>"))
	if err == nil || !strings.Contains(err.Error(), "STARTTLS") {
		t.Fatalf("Expected STARTTLS error, got %v", err)
	}

	commands, _ := server.snapshot()
	for _, c := range commands {
		if c == "AUTH" || c == "MAIL" {
			t.Errorf("Expected no %s after failed STARTTLS", c)
		}
	}
}

func TestSMTPSenderUntrustedCertificate(t *testing.T) {
	cert, _ := selfSignedCert(t)
	server := newFakeTLSSMTPServer(t, cert, false)
	sender := NewSMTPSender(tlsEmailConfig(server.port()), logger.Discard())

	if err := sender.Verify(context.Background()); err == nil || !strings.Contains(err.Error(), "STARTTLS") {
		t.Errorf("Expected certificate verification failure, got %v", err)
	}
}

func TestSMTPSenderNotConfigured(t *testing.T) {
	sender := NewSMTPSender(config.Email{}, logger.Discard())

	if err := sender.Send(context.Background(), Message{To: "x@example.com"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if err := sender.Verify(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured from Verify, got %v", err)
	}
}

func TestSMTPSenderConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	sender := NewSMTPSender(testEmailConfig(port), logger.Discard())
	if err := sender.Send(context.Background(), sender.NewMessage("s", "b")); err == nil {
		t.Error("Expected connection error")
	}
}

func TestMessageBytes(t *testing.T) {
	msg := Message{
		From:     "digest@example.com",
		FromName: "AI & GIS Digest",
		To:       "reader@example.com",
		Subject:  "🌐 GIS & AI Weekly Trends - 2025-10-13",
		HTML:     "<p>Résumé of " + strings.Repeat("long ", 30) + "content</p>",
		Date:     time.Date(2025, time.October, 13, 8, 0, 0, 0, time.UTC),
	}

	raw, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("Failed to parse message: %v", err)
	}

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	if err != nil {
		t.Fatalf("Failed to decode subject: %v", err)
	}
	if subject != msg.Subject {
		t.Errorf("Expected subject %q, got %q", msg.Subject, subject)
	}

	if ct := parsed.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected text/html content type, got %q", ct)
	}

	from, err := parsed.Header.AddressList("From")
	if err != nil || len(from) != 1 || from[0].Address != "digest@example.com" || from[0].Name != "AI & GIS Digest" {
		t.Errorf("Unexpected From header %v (%v)", from, err)
	}

	body, err := io.ReadAll(quotedprintable.NewReader(parsed.Body))
	if err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if string(body) != msg.HTML {
		t.Errorf("Body round trip mismatch: %q", body)
	}
}

func TestMessageBytesRequiresAddresses(t *testing.T) {
	if _, err := (Message{To: "x@example.com"}).Bytes(); err == nil {
		t.Error("Expected error without sender")
	}
}
