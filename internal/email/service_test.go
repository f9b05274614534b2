package email

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeSender struct {
	to      string
	subject string
	html    string
	text    string
	err     error
	calls   int
}

func (f *fakeSender) Send(to, subject, htmlBody, textBody string) error {
	f.calls++
	f.to = to
	f.subject = subject
	f.html = htmlBody
	f.text = textBody
	return f.err
}

func newTestService(t *testing.T, s Sender) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{
		Sender:    s,
		BaseURL:   "https://madidimarket.example",
		ResetTTL:  time.Hour,
		VerifyTTL: 48 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestSendPasswordReset(t *testing.T) {
	fake := &fakeSender{}
	svc := newTestService(t, fake)

	err := svc.SendPasswordReset(context.Background(), "ana@example.com", "tok123")
	if err != nil {
		t.Fatalf("SendPasswordReset: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("calls = %d, want 1", fake.calls)
	}
	if fake.to != "ana@example.com" {
		t.Fatalf("to = %q", fake.to)
	}
	if !strings.Contains(fake.html, "https://madidimarket.example/reset-password?token=tok123") {
		t.Fatalf("html missing reset link:\n%s", fake.html)
	}
	if !strings.Contains(fake.text, "token=tok123") {
		t.Fatalf("text missing token:\n%s", fake.text)
	}
	if !strings.Contains(fake.html, "1 hora") {
		t.Fatalf("html missing TTL:\n%s", fake.html)
	}
}

func TestSendEmailVerification(t *testing.T) {
	fake := &fakeSender{}
	svc := newTestService(t, fake)

	err := svc.SendEmailVerification(context.Background(), "ana@example.com", "vtok")
	if err != nil {
		t.Fatalf("SendEmailVerification: %v", err)
	}
	if !strings.Contains(fake.html, "/verify-email?token=vtok") {
		t.Fatalf("html missing verify link:\n%s", fake.html)
	}
	if !strings.Contains(fake.html, "2 días") {
		t.Fatalf("html missing TTL:\n%s", fake.html)
	}
}

func TestSendBusinessApproved(t *testing.T) {
	fake := &fakeSender{}
	svc := newTestService(t, fake)

	err := svc.SendBusinessApproved(context.Background(), "dueno@example.com", "Tienda Beni")
	if err != nil {
		t.Fatalf("SendBusinessApproved: %v", err)
	}
	if !strings.Contains(fake.html, "Tienda Beni") {
		t.Fatalf("html missing business name:\n%s", fake.html)
	}
	if !strings.Contains(fake.text, "Tienda Beni") {
		t.Fatalf("text missing business name:\n%s", fake.text)
	}
}

func TestSendRejectsEmptyInput(t *testing.T) {
	svc := newTestService(t, &fakeSender{})

	if err := svc.SendPasswordReset(context.Background(), "", "tok"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if err := svc.SendPasswordReset(context.Background(), "a@b.c", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSendWrapsSenderError(t *testing.T) {
	fake := &fakeSender{err: errors.New("535 authentication failed")}
	svc := newTestService(t, fake)

	err := svc.SendPasswordReset(context.Background(), "ana@example.com", "tok")
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("err = %v, want ErrSendFailed", err)
	}
}

func TestDefaultTemplatesParse(t *testing.T) {
	tpls, err := DefaultTemplates()
	if err != nil {
		t.Fatalf("DefaultTemplates: %v", err)
	}
	if tpls.ResetHTML == nil || tpls.ResetTXT == nil ||
		tpls.VerifyHTML == nil || tpls.VerifyTXT == nil ||
		tpls.ApprovedHTML == nil || tpls.ApprovedTXT == nil {
		t.Fatal("DefaultTemplates returned nil template")
	}
}

func TestDiagnoseSMTP(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{errors.New("535 5.7.8 Username and Password not accepted"), "auth"},
		{errors.New("dial tcp 74.125.x.x:587: connection refused"), "dial"},
		{errors.New("x509: certificate signed by unknown authority"), "tls"},
		{errors.New("421 try again later"), "rate_limited"},
		{errors.New("550 5.1.1 user unknown"), "invalid_recipient"},
		{errors.New("something odd"), "unknown"},
	}
	for _, tc := range cases {
		got := DiagnoseSMTP(tc.err)
		if got.Code != tc.code {
			t.Errorf("DiagnoseSMTP(%q).Code = %q, want %q", tc.err, got.Code, tc.code)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{time.Hour, "1 hora"},
		{3 * time.Hour, "3 horas"},
		{24 * time.Hour, "1 día"},
		{72 * time.Hour, "3 días"},
		{30 * time.Minute, "30 minutos"},
		{time.Minute, "1 minuto"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
