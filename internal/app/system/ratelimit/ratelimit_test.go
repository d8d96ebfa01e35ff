package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T, limit int, d time.Duration) (*Limiter, *time.Time) {
	t.Helper()
	l := New(limit, d)
	t.Cleanup(l.Stop)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllow_WithinLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Error("4th attempt should be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Error("other keys are counted separately")
	}
}

func TestAllow_WindowExpires(t *testing.T) {
	l, now := newTestLimiter(t, 1, time.Minute)

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("second attempt should be limited")
	}
	if got := l.RetryAfter("k"); got != time.Minute {
		t.Errorf("RetryAfter: got %v, want %v", got, time.Minute)
	}

	*now = now.Add(time.Minute + time.Second)
	if !l.Allow("k") {
		t.Error("attempt after window should be allowed")
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter(t, 2, time.Minute)

	l.Allow("k")
	l.Allow("k")
	if l.RetryAfter("k") == 0 {
		t.Fatal("spent window should report a wait")
	}
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("Reset should clear the window")
	}
	if got := l.RetryAfter("k"); got != 0 {
		t.Errorf("RetryAfter below limit: got %v, want 0", got)
	}
}

func TestNilLimiter(t *testing.T) {
	var l *Limiter
	if !l.Allow("k") {
		t.Error("nil limiter allows everything")
	}
	l.Reset("k")
	l.Stop()
	if l.RetryAfter("k") != 0 {
		t.Error("nil limiter never asks to wait")
	}
}

func TestStopTwice(t *testing.T) {
	l := New(1, time.Minute)
	l.Stop()
	l.Stop()
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded header ignored", "10.0.0.1, 10.0.0.2", "", "192.168.1.1:1234", "192.168.1.1"},
		{"real ip header ignored", "", "10.0.0.9", "192.168.1.1:1234", "192.168.1.1"},
		{"remote addr", "", "", "192.168.1.1:1234", "192.168.1.1"},
		{"ipv6 remote addr", "", "", "[2001:db8::1]:443", "2001:db8::1"},
		{"remote addr without port", "", "", "192.168.1.1", "192.168.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
