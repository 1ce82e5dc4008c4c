package serverconn

import (
	"errors"
	"testing"
	"time"
)

func TestReconnectDelayExponential(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Second},
		{2, 20 * time.Second},
		{3, 40 * time.Second},
		{4, 60 * time.Second},
		{5, 60 * time.Second},
	}
	for _, c := range cases {
		if got := reconnectDelay(c.attempt, nil); got != c.want {
			t.Errorf("reconnectDelay(%d, nil) = %s, want %s", c.attempt, got, c.want)
		}
	}
}

func TestReconnectDelayTransient(t *testing.T) {
	err := errors.New("server sent rate limit exceeded")
	if got, want := reconnectDelay(2, err), 60*time.Second; got != want {
		t.Errorf("reconnectDelay(2, rate-limit) = %s, want %s", got, want)
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(errors.New("connection reset by peer")) {
		t.Error("expected reset error to be transient")
	}
	if IsTransient(errors.New("EOF")) {
		t.Error("expected EOF to not be transient")
	}
	if IsTransient(nil) {
		t.Error("expected nil to not be transient")
	}
}
