package outbox

import (
	"testing"
	"time"
)

func TestBackoff_MonotoneAndCapped(t *testing.T) {
	prev := time.Duration(0)
	for attempts := 1; attempts <= 8; attempts++ {
		d := Backoff(attempts)
		if d < prev {
			t.Errorf("backoff must be non-decreasing: attempt %d gave %v after %v", attempts, d, prev)
		}
		if d > time.Hour {
			t.Errorf("backoff must cap at 1h, attempt %d gave %v", attempts, d)
		}
		prev = d
	}
}

func TestBackoff_Values(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{6, 32 * time.Minute},
		{7, time.Hour},  // 30*2^7 = 3840s, потолок
		{8, time.Hour},
	}
	for _, tt := range tests {
		if got := Backoff(tt.attempts); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestBackoff_BeyondExponentCap(t *testing.T) {
	// После восьмой попытки задержка остаётся на потолке — и не
	// переполняется на абсурдно больших attempts.
	for _, attempts := range []int{9, 20, 100, 1 << 30} {
		if got := Backoff(attempts); got != time.Hour {
			t.Errorf("Backoff(%d) = %v, want 1h", attempts, got)
		}
	}
}
