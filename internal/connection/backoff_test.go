package connection

import (
	"testing"
	"time"
)

func TestReconnectDelay(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 3000 * time.Millisecond},
		{2, 4500 * time.Millisecond},
		{3, 6750 * time.Millisecond},
		{4, 10125 * time.Millisecond},
		{5, 15187500 * time.Microsecond},
		{6, 22781250 * time.Microsecond},
		{7, 30 * time.Second}, // 34171.875ms hits the ceiling
		{8, 30 * time.Second},
		{100, 30 * time.Second},
	}

	for _, tc := range cases {
		if got := ReconnectDelay(tc.attempt); got != tc.want {
			t.Errorf("ReconnectDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
		}
	}
}

func TestReconnectDelay_Monotonic(t *testing.T) {
	prev := time.Duration(0)
	for n := 1; n <= 50; n++ {
		d := ReconnectDelay(n)
		if d < prev {
			t.Fatalf("ReconnectDelay(%d) = %v < ReconnectDelay(%d) = %v", n, d, n-1, prev)
		}
		if d > reconnectMaxDelay {
			t.Fatalf("ReconnectDelay(%d) = %v exceeds ceiling %v", n, d, reconnectMaxDelay)
		}
		prev = d
	}
}

func TestReconnectDelay_ClampsBadInput(t *testing.T) {
	if got := ReconnectDelay(0); got != reconnectBaseDelay {
		t.Errorf("ReconnectDelay(0) = %v, want %v", got, reconnectBaseDelay)
	}
	if got := ReconnectDelay(-3); got != reconnectBaseDelay {
		t.Errorf("ReconnectDelay(-3) = %v, want %v", got, reconnectBaseDelay)
	}
}
