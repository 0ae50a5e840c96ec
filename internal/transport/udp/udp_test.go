package udp

import "testing"

func TestCeilDivDrainPacing(t *testing.T) {
	// S6: at freq=10 Hz with 50 queueable items and no further ingress,
	// the queue drains in exactly 10 ticks: 5, 5, 4, 4, 4, 4, 4, 4, 4, 4.
	queue := 50
	const freq = 10

	ticks := 0
	for queue > 0 {
		drain := ceilDiv(queue, freq)
		if drain == 0 {
			t.Fatalf("drain stalled with %d items remaining", queue)
		}
		if drain > queue {
			drain = queue
		}
		queue -= drain
		ticks++
		if ticks > 100 {
			t.Fatal("drain pacing did not converge")
		}
	}

	if ticks != 10 {
		t.Errorf("expected queue to drain in 10 ticks, took %d", ticks)
	}
}

func TestCeilDivZero(t *testing.T) {
	if got := ceilDiv(0, 10); got != 0 {
		t.Errorf("ceilDiv(0, 10) = %d, want 0", got)
	}
	if got := ceilDiv(5, 0); got != 0 {
		t.Errorf("ceilDiv(5, 0) = %d, want 0", got)
	}
}
