package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKeyed_Allow(t *testing.T) {
	tests := []struct {
		name     string
		rps      float64
		burst    int
		calls    int
		wantPass int
	}{
		{
			name:     "burst allows initial requests",
			rps:      1,
			burst:    3,
			calls:    3,
			wantPass: 3,
		},
		{
			name:     "exceeding burst blocks",
			rps:      1,
			burst:    2,
			calls:    5,
			wantPass: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := New(tt.rps, tt.burst)

			passed := 0
			for range tt.calls {
				if rl.Allow("lib-1") {
					passed++
				}
			}
			if passed != tt.wantPass {
				t.Errorf("Allow() passed %d, want %d", passed, tt.wantPass)
			}
		})
	}
}

func TestKeyed_IndependentKeys(t *testing.T) {
	rl := New(1, 1)

	if !rl.Allow("lib-1") {
		t.Error("first call for lib-1 should pass")
	}
	if rl.Allow("lib-1") {
		t.Error("second call for lib-1 should be limited")
	}
	if !rl.Allow("lib-2") {
		t.Error("lib-2 has its own bucket and should pass")
	}
}

func TestKeyed_WaitRespectsContext(t *testing.T) {
	rl := New(0.001, 1)
	rl.Allow("lib-1") // drain the bucket

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx, "lib-1"); err == nil {
		t.Error("expected context deadline error")
	}
}
