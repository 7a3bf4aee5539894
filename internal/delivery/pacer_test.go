package delivery_test

import (
	"context"
	"testing"
	"time"

	"marquee/internal/delivery"
)

func TestPacerSpacesConsecutiveSends(t *testing.T) {
	pacer := delivery.NewPacer(60 * time.Millisecond)
	dest := delivery.Destination{ChatID: 1}
	ctx := context.Background()

	start := time.Now()
	if err := pacer.Wait(ctx, dest); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	if err := pacer.Wait(ctx, dest); err != nil {
		t.Fatalf("second wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("second send not paced: elapsed %v", elapsed)
	}
}

func TestPacerIndependentDestinations(t *testing.T) {
	pacer := delivery.NewPacer(200 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for chat := int64(1); chat <= 5; chat++ {
		if err := pacer.Wait(ctx, delivery.Destination{ChatID: chat}); err != nil {
			t.Fatalf("wait for chat %d failed: %v", chat, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("distinct destinations should not pace each other: elapsed %v", elapsed)
	}
}

func TestPacerHonorsCancellation(t *testing.T) {
	pacer := delivery.NewPacer(time.Minute)
	dest := delivery.Destination{ChatID: 1}

	if err := pacer.Wait(context.Background(), dest); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pacer.Wait(ctx, dest); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPacerCancelledWaitReleasesSlot(t *testing.T) {
	pacer := delivery.NewPacer(100 * time.Millisecond)
	dest := delivery.Destination{ChatID: 1}

	start := time.Now()
	if err := pacer.Wait(context.Background(), dest); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pacer.Wait(ctx, dest); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The abandoned wait sent nothing, so the next send is paced against
	// the first one, not against the cancelled reservation.
	if err := pacer.Wait(context.Background(), dest); err != nil {
		t.Fatalf("third wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 160*time.Millisecond {
		t.Fatalf("cancelled wait delayed the next send: elapsed %v", elapsed)
	}
}

func TestPacerZeroIntervalDisabled(t *testing.T) {
	pacer := delivery.NewPacer(0)
	dest := delivery.Destination{ChatID: 1}

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := pacer.Wait(context.Background(), dest); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("zero interval must not pace: elapsed %v", elapsed)
	}
}
