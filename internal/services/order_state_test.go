package services

import (
	"testing"
	"time"

	"foodorder/internal/models"
)

func TestCanTransitionFollowsStateMachine(t *testing.T) {
	statuses := []models.OrderStatus{models.StatusPending, models.StatusPaid, models.StatusDelivered, models.StatusCancelled}
	legal := map[[2]models.OrderStatus]bool{
		{models.StatusPending, models.StatusPaid}:      true,
		{models.StatusPending, models.StatusCancelled}: true,
		{models.StatusPaid, models.StatusDelivered}:    true,
		{models.StatusPaid, models.StatusCancelled}:    true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			err := CanTransition(from, to)
			if legal[[2]models.OrderStatus{from, to}] {
				if err != nil {
					t.Fatalf("%s -> %s should be legal, got %v", from, to, err)
				}
				continue
			}
			if KindOf(err) != KindValidation {
				t.Fatalf("%s -> %s should be rejected, got %v", from, to, err)
			}
		}
	}
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	for _, s := range []models.OrderStatus{models.StatusDelivered, models.StatusCancelled} {
		if next := ValidTransitionsFrom(s); len(next) != 0 {
			t.Fatalf("expected %s to be terminal, got %v", s, next)
		}
	}
}

func TestNotificationForStatus(t *testing.T) {
	if _, ok := notificationFor(models.StatusPaid); ok {
		t.Fatal("Paid must not emit a notification")
	}
	if kind, ok := notificationFor(models.StatusDelivered); !ok || kind != models.NotificationOrderDelivered {
		t.Fatalf("unexpected delivered mapping: %v %v", kind, ok)
	}
	if kind, ok := notificationFor(models.StatusCancelled); !ok || kind != models.NotificationOrderCancelled {
		t.Fatalf("unexpected cancelled mapping: %v %v", kind, ok)
	}
}

func TestDisplayStatusBoundaries(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed time.Duration
		want    string
	}{
		{0, DisplayConfirmed},
		{4*time.Minute + 59*time.Second, DisplayConfirmed},
		{5 * time.Minute, DisplayPreparing},
		{14 * time.Minute, DisplayPreparing},
		{15 * time.Minute, DisplayOnTheWay},
		{19*time.Minute + 59*time.Second, DisplayOnTheWay},
		{20 * time.Minute, DisplayDelivered},
		{3 * time.Hour, DisplayDelivered},
	}
	for _, tt := range tests {
		if got := DisplayStatus(created, created.Add(tt.elapsed)); got != tt.want {
			t.Fatalf("elapsed %v: expected %q, got %q", tt.elapsed, tt.want, got)
		}
	}
}
