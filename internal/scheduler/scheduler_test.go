package scheduler

import (
	"testing"
	"time"
)

func TestPruneRemindedKeepsUpcomingInterviews(t *testing.T) {
	now := time.Now()
	s := &Scheduler{reminded: map[uint]time.Time{
		1: now.Add(-2 * time.Hour),
		2: now.Add(-time.Minute),
		3: now.Add(time.Hour),
		4: now.Add(48 * time.Hour),
	}}

	s.pruneReminded(now)

	if len(s.reminded) != 2 {
		t.Fatalf("Expected 2 upcoming entries to survive, got %d", len(s.reminded))
	}
	for _, id := range []uint{3, 4} {
		if _, ok := s.reminded[id]; !ok {
			t.Errorf("Entry %d is still upcoming and should be kept", id)
		}
	}
	for _, id := range []uint{1, 2} {
		if _, ok := s.reminded[id]; ok {
			t.Errorf("Entry %d is in the past and should be dropped", id)
		}
	}
}
