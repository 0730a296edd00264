//go:build integration

package integration

import (
	"fmt"
	"testing"
	"time"
)

func TestScheduler_EmitsReminderDue(t *testing.T) {
	cfg := LoadCfg()
	EnsureTopic(t, cfg.KafkaBootstrap, cfg.RemindersTopic)

	db := DBOpen(t, cfg.DBDSN)
	defer db.Close()

	userID := RandID()
	deadlineID := RandID()
	dueAt := time.Now().UTC().Add(24 * time.Hour)

	SeedPreference(t, db, userID, fmt.Sprintf("it-%d@example.com", userID), false, "", "", "")
	SeedDeadline(t, db, deadlineID, userID, "dorm contract", dueAt, time.Now().UTC().Add(-time.Second))

	group := fmt.Sprintf("it-sched-%d", deadlineID)
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		ev, ok := ReadOneJSON[reminderDue](t, cfg.KafkaBootstrap, cfg.RemindersTopic, group, 5*time.Second)
		if ok && ev.DeadlineID == deadlineID {
			if ev.UserID != userID {
				t.Fatalf("event user mismatch: got %d want %d", ev.UserID, userID)
			}
			sent, err := GetReminderSent(t, db, deadlineID)
			if err != nil {
				t.Fatalf("[db] reminder_sent: %v", err)
			}
			if !sent {
				t.Fatalf("deadline %d not flagged after dispatch", deadlineID)
			}
			return
		}
	}
	t.Fatalf("no ReminderDue observed for deadline %d", deadlineID)
}
