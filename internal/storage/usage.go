package storage

import (
	"fmt"
	"time"
)

// UsageRecord is one run of the agent, created when the run starts and
// completed (successfully or not) when it ends.
type UsageRecord struct {
	ID             int64
	InstallationID int64
	OwnerID        int64
	UserID         int64
	IssueID        string
	Source         string
	Completed      bool
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// CreateUsageRecord inserts a new in-flight usage record and returns its ID.
func (d *DB) CreateUsageRecord(rec UsageRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	res, err := d.db.Exec(
		`INSERT INTO usage_records (installation_id, owner_id, user_id, issue_id, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.InstallationID, rec.OwnerID, rec.UserID, rec.IssueID, rec.Source, createdAt,
	)
	if err != nil {
		return 0, fmt.Errorf("create usage record for %s: %w", rec.IssueID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("usage record id for %s: %w", rec.IssueID, err)
	}
	return id, nil
}

// CompleteUsageRecord marks a usage record as finished. completed is false
// when the run failed after the record was opened.
func (d *DB) CompleteUsageRecord(id int64, completed bool) error {
	done := 0
	if completed {
		done = 1
	}
	_, err := d.db.Exec(
		"UPDATE usage_records SET completed = ?, completed_at = ? WHERE id = ?",
		done, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("complete usage record %d: %w", id, err)
	}
	return nil
}

// RequestsLeftInCycle counts the installation's usage in the current
// calendar-month cycle and returns the remaining allowance, the count
// used so far, and when the cycle resets.
func (d *DB) RequestsLeftInCycle(installationID int64, limit int) (left, used int, cycleEnd time.Time, err error) {
	now := time.Now().UTC()
	cycleStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	cycleEnd = cycleStart.AddDate(0, 1, 0)

	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM usage_records WHERE installation_id = ? AND created_at >= ?",
		installationID, cycleStart,
	).Scan(&used)
	if err != nil {
		return 0, 0, time.Time{}, fmt.Errorf("count usage for installation %d: %w", installationID, err)
	}

	left = limit - used
	if left < 0 {
		left = 0
	}
	return left, used, cycleEnd, nil
}
