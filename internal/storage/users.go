package storage

import (
	"database/sql"
	"fmt"
)

// UserExists reports whether the user is already known.
func (d *DB) UserExists(userID int64) (bool, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM users WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", userID, err)
	}
	return count > 0, nil
}

// CreateUser records a user on first contact. Creating an existing user
// is a no-op.
func (d *DB) CreateUser(userID int64, userName string) error {
	_, err := d.db.Exec(
		`INSERT INTO users (user_id, user_name) VALUES (?, ?)
		 ON CONFLICT(user_id) DO NOTHING`,
		userID, userName,
	)
	if err != nil {
		return fmt.Errorf("create user %d: %w", userID, err)
	}
	return nil
}

// IsFirstIssue reports whether the user has not yet completed a run.
// Unknown users count as first-timers.
func (d *DB) IsFirstIssue(userID int64) (bool, error) {
	var done int
	err := d.db.QueryRow("SELECT first_issue_done FROM users WHERE user_id = ?", userID).Scan(&done)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("check first issue %d: %w", userID, err)
	}
	return done == 0, nil
}

// SetFirstIssueDone marks the user as having completed at least one run.
func (d *DB) SetFirstIssueDone(userID int64) error {
	_, err := d.db.Exec("UPDATE users SET first_issue_done = 1 WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("mark first issue done %d: %w", userID, err)
	}
	return nil
}
