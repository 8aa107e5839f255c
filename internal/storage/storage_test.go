package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// --- Users ---

func TestUsersCreateAndExists(t *testing.T) {
	db := testDB(t)

	exists, err := db.UserExists(9)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("user should not exist yet")
	}

	if err := db.CreateUser(9, "octocat"); err != nil {
		t.Fatalf("create: %v", err)
	}

	exists, err = db.UserExists(9)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("user should exist")
	}
}

func TestUsersCreateTwice(t *testing.T) {
	db := testDB(t)

	if err := db.CreateUser(9, "octocat"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.CreateUser(9, "octocat"); err != nil {
		t.Fatalf("second create must be a no-op: %v", err)
	}
}

func TestFirstIssueLifecycle(t *testing.T) {
	db := testDB(t)

	// Unknown users count as first-timers.
	first, err := db.IsFirstIssue(9)
	if err != nil {
		t.Fatalf("is first: %v", err)
	}
	if !first {
		t.Fatal("unknown user should be a first-timer")
	}

	db.CreateUser(9, "octocat")

	first, _ = db.IsFirstIssue(9)
	if !first {
		t.Fatal("new user should be a first-timer")
	}

	if err := db.SetFirstIssueDone(9); err != nil {
		t.Fatalf("set done: %v", err)
	}

	first, _ = db.IsFirstIssue(9)
	if first {
		t.Fatal("user should no longer be a first-timer")
	}
}

// --- Usage records ---

func TestUsageRecordLifecycle(t *testing.T) {
	db := testDB(t)

	id, err := db.CreateUsageRecord(UsageRecord{
		InstallationID: 1234,
		OwnerID:        55,
		UserID:         9,
		IssueID:        "Organization/acme/demo#7",
		Source:         "issue_label",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatal("id = 0, want autoincrement")
	}

	if err := db.CompleteUsageRecord(id, true); err != nil {
		t.Fatalf("complete: %v", err)
	}
}

func TestRequestsLeftInCycle(t *testing.T) {
	db := testDB(t)

	left, used, cycleEnd, err := db.RequestsLeftInCycle(1234, 3)
	if err != nil {
		t.Fatalf("quota: %v", err)
	}
	if left != 3 || used != 0 {
		t.Errorf("left = %d used = %d, want 3/0", left, used)
	}
	if !cycleEnd.After(time.Now().UTC()) {
		t.Errorf("cycle end %v not in the future", cycleEnd)
	}

	for i := 0; i < 3; i++ {
		if _, err := db.CreateUsageRecord(UsageRecord{
			InstallationID: 1234,
			IssueID:        "x",
			Source:         "issue_label",
		}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	left, used, _, err = db.RequestsLeftInCycle(1234, 3)
	if err != nil {
		t.Fatalf("quota: %v", err)
	}
	if left != 0 || used != 3 {
		t.Errorf("left = %d used = %d, want 0/3", left, used)
	}

	// Records never go negative even past the limit.
	db.CreateUsageRecord(UsageRecord{InstallationID: 1234, IssueID: "y", Source: "scan"})
	left, used, _, _ = db.RequestsLeftInCycle(1234, 3)
	if left != 0 || used != 4 {
		t.Errorf("left = %d used = %d, want 0/4", left, used)
	}
}

func TestRequestsLeftPerInstallation(t *testing.T) {
	db := testDB(t)

	db.CreateUsageRecord(UsageRecord{InstallationID: 1, IssueID: "a", Source: "issue_label"})

	left, used, _, err := db.RequestsLeftInCycle(2, 5)
	if err != nil {
		t.Fatalf("quota: %v", err)
	}
	if left != 5 || used != 0 {
		t.Errorf("installation 2: left = %d used = %d, want 5/0", left, used)
	}
}
