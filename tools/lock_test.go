package tools

import (
	"os"
	"strconv"
	"testing"
	"time"
)

func TestLockMechanism(t *testing.T) {
	withTestDataDir(t)

	t.Run("acquire and release lock", func(t *testing.T) {
		os.Remove(lockPath())

		if err := acquireLock(); err != nil {
			t.Fatalf("Failed to acquire lock: %v", err)
		}

		data, err := os.ReadFile(lockPath())
		if err != nil {
			t.Fatalf("Lock file not found: %v", err)
		}
		pid, err := strconv.Atoi(string(data))
		if err != nil {
			t.Fatalf("Invalid PID in lock file: %v", err)
		}
		if pid != os.Getpid() {
			t.Errorf("Lock has wrong PID: got %d, want %d", pid, os.Getpid())
		}

		if err := releaseLock(); err != nil {
			t.Fatalf("Failed to release lock: %v", err)
		}
		if _, err := os.Stat(lockPath()); !os.IsNotExist(err) {
			t.Error("Lock file should be removed after release")
		}
	})

	t.Run("detect stale lock", func(t *testing.T) {
		// Non-existent PID
		if err := os.WriteFile(lockPath(), []byte("99999"), 0644); err != nil {
			t.Fatalf("Failed to create stale lock: %v", err)
		}

		if err := acquireLock(); err != nil {
			t.Fatalf("Failed to acquire lock after stale lock: %v", err)
		}

		pid, err := readLockPID()
		if err != nil || pid != os.Getpid() {
			t.Errorf("Expected our PID after cleaning stale lock, got %d (%v)", pid, err)
		}
		releaseLock()
	})

	t.Run("corrupted lock file", func(t *testing.T) {
		if err := os.WriteFile(lockPath(), []byte("not-a-pid"), 0644); err != nil {
			t.Fatalf("Failed to create lock: %v", err)
		}

		if err := acquireLock(); err != nil {
			t.Fatalf("Failed to acquire lock over corrupted file: %v", err)
		}
		releaseLock()
	})

	t.Run("reacquire same lock", func(t *testing.T) {
		os.Remove(lockPath())

		if err := acquireLock(); err != nil {
			t.Fatalf("Failed to acquire lock: %v", err)
		}
		// Same PID succeeds immediately
		if err := acquireLock(); err != nil {
			t.Fatalf("Failed to reacquire lock: %v", err)
		}
		releaseLock()
	})

	t.Run("release keeps foreign lock", func(t *testing.T) {
		if err := os.WriteFile(lockPath(), []byte("1"), 0644); err != nil {
			t.Fatalf("Failed to create lock: %v", err)
		}

		if err := releaseLock(); err != nil {
			t.Fatalf("releaseLock() error = %v", err)
		}
		if _, err := os.Stat(lockPath()); err != nil {
			t.Error("Lock owned by another PID should not be removed")
		}
		os.Remove(lockPath())
	})

	t.Run("timeout on held lock", func(t *testing.T) {
		if testing.Short() {
			t.Skip("waits for lockTimeout")
		}
		if !isProcessRunning(1) {
			t.Skip("PID 1 not visible")
		}

		if err := os.WriteFile(lockPath(), []byte("1"), 0644); err != nil {
			t.Fatalf("Failed to create lock: %v", err)
		}
		defer os.Remove(lockPath())

		start := time.Now()
		err := acquireLock()
		elapsed := time.Since(start)

		if err == nil {
			t.Error("Expected error acquiring held lock, got nil")
		}
		if elapsed < lockTimeout {
			t.Errorf("Expected to wait at least %v, got %v", lockTimeout, elapsed)
		}
	})

	t.Run("is process running", func(t *testing.T) {
		if !isProcessRunning(os.Getpid()) {
			t.Error("Our own process should be detected as running")
		}
		if isProcessRunning(99999) {
			t.Error("Non-existent process should not be detected as running")
		}
		if isProcessRunning(0) || isProcessRunning(-1) {
			t.Error("Non-positive PIDs should not be detected as running")
		}
	})
}
