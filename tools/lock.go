package tools

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	lockFile      = "index.lock"
	lockTimeout   = 5 * time.Second // Max time to wait for another process
	lockRetryWait = 500 * time.Millisecond
)

// errLockHeld is returned by cleanStaleLock while a live process owns the lock
var errLockHeld = errors.New("index lock held")

func lockPath() string {
	return filepath.Join(dataDir, lockFile)
}

// readLockPID returns the PID stored in the lock file.
// A missing file yields fs.ErrNotExist.
func readLockPID() (int, error) {
	data, err := os.ReadFile(lockPath())
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("corrupted lock file: %w", err)
	}
	return pid, nil
}

// cleanStaleLock removes the lock file if the owning process is gone
func cleanStaleLock() error {
	pid, err := readLockPID()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		log.Printf("Warning: %v, removing...", err)
		return os.Remove(lockPath())
	case isProcessRunning(pid):
		return fmt.Errorf("%w by running process %d", errLockHeld, pid)
	}

	log.Printf("Stale lock detected (PID %d not running), cleaning...", pid)
	return os.Remove(lockPath())
}

// acquireLock takes the inter-process index lock, waiting up to lockTimeout
// for another server instance to release it. Reentrant for this process.
func acquireLock() error {
	ourPID := os.Getpid()

	if pid, err := readLockPID(); err == nil && pid == ourPID {
		return nil
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	start := time.Now()
	for {
		err := cleanStaleLock()
		if err == nil {
			break
		}
		if !errors.Is(err, errLockHeld) {
			return fmt.Errorf("failed to inspect lock file: %w", err)
		}

		elapsed := time.Since(start)
		if elapsed >= lockTimeout {
			return fmt.Errorf("timeout waiting for index lock after %v: %w", elapsed.Round(time.Millisecond), err)
		}
		log.Printf("Index locked by another process, waiting... (%v elapsed)", elapsed.Round(100*time.Millisecond))
		time.Sleep(lockRetryWait)
	}

	if err := os.WriteFile(lockPath(), []byte(strconv.Itoa(ourPID)), 0644); err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	log.Printf("✓ Index lock acquired (PID %d)", ourPID)
	return nil
}

// releaseLock removes the lock file if this process owns it
func releaseLock() error {
	pid, err := readLockPID()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil && pid != os.Getpid() {
		log.Printf("Warning: Lock file owned by PID %d, not removing", pid)
		return nil
	}

	if err := os.Remove(lockPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}

	log.Printf("✓ Index lock released")
	return nil
}
