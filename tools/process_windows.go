//go:build windows

package tools

import "syscall"

// STILL_ACTIVE exit code reported for processes that have not exited
const stillActive = 259

// isProcessRunning reports whether pid is alive on Windows
func isProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}

	h, err := syscall.OpenProcess(syscall.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer syscall.CloseHandle(h)

	var code uint32
	if err := syscall.GetExitCodeProcess(h, &code); err != nil {
		return false
	}
	return code == stillActive
}
