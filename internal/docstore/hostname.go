package docstore

import "os"

// hostname names this machine's pending log file. Falls back to "unknown"
// when the OS can't report one (containers without /etc/hostname, some
// sandboxes) rather than failing every append.
func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "unknown"
	}
	return h
}
