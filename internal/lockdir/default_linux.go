//go:build linux

package lockdir

// /var/run/lock is a tmpfs on systemd distributions and is emptied on boot.
func defaultDir() string {
	return "/var/run/lock"
}
