//go:build darwin

package lockdir

func defaultDir() string {
	return "/var/tmp"
}
