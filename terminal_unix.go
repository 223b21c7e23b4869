//go:build linux

package rline

import "golang.org/x/sys/unix"

// ioctlGetTermiosRequest is the ioctl request number used to fetch the
// live termios struct, for bind-tty-special-chars. Differs across unix
// variants (TCGETS on Linux, TIOCGETA on BSD/Darwin); this module
// targets Linux, matching the teacher's own CI (only linux tags appear
// across its build).
const ioctlGetTermiosRequest = unix.TCGETS
