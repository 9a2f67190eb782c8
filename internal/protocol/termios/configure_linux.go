//go:build linux

// internal/protocol/termios/configure_linux.go
package termios

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// Termios configures the line with TCGETS/TCSETS, the same effect as
// `stty -F <dev> <baud> raw -echo`.
type Termios struct{}

// NewConfigurator returns the platform line configurator
func NewConfigurator() Configurator {
	return Termios{}
}

func (Termios) Configure(ctx context.Context, path string, cfg LineConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	speed, ok := baudToUnix(cfg.BaudRate)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnsupportedBaud, cfg.BaudRate)
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer unix.Close(fd)

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("get termios %s: %w", path, err)
	}

	if cfg.Raw {
		t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
		t.Oflag &^= unix.OPOST
		t.Lflag &^= unix.ICANON | unix.ISIG | unix.IEXTEN
		t.Cflag &^= unix.CSIZE | unix.PARENB
		t.Cflag |= unix.CS8
		t.Cc[unix.VMIN] = 1
		t.Cc[unix.VTIME] = 0
	}
	if cfg.Echo {
		t.Lflag |= unix.ECHO
	} else {
		t.Lflag &^= unix.ECHO | unix.ECHONL
	}

	t.Cflag &^= unix.CBAUD
	t.Cflag |= speed
	t.Ispeed = speed
	t.Ospeed = speed

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("set termios %s: %w", path, err)
	}
	return nil
}

func baudToUnix(baud int) (uint32, bool) {
	switch baud {
	case 9600:
		return unix.B9600, true
	case 19200:
		return unix.B19200, true
	case 38400:
		return unix.B38400, true
	case 57600:
		return unix.B57600, true
	case 115200:
		return unix.B115200, true
	case 230400:
		return unix.B230400, true
	case 460800:
		return unix.B460800, true
	case 921600:
		return unix.B921600, true
	default:
		return 0, false
	}
}
