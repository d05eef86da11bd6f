// Package ports provides listen address checking.
package ports

import (
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ErrInUse is returned when another process holds the address.
var ErrInUse = errors.New("address already in use")

// Listen binds addr, turning the common failures into readable errors.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		return ln, nil
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return nil, fmt.Errorf("%s: %w; stop the other server or pass --listen", addr, ErrInUse)
	}
	return nil, fmt.Errorf("cannot listen on %s: %w", addr, err)
}
