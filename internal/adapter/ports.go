package adapter

import (
	"fmt"
	"net"
)

// FreePort asks the OS for an unused loopback TCP port and releases it
// immediately. The small window between release and reuse is tolerated.
func FreePort() (int, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to reserve port: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port

	if err := listener.Close(); err != nil {
		return 0, fmt.Errorf("failed to release reserved port: %w", err)
	}

	return port, nil
}
