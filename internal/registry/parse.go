package registry

import (
	"net"
	"strconv"
)

// splitHostPort parses a "host:port" znode name into its components.
func splitHostPort(name string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(name)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}
