package healthprobe

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Probe checks one backend's liveness. Implementations must be safe for
// repeated sequential calls; they are invoked once per probe interval.
type Probe interface {
	DoProbe() (bool, error)
}

type BackendAddr struct {
	IP   net.IP
	Port uint16
}

func (a BackendAddr) String() string {
	return fmt.Sprintf("%s:%d", a.IP.String(), a.Port)
}

func BackendAddrFromString(str string) (BackendAddr, error) {
	host, portStr, ok := strings.Cut(str, ":")
	if !ok {
		return BackendAddr{}, fmt.Errorf("invalid backend address format: %s", str)
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return BackendAddr{}, fmt.Errorf("invalid backend ip: %s", host)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return BackendAddr{}, fmt.Errorf("failed to parse backend port: %w", err)
	}
	return BackendAddr{
		IP:   ip,
		Port: uint16(port),
	}, nil
}
