package reachability

import (
	"context"
	"net"
	"strings"
	"time"

	psnet "github.com/shirou/gopsutil/v4/net"
)

// Observer reports whether a usable network path exists right now.
type Observer interface {
	Probe(ctx context.Context) bool
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context) bool

func (f ObserverFunc) Probe(ctx context.Context) bool {
	return f(ctx)
}

// InterfaceObserver considers the network available when at least one interface
// is up, is not a loopback, and carries an address.
type InterfaceObserver struct {
	interfaces func(ctx context.Context) (psnet.InterfaceStatList, error)
}

func NewInterfaceObserver() *InterfaceObserver {
	return &InterfaceObserver{interfaces: psnet.InterfacesWithContext}
}

func (o *InterfaceObserver) Probe(ctx context.Context) bool {
	list, err := o.interfaces(ctx)
	if err != nil {
		return false
	}
	for _, iface := range list {
		if usable(iface) {
			return true
		}
	}
	return false
}

func usable(iface psnet.InterfaceStat) bool {
	up := false
	for _, flag := range iface.Flags {
		switch strings.ToLower(flag) {
		case "loopback":
			return false
		case "up":
			up = true
		}
	}
	return up && len(iface.Addrs) > 0
}

// DialObserver opens and closes a TCP connection to addr.
type DialObserver struct {
	addr   string
	dialer *net.Dialer
}

func NewDialObserver(addr string, timeout time.Duration) *DialObserver {
	return &DialObserver{addr: addr, dialer: &net.Dialer{Timeout: timeout}}
}

func (o *DialObserver) Probe(ctx context.Context) bool {
	conn, err := o.dialer.DialContext(ctx, "tcp", o.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
