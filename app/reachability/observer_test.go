package reachability

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	psnet "github.com/shirou/gopsutil/v4/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joefazee/countrylookup/models"
)

func staticInterfaces(list psnet.InterfaceStatList, err error) func(context.Context) (psnet.InterfaceStatList, error) {
	return func(context.Context) (psnet.InterfaceStatList, error) { return list, err }
}

func TestInterfaceObserver(t *testing.T) {
	loopback := psnet.InterfaceStat{
		Name:  "lo",
		Flags: []string{"up", "loopback"},
		Addrs: psnet.InterfaceAddrList{{Addr: "127.0.0.1/8"}},
	}
	down := psnet.InterfaceStat{
		Name:  "eth1",
		Flags: []string{"broadcast"},
		Addrs: psnet.InterfaceAddrList{{Addr: "10.0.0.2/24"}},
	}
	noAddr := psnet.InterfaceStat{Name: "wlan0", Flags: []string{"up", "broadcast"}}
	eth0 := psnet.InterfaceStat{
		Name:  "eth0",
		Flags: []string{"up", "broadcast", "multicast"},
		Addrs: psnet.InterfaceAddrList{{Addr: "192.168.1.10/24"}},
	}

	tests := []struct {
		name string
		list psnet.InterfaceStatList
		err  error
		want bool
	}{
		{name: "usable interface", list: psnet.InterfaceStatList{loopback, eth0}, want: true},
		{name: "loopback only", list: psnet.InterfaceStatList{loopback}, want: false},
		{name: "interface down", list: psnet.InterfaceStatList{loopback, down}, want: false},
		{name: "no address", list: psnet.InterfaceStatList{noAddr}, want: false},
		{name: "no interfaces", want: false},
		{name: "listing fails", list: psnet.InterfaceStatList{eth0}, err: errors.New("permission denied"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &InterfaceObserver{interfaces: staticInterfaces(tt.list, tt.err)}
			assert.Equal(t, tt.want, o.Probe(context.Background()))
		})
	}
}

func TestDialObserver(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	assert.True(t, NewDialObserver(addr, time.Second).Probe(context.Background()))

	require.NoError(t, ln.Close())
	assert.False(t, NewDialObserver(addr, 100*time.Millisecond).Probe(context.Background()))
}

func TestConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())

	observer, err := cfg.Observer()
	require.NoError(t, err)
	assert.IsType(t, &InterfaceObserver{}, observer)

	cfg.Probe = ProbeDial
	require.NoError(t, cfg.Validate())
	observer, err = cfg.Observer()
	require.NoError(t, err)
	assert.IsType(t, &DialObserver{}, observer)

	cfg.DialAddr = ""
	assert.ErrorIs(t, cfg.Validate(), models.ErrInvalidProbe)

	cfg = GetDefaultConfig()
	cfg.Probe = "icmp"
	assert.ErrorIs(t, cfg.Validate(), models.ErrInvalidProbe)
	_, err = cfg.Observer()
	assert.ErrorIs(t, err, models.ErrInvalidProbe)

	cfg = GetDefaultConfig()
	cfg.Interval = 0
	assert.ErrorIs(t, cfg.Validate(), models.ErrInvalidProbeInterval)
}
