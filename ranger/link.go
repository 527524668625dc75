//go:build !tinygo

package ranger

import (
	"net"
)

// HostLink is the link on a host with an OS network stack.  The OS owns
// association, so Begin does nothing and Connected reports whether any
// non-loopback interface that is up has a global unicast address.
type HostLink struct {
	// Interface restricts the check to one interface, e.g. wlan0
	Interface  string
	interfaces func() ([]net.Interface, error)
	addrs      func(net.Interface) ([]net.Addr, error)
}

func NewHostLink(iface string) *HostLink {
	return &HostLink{
		Interface:  iface,
		interfaces: net.Interfaces,
		addrs:      func(i net.Interface) ([]net.Addr, error) { return i.Addrs() },
	}
}

func (h *HostLink) Begin() error {
	return nil
}

func (h *HostLink) Connected() bool {
	return h.Addr() != ""
}

func (h *HostLink) Addr() string {
	ifaces, err := h.interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if h.Interface != "" && iface.Name != h.Interface {
			continue
		}
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := h.addrs(iface)
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if ok && ipnet.IP.IsGlobalUnicast() {
				return ipnet.IP.String()
			}
		}
	}
	return ""
}
