//go:build tinygo

// Package tiny runs a ranger on a TinyGo board with Wi-Fi
package tiny

import (
	"machine"

	"github.com/merliot/sonar/ranger"
	"tinygo.org/x/drivers/hcsr04"
	"tinygo.org/x/drivers/netdev"
	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"
)

// HCSR04 wraps the tinygo driver, which reads in mm and reports 0 for no
// echo
type HCSR04 struct {
	dev hcsr04.Device
}

func NewHCSR04(trigger, echo machine.Pin) *HCSR04 {
	return &HCSR04{dev: hcsr04.New(trigger, echo)}
}

func (h *HCSR04) Configure() error {
	h.dev.Configure()
	return nil
}

func (h *HCSR04) DistanceCm() float64 {
	mm := h.dev.ReadDistance()
	if mm <= 0 {
		return ranger.Invalid
	}
	return float64(mm) / 10
}

type LED struct {
	pin machine.Pin
}

func NewLED(pin machine.Pin) *LED {
	return &LED{pin: pin}
}

func (l *LED) Configure() error {
	l.pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (l *LED) Set(on bool) {
	l.pin.Set(on)
}

// Link is the board's Wi-Fi, found by the drivers' netlink probe
type Link struct {
	ssid string
	pass string
	link netlink.Netlinker
	dev  netdev.Netdever
	up   bool
}

func NewLink(ssid, pass string) *Link {
	return &Link{ssid: ssid, pass: pass}
}

func (l *Link) Begin() error {
	l.link, l.dev = probe.Probe()
	l.link.NetNotify(func(e netlink.Event) {
		switch e {
		case netlink.EventNetUp:
			println("Wi-Fi up")
			l.up = true
		case netlink.EventNetDown:
			println("Wi-Fi down")
			l.up = false
		}
	})
	// NetConnect blocks until associated or failed; the ranger keeps
	// polling Connected either way
	err := l.link.NetConnect(&netlink.ConnectParams{
		Ssid:       l.ssid,
		Passphrase: l.pass,
	})
	if err == nil {
		l.up = true
	} else {
		println("Wi-Fi connect:", err.Error())
	}
	return nil
}

func (l *Link) Connected() bool {
	return l.up
}

func (l *Link) Addr() string {
	if l.dev == nil {
		return ""
	}
	ip, err := l.dev.Addr()
	if err != nil {
		return ""
	}
	return ip.String()
}

// Hardware returns the ranger hardware on the given board pins
func Hardware(led, trigger, echo machine.Pin, ssid, pass string) ranger.Hardware {
	return ranger.Hardware{
		Sensor:    NewHCSR04(trigger, echo),
		Indicator: NewLED(led),
		Link:      NewLink(ssid, pass),
	}
}
