package sonar

// Injector is a socket for injecting packets into the bus from code, rather
// than from the network
type Injector struct {
	socket
}

func NewInjector(name string, bus *Bus) *Injector {
	i := &Injector{socket{name, "", 0, bus}}
	bus.plugin(i)
	return i
}

// Inject the packet as if it arrived on the injector socket
func (i *Injector) Inject(pkt *Packet) {
	pkt.bus, pkt.src = i.bus, i
	i.bus.receive(pkt)
}
