package sonar

import (
	"github.com/sirupsen/logrus"
)

var defaultMaxSockets = 200

// Bus is a logical packet broadcast bus.  Packets arrive on sockets connected
// to the bus.  A received packet is dispatched to the handler registered for
// the packet's Path, and the handler can broadcast the packet to the other
// sockets or reply back to sender.  A socket has a tag, and the bus
// segregates the sockets by tag.  Packets arriving on a tagged socket will be
// broadcast only to other sockets with same tag.  Think of a tag as a VLAN.
// The empty tag "" is the default tag on the bus.
type Bus struct {
	name       string
	log        logrus.FieldLogger
	socketsMu  rwMutex
	sockets    map[Socketer]bool
	socketQ    chan bool
	handlersMu rwMutex
	handlers   map[string]func(*Packet)
	connect    func(Socketer)
	disconnect func(Socketer)
}

// NewBus returns a new bus with connect and disconnect callbacks
func NewBus(name string, connect, disconnect func(Socketer)) *Bus {
	if connect == nil {
		connect = func(Socketer) { /* don't notify */ }
	}
	if disconnect == nil {
		disconnect = func(Socketer) { /* don't notify */ }
	}
	return &Bus{
		name:       name,
		log:        logrus.StandardLogger(),
		sockets:    make(map[Socketer]bool),
		socketQ:    make(chan bool, defaultMaxSockets),
		handlers:   make(map[string]func(*Packet)),
		connect:    connect,
		disconnect: disconnect,
	}
}

// SetLogger replaces the bus logger, which defaults to the logrus standard
// logger
func (b *Bus) SetLogger(log logrus.FieldLogger) {
	b.log = log.WithField("bus", b.name)
}

// Handle sets the packet handler for a packet path
func (b *Bus) Handle(path string, handler func(*Packet)) bool {
	if handler == nil {
		panic("handler is nil")
	}
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	if _, ok := b.handlers[path]; !ok {
		b.handlers[path] = handler
		return true
	}
	return false
}

// Unhandle removes the packet handler for the packet path
func (b *Bus) Unhandle(path string) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	delete(b.handlers, path)
}

func (b *Bus) Name() string {
	return b.name
}

// MaxSockets sets the maximum number of socket connections that can be made to
// the bus.  Any socket connection attempts past the maximum will block until
// other sockets drop.
func (b *Bus) MaxSockets(maxSockets int) {
	b.socketQ = make(chan bool, maxSockets)
}

// Sockets returns the number of sockets plugged into the bus
func (b *Bus) Sockets() int {
	b.socketsMu.RLock()
	defer b.socketsMu.RUnlock()
	return len(b.sockets)
}

// plugin the socket to the bus
func (b *Bus) plugin(s Socketer) {
	// block here when socketQ is full
	b.socketQ <- true

	b.socketsMu.Lock()
	b.sockets[s] = true
	b.socketsMu.Unlock()

	b.log.Debugf("Plugin %s", s)

	// call connect callback
	b.connect(s)
}

// unplug the socket from the bus
func (b *Bus) unplug(s Socketer) {
	b.socketsMu.Lock()
	delete(b.sockets, s)
	b.socketsMu.Unlock()

	b.log.Debugf("Unplug %s", s)

	// call disconnect callback
	b.disconnect(s)

	// release one from the socketQ
	<-b.socketQ
}

// broadcast packet to all sockets with matching tag, skipping the source
// socket src
func (b *Bus) broadcast(pkt *Packet) {
	b.socketsMu.RLock()
	defer b.socketsMu.RUnlock()
	for sock := range b.sockets {
		if pkt.src != sock &&
			pkt.src.Tag() == sock.Tag() &&
			sock.TestFlag(SocketFlagBcast) {
			b.log.Debugf("Bcast src %s dst %s packet %s", pkt.src, sock, pkt)
			if err := sock.Send(pkt); err != nil {
				b.log.Warnf("Bcast to %s failed: %s", sock, err)
			}
		}
	}
}

// receive will call the packet handler for the packet path
func (b *Bus) receive(pkt *Packet) {
	b.log.Debugf("Recv %s", pkt)
	b.handlersMu.RLock()
	handler, ok := b.handlers[pkt.Path()]
	b.handlersMu.RUnlock()
	if ok {
		handler(pkt)
	}
}
