package sonar

import (
	"encoding/json"
	"fmt"
)

// ThingMsg is embedded in packet messages.  Path selects the bus handler.
type ThingMsg struct {
	Path string
}

// Packet is sent and received on a bus via a socket
type Packet struct {
	bus     *Bus
	src     Socketer
	message []byte // payload
}

// Bytes returns the packet message
func (p *Packet) Bytes() []byte {
	return p.message
}

func (p *Packet) String() string {
	return string(p.message)
}

// Path returns the Path of the packet message, or "" if the message has none
func (p *Packet) Path() string {
	var msg ThingMsg
	if err := json.Unmarshal(p.message, &msg); err != nil {
		return ""
	}
	return msg.Path
}

// From reports whether the packet arrived on socket s
func (p *Packet) From(s Socketer) bool {
	return p.src == s
}

// Reply sends the packet back to sender
func (p *Packet) Reply() error {
	if p.src == nil {
		return fmt.Errorf("can't reply to sender: source is nil")
	}
	return p.src.Send(p)
}

// Broadcast the packet to all other matching-tagged sockets on the bus.  The
// source socket is excluded.
func (p *Packet) Broadcast() error {
	if p.bus == nil {
		return fmt.Errorf("can't broadcast packet: bus is nil")
	}
	p.bus.broadcast(p)
	return nil
}

// Unmarshal the packet message as JSON into v
func (p *Packet) Unmarshal(v any) error {
	return json.Unmarshal(p.message, v)
}

// Marshal the packet message as JSON from v
func (p *Packet) Marshal(v any) (*Packet, error) {
	var err error
	p.message, err = json.Marshal(v)
	return p, err
}
