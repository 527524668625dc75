package sonar

import (
	"bytes"
	"fmt"
	"net"
	"time"

	"golang.org/x/net/websocket"
)

// webSocket wraps a websocket.Conn and implements the Socketer interface
type webSocket struct {
	socket
	mu mutex
	// out queues messages for the writer goroutine; nil when not connected
	out     chan string
	closing bool
	// pingPeriod is how often the browser side pings; the server gives up
	// after pingPeriod plus some slack without hearing anything
	pingPeriod time.Duration
	// writeWait bounds each write to the peer
	writeWait time.Duration
}

const (
	pingPeriodDefault = 4 * time.Second
	writeWaitDefault  = 2 * time.Second
	sendQueueLen      = 16
)

func newWebSocket(remoteAddr string, bus *Bus) *webSocket {
	w := &webSocket{pingPeriod: pingPeriodDefault, writeWait: writeWaitDefault}
	w.socket = socket{"ws:" + remoteAddr, "", SocketFlagBcast, bus}
	return w
}

func (w *webSocket) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closing = true
}

func (w *webSocket) isClosing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closing
}

// Send queues the packet for the peer and never waits on the network.  A
// peer that has fallen sendQueueLen messages behind loses the packet.
func (w *webSocket) Send(pkt *Packet) error {
	return w.queue(string(pkt.message))
}

func (w *webSocket) queue(msg string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.out == nil {
		return fmt.Errorf("send on closed socket")
	}
	select {
	case w.out <- msg:
		return nil
	default:
		return fmt.Errorf("send queue full, dropping message")
	}
}

// open makes the send queue; the caller drains it
func (w *webSocket) open() chan string {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out = make(chan string, sendQueueLen)
	return w.out
}

// writer sends queued messages until the queue is closed or a write fails.
// A failed write closes conn, which ends the read loop.
func (w *webSocket) writer(conn *websocket.Conn, out chan string) {
	for msg := range out {
		conn.SetWriteDeadline(time.Now().Add(w.writeWait))
		if err := websocket.Message.Send(conn, msg); err != nil {
			w.bus.log.Warnf("Write to %s failed, closing: %s", w, err)
			conn.Close()
			return
		}
	}
}

func (w *webSocket) connect(conn *websocket.Conn) {
	go w.writer(conn, w.open())
	w.bus.plugin(w)
}

func (w *webSocket) disconnect() {
	w.bus.unplug(w)
	w.mu.Lock()
	close(w.out)
	w.out = nil
	w.mu.Unlock()
}

var pingMsg = []byte("ping")
var pongMsg = []byte("pong")

func (w *webSocket) serve(conn *websocket.Conn) {
	w.connect(conn)
	w.serveServer(conn)
	w.disconnect()
}

func (w *webSocket) serveServer(conn *websocket.Conn) {

	pingCheck := w.pingPeriod + (4 * time.Second)
	lastRecv := time.Now()

	for {
		var pkt = &Packet{bus: w.bus, src: w}

		if w.isClosing() {
			w.bus.log.Infof("Closing %s", w)
			break
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))
		err := websocket.Message.Receive(conn, &pkt.message)
		if err == nil {
			lastRecv = time.Now()
			if bytes.Equal(pkt.message, pingMsg) {
				// Received ping, send pong
				if err := w.queue(string(pongMsg)); err != nil {
					w.bus.log.Warnf("Error sending pong, disconnecting %s: %s", w, err)
					break
				}
			} else {
				w.bus.receive(pkt)
			}
			continue
		}

		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			if time.Now().After(lastRecv.Add(pingCheck)) {
				w.bus.log.Infof("Timeout, disconnecting %s after %s", w, time.Since(lastRecv))
				break
			}
			continue
		}

		w.bus.log.Infof("Disconnecting %s: %s", w, err)
		break
	}
}
