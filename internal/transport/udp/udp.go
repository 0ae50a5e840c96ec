/*
	Copyright (c) 2025 Stratux Development Team
	Distributable under the terms of The "BSD New" License
	that can be found in the LICENSE file.

	udp.go: ships GDL90 frames to every discovered EFB over UDP, tracking
	per-client liveness via ICMP echo so that large queueable payloads
	(uplink weather) can be paced to active clients and replayed to a
	client that reconnects.
*/

package udp

import (
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/stratux/pitot/common"
	"github.com/stratux/pitot/internal/handle"
	"github.com/stratux/pitot/internal/protocol"
)

const (
	leaseFilePath  = "/tmp/udhcpd.leases"
	watchPath      = "/tmp"
	gdl90Port      = 4000
	udpMaxSize     = 1472
	inactiveBufCap = 8192

	pingHz          = 1
	pingIdentifier  = 0x25C9 // high 16 bits of the 0x25C9D99D marker
	activeThreshold = 10 * time.Second
	inAppThreshold  = 5 * time.Second
	replayThreshold = 30 * time.Second
)

var pingData = []byte("PITOT")

type client struct {
	ip   net.IP
	conn *net.UDPConn

	lastReply   time.Time
	lastRefused time.Time
	lastReplay  time.Time
	active      bool
	inApp       bool
}

// Transport implements transport.Transport, fanning GDL90 payloads out to
// every live DHCP client over UDP port 4000.
type Transport struct {
	clients map[string]*client
	watcher *leaseWatcher
	icmp    *icmp.PacketConn

	queue          [][]byte
	inactiveBuffer [][]byte // newest-first, capped at inactiveBufCap

	pingCounter uint32
}

// New constructs a UDP transport, opening the lease-file watch and the
// shared ICMP socket used for client liveness probing.
func New() *Transport {
	t := &Transport{clients: make(map[string]*client)}

	w, err := newLeaseWatcher(watchPath)
	if err != nil {
		common.Log.Debugf("udp: lease file watch unavailable: %v", err)
	} else {
		t.watcher = w
	}

	pc, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		common.Log.Errorf("udp: unable to open ICMP socket: %v", err)
	} else {
		t.icmp = pc
	}

	t.reconcileClients(time.Now())
	return t
}

func (t *Transport) Step(h handle.Handle, in []protocol.Payload) {
	if t.watcher != nil && t.watcher.fired() {
		if err := t.reconcileClients(h.UTC()); err != nil {
			common.Log.Debugf("udp: unable to update client list: %v", err)
		}
	}

	buf := make([]byte, 0, udpMaxSize)

	for _, p := range in {
		if p.Queueable {
			t.queue = append(t.queue, p.Data)
			t.pushInactive(p.Data)
			continue
		}

		if len(buf)+len(p.Data) > udpMaxSize {
			t.sendToAllClients(buf)
			buf = buf[:0]
		}
		buf = append(buf, p.Data...)
	}

	toDrain := ceilDiv(len(t.queue), h.Frequency())
	for i := 0; i < toDrain && len(t.queue) > 0; i++ {
		item := t.queue[0]
		t.queue = t.queue[1:]

		if len(buf)+len(item) > udpMaxSize {
			t.sendToAllClients(buf)
			buf = buf[:0]
		}
		buf = append(buf, item...)
	}

	if len(buf) > 0 {
		for len(t.queue) > 0 && len(buf)+len(t.queue[0]) <= udpMaxSize {
			item := t.queue[0]
			t.queue = t.queue[1:]
			buf = append(buf, item...)
		}
		t.sendToAllClients(buf)
	}

	runEvery(pingHz, &t.pingCounter, h.Frequency(), t.pingAllClients)

	t.readICMPReplies()
	t.reconcileLiveness(h.Clock())
}

// ceilDiv computes ceil((1/freq) * n) per the drain-pacing rule.
func ceilDiv(n int, freq uint16) int {
	if n == 0 || freq == 0 {
		return 0
	}
	return (n + int(freq) - 1) / int(freq)
}

func (t *Transport) pushInactive(payload []byte) {
	t.inactiveBuffer = append([][]byte{payload}, t.inactiveBuffer...)
	if len(t.inactiveBuffer) > inactiveBufCap {
		t.inactiveBuffer = t.inactiveBuffer[:inactiveBufCap]
	}
}

func (t *Transport) sendToAllClients(buf []byte) {
	if len(buf) == 0 {
		return
	}
	for _, c := range t.clients {
		t.send(c, buf)
	}
}

func (t *Transport) send(c *client, buf []byte) {
	_, err := c.conn.Write(buf)
	if err == nil {
		return
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		common.Log.Warn("udp: send overwhelming buffers")
		return
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		c.lastRefused = time.Now()
		return
	}
	common.Log.Errorf("udp: send to %s failed: %v", c.ip, err)
}

func (t *Transport) reconcileClients(utc time.Time) error {
	data, err := os.ReadFile(leaseFilePath)
	if err != nil {
		return err
	}

	alive := parseLeaseFile(data, utc)
	aliveSet := make(map[string]net.IP, len(alive))
	for _, ip := range alive {
		aliveSet[ip.String()] = ip
	}

	for key, c := range t.clients {
		if _, ok := aliveSet[key]; !ok {
			common.Log.Infof("udp: removing client %s", key)
			_ = c.conn.Close()
			delete(t.clients, key)
		}
	}

	for key, ip := range aliveSet {
		if _, ok := t.clients[key]; ok {
			continue
		}

		conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: ip, Port: gdl90Port})
		if err != nil {
			common.Log.Infof("udp: could not connect to client %s: %v", key, err)
			continue
		}

		t.clients[key] = &client{ip: ip, conn: conn}
		common.Log.Infof("udp: new client %s", key)
	}

	return nil
}

func (t *Transport) pingAllClients() {
	if t.icmp == nil {
		return
	}

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: pingIdentifier, Seq: 0, Data: pingData},
	}
	wb, err := msg.Marshal(nil)
	if err != nil {
		common.Log.Errorf("udp: failed to marshal ping: %v", err)
		return
	}

	for _, c := range t.clients {
		if _, err := t.icmp.WriteTo(wb, &net.IPAddr{IP: c.ip}); err != nil {
			common.Log.Debugf("udp: ping to %s failed: %v", c.ip, err)
		}
	}
}

func (t *Transport) readICMPReplies() {
	if t.icmp == nil {
		return
	}

	rb := make([]byte, 1500)
	for {
		_ = t.icmp.SetReadDeadline(time.Now().Add(time.Millisecond))
		n, peer, err := t.icmp.ReadFrom(rb)
		if err != nil {
			return
		}

		rm, err := icmp.ParseMessage(1, rb[:n]) // 1 = ICMP for IPv4
		if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}

		ip, ok := peer.(*net.IPAddr)
		if !ok {
			continue
		}
		if c, ok := t.clients[ip.IP.String()]; ok {
			c.lastReply = time.Now()
		}
	}
}

func (t *Transport) reconcileLiveness(now time.Time) {
	for _, c := range t.clients {
		wasActive := c.active
		c.active = !c.lastReply.IsZero() && now.Sub(c.lastReply) <= activeThreshold

		if c.active && !wasActive {
			c.lastRefused = now // re-activation: presume sleeping until proven otherwise
		}

		wasInApp := c.inApp
		c.inApp = c.active && now.Sub(c.lastRefused) >= inAppThreshold

		if c.inApp && !wasInApp && now.Sub(c.lastReplay) >= replayThreshold {
			t.replay(c)
			c.lastReplay = now
		}
	}
}

// replay ships the entire inactive buffer to c alone, oldest first (the
// buffer itself is stored newest-first).
func (t *Transport) replay(c *client) {
	if len(t.inactiveBuffer) == 0 {
		return
	}

	buf := make([]byte, 0, udpMaxSize)
	for i := len(t.inactiveBuffer) - 1; i >= 0; i-- {
		item := t.inactiveBuffer[i]
		if len(buf)+len(item) > udpMaxSize {
			t.send(c, buf)
			buf = buf[:0]
		}
		buf = append(buf, item...)
	}
	t.send(c, buf)
}

// runEvery captures the "run body every 1/hz seconds" idiom shared across
// the pipeline stages.
func runEvery(hz float64, counter *uint32, freq uint16, body func()) {
	*counter++
	threshold := uint32(float64(freq) / hz)
	if threshold < 1 {
		threshold = 1
	}
	if *counter >= threshold {
		*counter = 0
		body()
	}
}
