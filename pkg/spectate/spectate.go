// Package spectate fans a running machine's frames and audio out to
// any number of connected websocket viewers, for headless server-side
// emulation with a remote display. It implements the same LCDSink and
// StereoSink interfaces gameboy.GameBoy accepts directly, so it
// composes with any other sink via a fan-out wrapper rather than
// requiring its own bespoke wiring.
package spectate

import (
	"encoding/binary"
	"math"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 16,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server accepts websocket connections and broadcasts frames and
// audio blocks to every connected viewer.
type Server struct {
	mu      sync.Mutex
	viewers map[*websocket.Conn]struct{}
}

// NewServer returns an empty spectator server.
func NewServer() *Server {
	return &Server{viewers: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request to a websocket connection and
// registers it as a viewer until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.viewers[conn] = struct{}{}
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.viewers, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

const (
	frameMessage = 1
	audioMessage = 2
)

// Frame implements gameboy.LCDSink: it broadcasts the completed frame
// buffer, indexed pixels packed two-per-byte, to every viewer.
func (s *Server) Frame(buf *[144][160]uint8) {
	payload := make([]byte, 1+160*144/2)
	payload[0] = frameMessage
	i := 1
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x += 2 {
			payload[i] = buf[y][x]<<4 | buf[y][x+1]&0x0F
			i++
		}
	}
	s.broadcast(payload)
}

// PushSample implements gameboy.StereoSink: each call is broadcast as
// a 9-byte message (tag + two little-endian float32 samples).
func (s *Server) PushSample(left, right float32) {
	payload := make([]byte, 9)
	payload[0] = audioMessage
	binary.LittleEndian.PutUint32(payload[1:], math.Float32bits(left))
	binary.LittleEndian.PutUint32(payload[5:], math.Float32bits(right))
	s.broadcast(payload)
}

func (s *Server) broadcast(payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.viewers {
		_ = conn.WriteMessage(websocket.BinaryMessage, payload)
	}
}
