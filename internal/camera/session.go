package camera

import (
	"sync"
	"time"
)

// Session buffers frames from one QR scan attempt. A kiosk or bin opens a
// session, streams frames into it and polls until a code is decoded or the
// session expires.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	mu      sync.Mutex
	frame   []byte
	decoded string
	closed  bool
}

// SubmitFrame stores the latest frame and records the decoded payload when
// one is found. Later frames overwrite earlier ones; only the decode result
// sticks.
func (s *Session) SubmitFrame(frame []byte) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return s.decoded, s.decoded != ""
	}

	s.frame = frame
	if s.decoded != "" {
		return s.decoded, true
	}

	payload, err := DecodeQR(frame)
	if err != nil {
		return "", false
	}

	s.decoded = payload
	return payload, true
}

// Decoded returns the QR payload found so far, if any.
func (s *Session) Decoded() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decoded, s.decoded != ""
}

// LatestFrame returns a copy of the most recent frame submitted to the
// session.
func (s *Session) LatestFrame() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frame) == 0 {
		return nil, false
	}
	return append([]byte(nil), s.frame...), true
}

// ClearDecoded discards the decoded payload so the next frame scans fresh.
func (s *Session) ClearDecoded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decoded = ""
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frame = nil
}

func (s *Session) expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
