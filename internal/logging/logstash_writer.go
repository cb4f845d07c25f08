package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

var errCoolingDown = errors.New("logstash: waiting before reconnect")

// LogstashSink mirrors log lines to a Logstash TCP input. Lines are dropped
// while the endpoint is unreachable so logging never blocks a request.
type LogstashSink struct {
	addr       string
	dial       func(network, addr string, timeout time.Duration) (net.Conn, error)
	dialWait   time.Duration
	writeWait  time.Duration
	retryAfter time.Duration
	now        func() time.Time

	mu      sync.Mutex
	conn    net.Conn
	retryAt time.Time
	closed  bool
	dropped int
}

type SinkOption func(*LogstashSink)

func WithTimeouts(dial, write time.Duration) SinkOption {
	return func(s *LogstashSink) {
		s.dialWait = dial
		s.writeWait = write
	}
}

func WithRetryAfter(d time.Duration) SinkOption {
	return func(s *LogstashSink) {
		s.retryAfter = d
	}
}

func NewLogstashSink(addr string, opts ...SinkOption) (*LogstashSink, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}
	s := &LogstashSink{
		addr:       addr,
		dial:       net.DialTimeout,
		dialWait:   2 * time.Second,
		writeWait:  time.Second,
		retryAfter: 5 * time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Write sends one newline-terminated record. It reports success even when the
// record was dropped.
func (s *LogstashSink) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	line := make([]byte, len(p), len(p)+1)
	copy(line, p)
	if line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	if err := s.connectLocked(); err != nil {
		s.dropped++
		return len(p), nil
	}
	if s.writeWait > 0 {
		_ = s.conn.SetWriteDeadline(s.now().Add(s.writeWait))
	}
	if _, err := s.conn.Write(line); err != nil {
		s.dropped++
		s.resetLocked()
	}
	return len(p), nil
}

// Sync satisfies zapcore.WriteSyncer. Records are written unbuffered.
func (s *LogstashSink) Sync() error {
	return nil
}

func (s *LogstashSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Dropped counts records lost while Logstash was unavailable.
func (s *LogstashSink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *LogstashSink) connectLocked() error {
	if s.conn != nil {
		return nil
	}
	if !s.retryAt.IsZero() && s.now().Before(s.retryAt) {
		return errCoolingDown
	}
	conn, err := s.dial("tcp", s.addr, s.dialWait)
	if err != nil {
		s.retryAt = s.now().Add(s.retryAfter)
		return err
	}
	s.conn = conn
	s.retryAt = time.Time{}
	return nil
}

func (s *LogstashSink) resetLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.retryAt = s.now().Add(s.retryAfter)
}
