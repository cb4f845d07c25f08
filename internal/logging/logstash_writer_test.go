package logging

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogstashSinkForwardsLines(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		received <- line
	}()

	sink, err := NewLogstashSink(ln.Addr().String())
	if err != nil {
		t.Fatalf("NewLogstashSink: %v", err)
	}
	defer sink.Close()

	logger := zap.New(newLogstashCore(sink, zap.InfoLevel))
	logger.Info("user_login", zap.String("email", "a@example.com"))

	select {
	case line := <-received:
		if !strings.Contains(line, `"msg":"user_login"`) || !strings.Contains(line, `"@timestamp"`) {
			t.Fatalf("unexpected record %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for record")
	}
}

func TestLogstashSinkDropsWhileUnreachable(t *testing.T) {
	dials := 0
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sink, err := NewLogstashSink("logstash:5000", WithRetryAfter(time.Minute))
	if err != nil {
		t.Fatalf("NewLogstashSink: %v", err)
	}
	sink.now = func() time.Time { return now }
	sink.dial = func(string, string, time.Duration) (net.Conn, error) {
		dials++
		return nil, errors.New("connection refused")
	}

	for i := 0; i < 3; i++ {
		n, err := sink.Write([]byte("record"))
		if err != nil || n != len("record") {
			t.Fatalf("expected silent drop, got n=%d err=%v", n, err)
		}
	}
	if dials != 1 {
		t.Fatalf("expected one dial during cooldown, got %d", dials)
	}
	if sink.Dropped() != 3 {
		t.Fatalf("expected 3 dropped records, got %d", sink.Dropped())
	}

	now = now.Add(2 * time.Minute)
	_, _ = sink.Write([]byte("record"))
	if dials != 2 {
		t.Fatalf("expected a redial after cooldown, got %d", dials)
	}
}

func TestLogstashSinkClosed(t *testing.T) {
	sink, err := NewLogstashSink("logstash:5000")
	if err != nil {
		t.Fatalf("NewLogstashSink: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := sink.Write([]byte("x")); err == nil {
		t.Fatal("expected error after close")
	}
	if _, err := NewLogstashSink("  "); err == nil {
		t.Fatal("expected error for empty address")
	}
	var _ zapcore.WriteSyncer = sink
}
