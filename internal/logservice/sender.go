// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package logservice

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// LS is the process-wide log sender. Call sites guard with `if logservice.LS != nil`
// so every component stays usable without a configured log service.
var LS *Sender

// levels orders the known log levels from most to least verbose.
var levels = []string{"trace", "debug", "info", "warning", "error", "critical"}

func levelIndex(level string) int {
	for i, l := range levels {
		if l == level {
			return i
		}
	}
	// Unknown levels are always emitted.
	return len(levels)
}

// Sender sends log packets to a UDP listener.
type Sender struct {
	Addr       string // e.g. "127.0.0.1:1997"
	Level      string // current threshold
	conn       net.Conn
	minLevelIx int
}

// NewSender initializes a UDP log sender with the given level threshold.
func NewSender(addr string, level string) (*Sender, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	return &Sender{Addr: addr, Level: level, conn: conn, minLevelIx: levelIndex(level)}, nil
}

// Init wires the global sender. A failed dial leaves LS nil and logging disabled.
func Init(addr string, level string) error {
	s, err := NewSender(addr, level)
	if err != nil {
		return fmt.Errorf("log service unavailable at %s: %w", addr, err)
	}
	LS = s
	return nil
}

// Log sends a log message if it meets the current level threshold.
// Entity names the component ("ledger", "worker", "pool", "node"), entityID the
// instance (e.g. "worker-block-42").
func (s *Sender) Log(level, message, entity, entityID string) error {
	if levelIndex(level) < s.minLevelIx {
		return nil
	}

	pkt := LogPacket{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Entity:    entity,
		EntityID:  entityID,
	}

	data, err := json.Marshal(pkt)
	if err != nil {
		return err
	}

	_, err = s.conn.Write(data)
	return err
}

// Close closes the UDP connection.
func (s *Sender) Close() error {
	return s.conn.Close()
}
