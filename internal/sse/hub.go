// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package sse fans events out to the browser tabs of signed-in staff.
package sse

import (
	"sync"

	"github.com/samber/lo"
)

// clientBuffer is how many undelivered events a stream may hold before
// further events are dropped for it.
const clientBuffer = 8

type client struct {
	ch     chan Event
	userID int64
}

// Hub tracks open event streams per login session and per user. Several tabs
// share a session; several sessions (browsers) can belong to one user.
type Hub struct {
	clients      map[string][]client
	userSessions map[int64][]string
	mu           sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[string][]client),
		userSessions: make(map[int64][]string),
	}
}

// Register opens a stream for the session and returns its channel.
func (h *Hub) Register(sessionID string, userID int64) chan Event {
	ch := make(chan Event, clientBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[sessionID] = append(h.clients[sessionID], client{ch: ch, userID: userID})
	if !lo.Contains(h.userSessions[userID], sessionID) {
		h.userSessions[userID] = append(h.userSessions[userID], sessionID)
	}

	return ch
}

// Unregister removes and closes a stream.
func (h *Hub) Unregister(sessionID string, userID int64, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[sessionID] = lo.Reject(h.clients[sessionID], func(c client, _ int) bool {
		return c.ch == ch
	})

	if len(h.clients[sessionID]) == 0 {
		delete(h.clients, sessionID)
		h.userSessions[userID] = lo.Without(h.userSessions[userID], sessionID)
		if len(h.userSessions[userID]) == 0 {
			delete(h.userSessions, userID)
		}
	}

	close(ch)
}

// SendToSession delivers an event to every tab of a session. Streams with a
// full buffer miss the event.
func (h *Hub) SendToSession(sessionID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.sendLocked(sessionID, event)
}

// SendToUser delivers an event to every session of a user.
func (h *Hub) SendToUser(userID int64, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sessionID := range h.userSessions[userID] {
		h.sendLocked(sessionID, event)
	}
}

// SendToUserExcept delivers an event to every session of a user but one.
func (h *Hub) SendToUserExcept(userID int64, skipSessionID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sessionID := range lo.Without(h.userSessions[userID], skipSessionID) {
		h.sendLocked(sessionID, event)
	}
}

func (h *Hub) sendLocked(sessionID string, event Event) {
	for _, c := range h.clients[sessionID] {
		select {
		case c.ch <- event:
		default:
		}
	}
}

// ClientCount returns the number of open streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.clients), func(clients []client) int {
		return len(clients)
	})
}

// SessionCount returns the number of sessions with at least one open stream.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// UserCount returns the number of users with at least one open stream.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.userSessions)
}
