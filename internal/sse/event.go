// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"strings"
)

// Event names pushed to the browser.
const (
	EventConnected       = "connected"
	EventPasswordChanged = "password-changed"
)

// Event is a single server-sent event.
type Event struct {
	Name string
	Data string
}

// PasswordChanged tells every open page of an account that its password
// was replaced and the page's session is no longer valid.
func PasswordChanged() Event {
	return Event{Name: EventPasswordChanged, Data: "/auth/login"}
}

// Format encodes the event in the text/event-stream wire format. Each line
// of multi-line data gets its own "data:" prefix.
func (e Event) Format() string {
	var sb strings.Builder

	if e.Name != "" {
		sb.WriteString("event: ")
		sb.WriteString(e.Name)
		sb.WriteByte('\n')
	}

	for _, line := range strings.Split(e.Data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')
	return sb.String()
}

// Heartbeat is an SSE comment that keeps idle connections open through proxies.
const Heartbeat = ": heartbeat\n\n"
