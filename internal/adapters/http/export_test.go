package http

import "context"

// WSSession exposes the WebSocket action dispatcher to external tests.
type WSSession struct{ s *wsSession }

func NewWSSession(deps *Dependencies, client *Client) *WSSession {
	return &WSSession{s: newWSSession(deps, client)}
}

func (w *WSSession) Handle(ctx context.Context, raw string) { w.s.handle(ctx, []byte(raw)) }

func (w *WSSession) Close() { w.s.close() }
