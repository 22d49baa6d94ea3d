// Package ws implements the WebSocket hub for wavealert-server.
//
// Hub manages a set of connected dashboard clients and broadcasts the current
// fleet status to all of them on a configurable interval (default 5s in
// production).
//
// New(source, interval) creates a Hub over a SnapshotSource.
// Hub.Run(ctx) starts the broadcast ticker — blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// fleet status immediately on connect, then streams updates on each tick.
//
// Message format sent to clients:
//
//	{
//	  "event": "fleet",
//	  "data":  { "devices": [ ... ], "generated_at": "..." }
//	}
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. WebSocket endpoint is mounted at /ws/stream by the server.
package ws
