// Package config loads the server-side configuration from the `server:`
// section of config.yaml (the `agent:` key in a shared file is ignored).
//
// Config fields:
//   - HTTPPort           — REST API / WebSocket / metrics port (default 8080)
//   - Auth.Mode          — "apikey" or "none" for the mutating endpoints
//   - Auth.KeyEnv        — environment variable holding the expected key
//   - Auth.Header        — header name (default "x-api-key")
//   - Registry.*         — GitHub registry document, cache TTL (default 15s),
//     optional on-disk fallback document
//   - Hazard.*           — severity keyword lists; validated at startup, a
//     malformed mapping is fatal before any request is served
//   - NWS.*              — upstream alert API base URL / user agent / timeout
//   - History.*          — SQLite transition log path and retention
//   - Broadcast.Interval — WebSocket fleet snapshot cadence (default 5s)
//
// Load(path) applies defaults before unmarshalling, then validates.
package config
