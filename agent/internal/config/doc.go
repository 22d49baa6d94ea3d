// Package config loads the agent-side configuration from the `agent:` section
// of config.yaml (the `server:` key in a shared file is ignored).
//
// Config fields:
//   - Service.*      — alert service base URL and request timeout
//   - CheckInterval  — poll cadence (default 60s)
//   - Location.*     — lat/lon/name used for direct upstream fallback
//   - NWS.*          — direct upstream client settings plus the hazard keyword
//     lists used when the agent must evaluate alerts itself
//   - Audio.*        — asset directory, player command and fallback chain,
//     download timeout
//   - LED.ControlFile — path the LED manager watches for pattern commands
//   - CacheFile      — last-known-good alert response persisted across polls
//
// Load(path) applies defaults before unmarshalling, then validates.
// Watch(ctx, path, onChange) hot-reloads the file and hands the caller a
// complete new Config; a failed reload keeps the previous one.
package config
