// Package api implements the /api/v1/* JSON endpoints of wavealert-server.
//
// Read endpoints:
//   - GET /api/v1/health                 — service liveness and fleet size
//   - GET /api/v1/alert/{mac}           — resolved alert level for a device
//   - GET /api/v1/devices               — registered fleet
//   - GET /api/v1/devices/{mac}/history — recent level transitions
//
// Mutating endpoints (auth-gated):
//   - POST /api/v1/devices/{mac}/mode          — switch LIVE|TEST
//   - POST /api/v1/devices/{mac}/test-scenario — pin SAFE|CAUTION|DANGER
//
// The alert endpoint is where transport failure bias lives: if the upstream
// alert fetch or the registry is unreachable, the response is CAUTION, never
// SAFE. An unknown MAC gets a 404 carrying a CAUTION fallback payload so a
// misregistered device still actuates something sensible.
package api
