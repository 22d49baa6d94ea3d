// Package githubfs reads and writes single files in a GitHub repository via
// the contents API. The device registry document and the generated audio
// assets both live in a repo, so the server and the audio pipeline share
// this client.
//
// Writes are sha-aware: Put fetches the current blob sha first so an update
// replaces rather than conflicts. Content travels base64-encoded per the
// contents API contract.
package githubfs
