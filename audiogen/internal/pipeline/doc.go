// Package pipeline regenerates the fleet's alert audio assets.
//
// Alert announcement texts live in the settings document in the fleet
// repository. Each run fetches them, compares their hashes against the
// manifest committed alongside the audio files, synthesizes new MP3s for the
// texts that changed, and commits both the audio and the updated manifest
// back. Unchanged texts cost nothing: no synthesis, no commit.
package pipeline
