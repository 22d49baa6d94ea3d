// Package history keeps a per-device log of alert level transitions in a
// SQLite database. Only transitions are recorded: a poll that resolves to the
// same level as the previous record for that device writes nothing.
package history
