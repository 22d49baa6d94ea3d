// Package registry serves the device fleet registry, a JSON document kept in
// a GitHub repository.
//
// The document is cached with a short TTL behind an explicit
// {value, fetchedAt, ttl} cache with single-flight refresh: at most one
// fetch is in flight per registry, concurrent readers during a refresh are
// served the stale copy, and a failed refresh keeps serving stale data
// (falling back to a static document only when nothing was ever fetched).
//
// Mode and test-scenario writes are fire-and-forget: they mutate the cached
// copy and are acknowledged, but persisting them means editing the registry
// document itself — the next refresh overwrites local changes.
package registry
