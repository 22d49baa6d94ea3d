// Package poller runs the appliance's polling loop.
//
// Each cycle resolves the alert level through a fallback chain:
//
//  1. Ask the cloud service for this device's level. On success the raw
//     response is persisted as the last-known-good cache.
//  2. If the service is unreachable, replay the cached response.
//  3. If there is no cache, fetch alerts from the upstream weather API
//     directly and evaluate them locally.
//  4. If everything fails, hold the last actuated level; if nothing was ever
//     actuated, show CAUTION. The one thing a dead network must never
//     produce is a green light.
//
// A resolved level is actuated (LED pattern plus audio announcement) only on
// transitions.
package poller
