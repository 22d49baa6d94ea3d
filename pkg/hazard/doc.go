// Package hazard implements the coastal-hazard evaluator: it reduces a batch
// of raw weather alerts to a single discrete alert level.
//
// The evaluation pipeline has three stages:
//   - Active       — is a single alert inside its effective time window "now"?
//   - Classify     — which severity tier does an alert's event name imply?
//   - Evaluate     — max-reduce the tiers of all active alerts to one Level.
//
// The package is pure: no I/O, no clocks (now is injected), no mutation of
// inputs. It is safe to call concurrently as long as the Config is not
// mutated after construction — reloaders must swap in a whole new Config.
//
// Failure bias is deliberate and asymmetric. A per-alert timestamp that is
// missing or unparsable makes that alert count as active (over-warn rather
// than silently drop a hazard). Upstream transport failures are NOT handled
// here: callers that fail to obtain a batch at all must default to
// LevelMedium, never LevelNormal.
package hazard
