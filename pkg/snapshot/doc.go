// Package snapshot provides the last-known-telemetry store.
//
// The store is intentionally a single slot. Consumers of this system care
// about the current vehicle state, not history; anything that needs a
// time series should subscribe to the live stream instead.
package snapshot
