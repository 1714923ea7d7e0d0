// Package driving provides interfaces exposed to inbound adapters
// (primary ports).
package driving
