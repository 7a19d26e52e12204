// Package transport exposes the gateway pipeline over HTTP middleware
// and an RPC-style method surface. Both adapters funnel into the same
// resolve, authorize and dispatch calls with identical guarantees.
package transport
