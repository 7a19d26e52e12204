// Package dispatch selects and invokes the protocol driver named by a
// resolved location. Drivers register by name and expose only the
// capability subset their protocol supports.
package dispatch
