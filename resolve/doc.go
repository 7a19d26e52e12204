// Package resolve maps incoming locators onto stored locations. A chain
// of strategies is tried in configuration order; a memoizing cache sits
// in front of the chain as a pure performance layer.
package resolve
