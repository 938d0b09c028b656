// Package fuzztests houses Go fuzz harnesses for the compile path: error
// annotation, line lookup, classification and passthrough streaming. They
// guard against panics and check invariants that must hold on any input.
package fuzztests
