// Package lifecycle implements the connection state machine of a canvas.
//
// A connection moves through three phases. Connect draws a pending edge
// (Idle to Pending), Confirm asks for instructions (Pending to Confirming)
// and Submit hands the pair to the generator and commits the result. Cancel
// discards the pending edge from either open phase.
//
// Only one connection occupies the interactive slot at a time. Submit frees
// the slot before calling the generator, so further pairs may be connected
// while earlier generations are still in flight.
package lifecycle
