// Package graph holds the canonical node and edge collections of a canvas
// and the connectivity rules that keep them a single group.
//
// Store is the only place nodes and edges are mutated. Every successful
// mutation is reported once to the configured Observer, which is how the
// canvas persists its node list.
//
// WouldCreateSeparateGroups is a pure function over an edge list and can be
// used without a Store.
package graph
