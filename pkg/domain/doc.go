/*
Package domain contains the core domain models of the mosaic canvas.

It defines the entities that the graph store, the connection lifecycle and the
adapters exchange. The package is kept pure and free of I/O or persistence,
following the same hexagonal layout as the rest of the module.

# Key Entities

  - Node: an image-bearing unit placed on the canvas.
  - Edge: a directed link between two nodes, either pending or confirmed.
  - Connection: the source/target pair of the connection awaiting confirmation.
  - Snapshot: the presentation-facing view of a canvas (nodes, edges, phase).
  - SerializedGraph: the persisted document (nodes only).
*/
package domain
