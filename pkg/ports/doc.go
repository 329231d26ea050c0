/*
Package ports defines the driven ports (interfaces) for the mosaic canvas.

These interfaces decouple the canvas core from external implementations, allowing
it to work with various storage backends, generation services and seed catalogs.

# Key Interfaces

  - CanvasStore: Persists the node list of a canvas (memory, file, redis).
  - ViewportStore: Persists the pan/zoom of a canvas.
  - Generator: The external image generation call.
  - SeedSource: Provides the node set used for new or unreadable canvases.
  - DistributedLocker: Coordinates canvas seeding across replicas.
*/
package ports
