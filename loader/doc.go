// Package loader provides concurrent bulk loading of texts into an embedding
// store. Embedding requests fan out across a worker pool while file writes
// remain serialized, so throughput is bounded by the provider rather than the
// append path.
package loader
