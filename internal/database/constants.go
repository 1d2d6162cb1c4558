package database

// HNSW index parameters for face embeddings
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	HNSWMaxNeighbors = 16

	// HNSWMinCandidates is the smallest candidate pool requested from the graph per query.
	HNSWMinCandidates = 10
)
