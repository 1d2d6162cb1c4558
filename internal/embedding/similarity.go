package embedding

import "math"

// CosineSimilarity computes the cosine similarity between two embedding vectors
// Returns a value between -1 and 1, where 1 means identical. Vectors of different
// lengths or with a zero norm score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Mean returns the element-wise mean of vectors. Returns nil when vectors is
// empty or the vectors differ in length.
func Mean(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
	}

	mean := make([]float32, dim)
	n := float64(len(vectors))
	for i, s := range sum {
		mean[i] = float32(s / n)
	}
	return mean
}
