// Package embedding turns face images into fixed-length vectors.
package embedding

import (
	"context"
	"errors"
)

// ErrNoFace is returned when no face is found in the image.
var ErrNoFace = errors.New("no face detected")

// Embedder computes the embedding of the most prominent face in an image.
type Embedder interface {
	// Embed returns the embedding of the best face in imageData (JPEG, PNG, GIF or BMP).
	Embed(ctx context.Context, imageData []byte) ([]float32, error)
	// Model names the model that produced the vectors. Vectors of different models are not comparable.
	Model() string
}
