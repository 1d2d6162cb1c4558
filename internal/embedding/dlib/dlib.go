// Package dlib provides an embedding.Embedder backed by dlib through go-face.
// The models directory must contain shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat and mmod_human_face_detector.dat.
package dlib

import (
	"context"
	"fmt"
	"sync"

	"github.com/Kagami/go-face"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/embedding"
)

const modelName = "dlib_face_recognition_resnet_model_v1"

// Embedder computes 128-dimensional dlib face descriptors
type Embedder struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

// New loads the dlib models from modelsDir.
func New(modelsDir string) (*Embedder, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dlib models from %s: %w", modelsDir, err)
	}
	return &Embedder{rec: rec}, nil
}

// Embed returns the descriptor of the largest face in the image.
func (e *Embedder) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jpeg, err := embedding.PrepareImage(imageData, constants.MaxImageSize)
	if err != nil {
		return nil, err
	}

	// the recognizer is not safe for concurrent use
	e.mu.Lock()
	faces, err := e.rec.Recognize(jpeg)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("dlib recognition failed: %w", err)
	}
	if len(faces) == 0 {
		return nil, embedding.ErrNoFace
	}

	best := 0
	for i := range faces {
		if area(faces[i]) > area(faces[best]) {
			best = i
		}
	}

	descriptor := faces[best].Descriptor
	vec := make([]float32, len(descriptor))
	copy(vec, descriptor[:])
	return vec, nil
}

// Model returns the dlib model name
func (e *Embedder) Model() string {
	return modelName
}

// Close releases the native recognizer.
func (e *Embedder) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.Close()
}

func area(f face.Face) int {
	return f.Rectangle.Dx() * f.Rectangle.Dy()
}
