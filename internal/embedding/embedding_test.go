package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func createTestImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeTestJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
		delta    float64
	}{
		{"identical vectors", []float32{1, 0, 0}, []float32{1, 0, 0}, 1.0, 0.001},
		{"opposite vectors", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1.0, 0.001},
		{"orthogonal vectors", []float32{1, 0, 0}, []float32{0, 1, 0}, 0.0, 0.001},
		{"similar vectors", []float32{1, 1, 0}, []float32{1, 0, 0}, 0.707, 0.01},
		{"scaled vectors", []float32{2, 4, 6}, []float32{1, 2, 3}, 1.0, 0.001},
		{"empty vectors", []float32{}, []float32{}, 0.0, 0.001},
		{"different lengths", []float32{1, 0}, []float32{1, 0, 0}, 0.0, 0.001},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0.0, 0.001},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CosineSimilarity(tc.a, tc.b)
			if result < tc.expected-tc.delta || result > tc.expected+tc.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f; want %f (+-%f)",
					tc.a, tc.b, result, tc.expected, tc.delta)
			}
		})
	}
}

func TestMean(t *testing.T) {
	mean := Mean([][]float32{{1, 2, 3}, {3, 4, 5}})
	want := []float32{2, 3, 4}
	if len(mean) != len(want) {
		t.Fatalf("expected %d dims, got %d", len(want), len(mean))
	}
	for i := range want {
		if mean[i] != want[i] {
			t.Errorf("mean[%d] = %f, want %f", i, mean[i], want[i])
		}
	}

	if Mean(nil) != nil {
		t.Error("expected nil mean for no vectors")
	}
	if Mean([][]float32{{1, 2}, {1}}) != nil {
		t.Error("expected nil mean for mismatched lengths")
	}
}

func TestPrepareImage_Downscales(t *testing.T) {
	data := encodePNG(t, createTestImage(400, 200, color.White))

	out, err := PrepareImage(data, 100)
	if err != nil {
		t.Fatal(err)
	}

	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("expected 100x50, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestPrepareImage_SmallJPEGUnchanged(t *testing.T) {
	data := encodeTestJPEG(t, createTestImage(50, 50, color.Black))

	out, err := PrepareImage(data, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data) {
		t.Error("expected small jpeg to be returned unchanged")
	}
}

func TestPrepareImage_SmallPNGReencoded(t *testing.T) {
	data := encodePNG(t, createTestImage(50, 50, color.Black))

	out, err := PrepareImage(data, 100)
	if err != nil {
		t.Fatal(err)
	}
	if detectMIMEType(out) != "image/jpeg" {
		t.Errorf("expected jpeg output, got %s", detectMIMEType(out))
	}
}

func TestPrepareImage_Invalid(t *testing.T) {
	if _, err := PrepareImage([]byte("not an image"), 100); err == nil {
		t.Error("expected error for invalid image data")
	}
}

func TestFaceResponseBest(t *testing.T) {
	resp := FaceResponse{Faces: []FaceDetection{
		{FaceIndex: 0, DetScore: 0.7, Embedding: []float32{1}},
		{FaceIndex: 1, DetScore: 0.95, Embedding: []float32{2}},
		{FaceIndex: 2, DetScore: 0.99},
	}}

	best, ok := resp.Best()
	if !ok {
		t.Fatal("expected a best face")
	}
	if best.FaceIndex != 1 {
		t.Errorf("expected face 1, got %d", best.FaceIndex)
	}

	if _, ok := (&FaceResponse{}).Best(); ok {
		t.Error("expected no best face for empty response")
	}
}

func TestClientEmbed(t *testing.T) {
	var gotMIME string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		_, _ = io.ReadAll(file)
		gotMIME = header.Header.Get("Content-Type")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(FaceResponse{
			FacesCount: 2,
			Faces: []FaceDetection{
				{FaceIndex: 0, Dim: 2, Embedding: []float32{0, 1}, DetScore: 0.5},
				{FaceIndex: 1, Dim: 2, Embedding: []float32{1, 0}, DetScore: 0.9},
			},
			Model: "buffalo_l",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL + "/")
	vec, err := client.Embed(context.Background(), encodePNG(t, createTestImage(20, 20, color.White)))
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(vec) != 2 || vec[0] != 1 || vec[1] != 0 {
		t.Errorf("expected embedding of the highest scoring face, got %v", vec)
	}
	if gotMIME != "image/jpeg" {
		t.Errorf("expected image/jpeg upload, got %s", gotMIME)
	}
}

func TestClientEmbed_NoFace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"faces_count":0,"faces":[],"model":"buffalo_l"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Embed(context.Background(), encodePNG(t, createTestImage(20, 20, color.White)))
	if !errors.Is(err, ErrNoFace) {
		t.Errorf("expected ErrNoFace, got %v", err)
	}
}

func TestClientEmbed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Embed(context.Background(), encodePNG(t, createTestImage(20, 20, color.White)))
	if err == nil {
		t.Fatal("expected error for server failure")
	}
	if errors.Is(err, ErrNoFace) {
		t.Error("server failure must not be reported as no face")
	}
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0, 0, 0}, "image/jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "image/png"},
		{"short", []byte{0xFF}, "application/octet-stream"},
		{"unknown", []byte("plain text data"), "application/octet-stream"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectMIMEType(tc.data); got != tc.expected {
				t.Errorf("detectMIMEType() = %s, want %s", got, tc.expected)
			}
		})
	}
}
