//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		URL:          fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := Initialize(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to initialize database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestKnownFaceRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewKnownFaceRepository(pool)

	t.Run("EmptyLoad", func(t *testing.T) {
		exists, err := repo.Exists(ctx)
		if err != nil {
			t.Fatalf("Failed to check exists: %v", err)
		}
		if exists {
			t.Error("Expected no known faces")
		}
		if _, err := repo.Load(ctx); !errors.Is(err, database.ErrNoKnownFaces) {
			t.Errorf("Expected ErrNoKnownFaces, got %v", err)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		alice := make([]float32, 128)
		bob := make([]float32, 128)
		for i := range alice {
			alice[i] = float32(i) / 128.0
			bob[i] = 1 - float32(i)/128.0
		}
		table := database.NewTable("dlib", []database.KnownFace{
			{Name: "Bob", Embedding: bob, ImageCount: 4},
			{Name: "Alice", Embedding: alice, ImageCount: 2},
		}, time.Now())

		if err := repo.Save(ctx, table); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		got, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if got.Len() != 2 {
			t.Fatalf("Expected 2 faces, got %d", got.Len())
		}
		if got.Faces[0].Name != "Alice" || got.Faces[0].ImageCount != 2 {
			t.Errorf("Unexpected first face %+v", got.Faces[0])
		}
		if got.Model != "dlib" {
			t.Errorf("Expected model 'dlib', got '%s'", got.Model)
		}
		if len(got.Faces[1].Embedding) != 128 {
			t.Errorf("Expected 128 dimensions, got %d", len(got.Faces[1].Embedding))
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		table := database.NewTable("insightface", []database.KnownFace{
			{Name: "Carol", Embedding: []float32{1, 0, 0}, ImageCount: 1},
		}, time.Now())
		if err := repo.Save(ctx, table); err != nil {
			t.Fatalf("Failed to save: %v", err)
		}

		got, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("Failed to load: %v", err)
		}
		if got.Len() != 1 || got.Faces[0].Name != "Carol" {
			t.Errorf("Expected only Carol, got %v", got.Names())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		exists, err := repo.Exists(ctx)
		if err != nil {
			t.Fatalf("Failed to check exists: %v", err)
		}
		if exists {
			t.Error("Expected no known faces after delete")
		}
	})

	t.Run("RegisteredBackend", func(t *testing.T) {
		if !database.IsInitialized() {
			t.Fatal("Expected backend to be registered")
		}
		if _, err := database.GetKnownFaceWriter(ctx); err != nil {
			t.Errorf("Expected registered writer, got %v", err)
		}
	})
}

func TestMigrations(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()

	applied, err := pool.MigrationsApplied(ctx)
	if err != nil {
		t.Fatalf("Failed to get applied migrations: %v", err)
	}

	expected := []string{"001_create_known_faces.sql"}
	if len(applied) != len(expected) {
		t.Fatalf("Expected %d migrations, got %d", len(expected), len(applied))
	}
	for i := range expected {
		if applied[i] != expected[i] {
			t.Errorf("Migration %d: expected '%s', got '%s'", i, expected[i], applied[i])
		}
	}

	// a second run is a no-op
	if err := pool.Migrate(ctx); err != nil {
		t.Errorf("Second migration run failed: %v", err)
	}
}
