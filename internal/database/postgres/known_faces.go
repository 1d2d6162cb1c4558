package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-attendance/internal/database"
)

// KnownFaceRepository provides PostgreSQL-backed storage of the known-face table
type KnownFaceRepository struct {
	pool *Pool
}

// NewKnownFaceRepository creates a new PostgreSQL known-face repository
func NewKnownFaceRepository(pool *Pool) *KnownFaceRepository {
	return &KnownFaceRepository{pool: pool}
}

// Exists checks if any known face is stored
func (r *KnownFaceRepository) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM known_faces)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check known faces exist: %w", err)
	}
	return exists, nil
}

// Load returns all known faces ordered by name
func (r *KnownFaceRepository) Load(ctx context.Context) (*database.Table, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT name, embedding, image_count, model, updated_at
		FROM known_faces
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query known faces: %w", err)
	}
	defer rows.Close()

	var (
		faces   []database.KnownFace
		model   string
		created time.Time
	)
	for rows.Next() {
		var (
			face      database.KnownFace
			vec       pgvector.Vector
			rowModel  string
			updatedAt time.Time
		)
		if err := rows.Scan(&face.Name, &vec, &face.ImageCount, &rowModel, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan known face: %w", err)
		}
		face.Embedding = vec.Slice()
		faces = append(faces, face)

		model = rowModel
		if created.IsZero() || updatedAt.Before(created) {
			created = updatedAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate known faces: %w", err)
	}

	if len(faces) == 0 {
		return nil, database.ErrNoKnownFaces
	}
	return database.NewTable(model, faces, created), nil
}

// Save replaces all known faces in one transaction
func (r *KnownFaceRepository) Save(ctx context.Context, table *database.Table) error {
	tx, err := r.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM known_faces"); err != nil {
		return fmt.Errorf("clear known faces: %w", err)
	}

	createdAt := table.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	for _, face := range table.Faces {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO known_faces (name, embedding, image_count, model, dim, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, face.Name, pgvector.NewVector(face.Embedding), face.ImageCount, table.Model, len(face.Embedding), createdAt)
		if err != nil {
			return fmt.Errorf("insert known face %s: %w", face.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit known faces: %w", err)
	}
	return nil
}

// Delete removes all known faces
func (r *KnownFaceRepository) Delete(ctx context.Context) error {
	if _, err := r.pool.db.ExecContext(ctx, "DELETE FROM known_faces"); err != nil {
		return fmt.Errorf("delete known faces: %w", err)
	}
	return nil
}
