// Package pgvector implements the vectorstore.Index contract on top of
// Postgres with the pgvector extension. Collections are row namespaces
// inside a single chunk_vectors table.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	pgvec "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"ai-docchat-be/pkg/vectorstore"
)

type Storage struct {
	db *gorm.DB

	schemaOnce sync.Once
	schemaErr  error
}

var _ vectorstore.Index = &Storage{}

func NewStorage(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) ensureSchema(ctx context.Context, vectorSize int) error {
	s.schemaOnce.Do(func() {
		db := s.db.WithContext(ctx)
		stmts := []string{
			"CREATE EXTENSION IF NOT EXISTS vector",
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunk_vectors (
				id TEXT PRIMARY KEY,
				collection TEXT NOT NULL,
				embedding vector(%d) NOT NULL,
				payload JSONB NOT NULL DEFAULT '{}'::jsonb
			)`, vectorSize),
			"CREATE INDEX IF NOT EXISTS idx_chunk_vectors_collection ON chunk_vectors (collection)",
			`CREATE TABLE IF NOT EXISTS vector_collections (
				name TEXT PRIMARY KEY,
				vector_size INT NOT NULL
			)`,
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				s.schemaErr = err
				return
			}
		}
	})
	return s.schemaErr
}

func (s *Storage) CreateCollection(ctx context.Context, name string, vectorSize int) error {
	if vectorSize <= 0 {
		return fmt.Errorf("invalid vector size %d", vectorSize)
	}
	if err := s.ensureSchema(ctx, vectorSize); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Exec(
		"INSERT INTO vector_collections (name, vector_size) VALUES (?, ?) ON CONFLICT (name) DO NOTHING",
		name, vectorSize,
	).Error
}

func (s *Storage) CollectionExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM vector_collections WHERE name = ?", name).
		Scan(&count).Error
	if err != nil {
		// before the first CreateCollection the catalog table may not exist yet
		return false, nil
	}
	return count > 0, nil
}

func (s *Storage) DropCollection(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM chunk_vectors WHERE collection = ?", name).Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM vector_collections WHERE name = ?", name).Error
	})
}

func (s *Storage) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range points {
			payload, err := json.Marshal(p.Payload)
			if err != nil {
				return fmt.Errorf("marshal payload for %s: %w", p.ID, err)
			}
			err = tx.Exec(
				`INSERT INTO chunk_vectors (id, collection, embedding, payload)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding, payload = EXCLUDED.payload`,
				p.ID, collection, pgvec.NewVector(p.Vector), string(payload),
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Storage) Search(ctx context.Context, collection string, vector []float32, k int) ([]vectorstore.ScoredPoint, error) {
	if k <= 0 {
		k = 5
	}

	var rows []struct {
		Payload    string
		Similarity float32
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT payload, 1 - (embedding <=> ?) AS similarity
		 FROM chunk_vectors
		 WHERE collection = ?
		 ORDER BY embedding <=> ?
		 LIMIT ?`,
		pgvec.NewVector(vector), collection, pgvec.NewVector(vector), k,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]vectorstore.ScoredPoint, 0, len(rows))
	for _, row := range rows {
		payload := map[string]interface{}{}
		if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		results = append(results, vectorstore.ScoredPoint{
			Payload: payload,
			Score:   row.Similarity,
		})
	}
	return results, nil
}

func (s *Storage) DeleteByField(ctx context.Context, collection string, field string, value interface{}) error {
	return s.db.WithContext(ctx).Exec(
		"DELETE FROM chunk_vectors WHERE collection = ? AND payload->>? = ?",
		collection, field, fmt.Sprintf("%v", value),
	).Error
}
