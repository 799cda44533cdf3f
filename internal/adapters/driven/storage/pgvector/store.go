// Package pgvector provides a PostgreSQL vector store using the pgvector extension.
//
// Chunks live in a single table keyed by (document_id, ordinal). Similarity is
// computed by the database with the cosine distance operator.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgv "github.com/pgvector/pgvector-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const tableName = "doc_chunks"

// chunkModel is the row layout of the chunks table.
type chunkModel struct {
	ID         string     `gorm:"type:text;not null;index"`
	DocumentID string     `gorm:"type:text;primaryKey"`
	Ordinal    int        `gorm:"primaryKey;autoIncrement:false"`
	Content    string     `gorm:"type:text"`
	Title      string     `gorm:"type:text"`
	Summary    string     `gorm:"type:text"`
	Embedding  pgv.Vector `gorm:"type:vector"`
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
}

func (chunkModel) TableName() string {
	return tableName
}

// scoredModel is a chunk row with its cosine similarity.
type scoredModel struct {
	chunkModel
	Similarity float64
}

// Store is a pgvector-backed vector store.
type Store struct {
	db         *gorm.DB
	dimensions int
}

// NewStore connects to PostgreSQL and ensures the schema exists.
// dimensions fixes the vector column size.
func NewStore(dsn string, dimensions int) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("pgvector: dsn is required")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("pgvector: invalid dimensions %d", dimensions)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting connection pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dimensions: dimensions}
	if err := s.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// NewStoreWithDB wraps an existing connection without running migrations.
func NewStoreWithDB(db *gorm.DB, dimensions int) *Store {
	return &Store{db: db, dimensions: dimensions}
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		createTableSQL(s.dimensions),
		`CREATE INDEX IF NOT EXISTS idx_doc_chunks_id ON ` + tableName + ` (id)`,
	}
	for _, stmt := range statements {
		if err := s.db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func createTableSQL(dimensions int) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id          TEXT NOT NULL,
	document_id TEXT NOT NULL,
	ordinal     INTEGER NOT NULL,
	content     TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT '',
	embedding   vector(%d),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (document_id, ordinal)
)`, tableName, dimensions)
}

// Insert stores or replaces the chunk at (document, ordinal).
func (s *Store) Insert(ctx context.Context, chunk domain.Chunk) error {
	if len(chunk.Embedding) != s.dimensions {
		return fmt.Errorf("%w: embedding has %d dimensions, want %d",
			domain.ErrInvalidInput, len(chunk.Embedding), s.dimensions)
	}

	m := toModel(chunk)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}, {Name: "ordinal"}},
			DoUpdates: clause.AssignmentColumns([]string{"id", "content", "title", "summary", "embedding"}),
		}).
		Create(&m).Error
	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// Query returns up to k chunks of documentID, best first.
func (s *Store) Query(ctx context.Context, documentID string, vector []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	queryVector := pgv.NewVector(vector)

	var rows []scoredModel
	err := s.db.WithContext(ctx).
		Table(tableName).
		Select(tableName+".*, 1 - (embedding <=> ?) AS similarity", queryVector).
		Where("document_id = ?", documentID).
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Order("ordinal").
		Limit(k).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}

	hits := make([]domain.ScoredChunk, len(rows))
	for i := range rows {
		hits[i] = domain.ScoredChunk{
			Chunk: toChunk(&rows[i].chunkModel),
			Score: rows[i].Similarity,
		}
	}
	return hits, nil
}

// Chunks returns all chunks of a document ordered by ordinal.
func (s *Store) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	var rows []chunkModel
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("ordinal").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}

	chunks := make([]domain.Chunk, len(rows))
	for i := range rows {
		chunks[i] = toChunk(&rows[i])
	}
	return chunks, nil
}

// DeleteDocument removes every chunk of a document.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&chunkModel{}).Error
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toModel(chunk domain.Chunk) chunkModel {
	return chunkModel{
		ID:         chunk.ID,
		DocumentID: chunk.DocumentID,
		Ordinal:    chunk.Ordinal,
		Content:    chunk.Content,
		Title:      chunk.Title,
		Summary:    chunk.Summary,
		Embedding:  pgv.NewVector(chunk.Embedding),
	}
}

func toChunk(m *chunkModel) domain.Chunk {
	return domain.Chunk{
		ID:         m.ID,
		DocumentID: m.DocumentID,
		Ordinal:    m.Ordinal,
		Content:    m.Content,
		Title:      m.Title,
		Summary:    m.Summary,
		Embedding:  m.Embedding.Slice(),
	}
}
