// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vectorstore persists document chunks with their embeddings and
// executes similarity queries over them. It is the retrieval gateway the
// question-answering workflow talks to.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/fedquery/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "fedquery.db"
)

// ErrCorpusUnavailable indicates no document has ever been indexed.
var ErrCorpusUnavailable = errors.New("corpus unavailable: no documents indexed")

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Embedder turns text into fixed-length vectors. Satisfied by
// embedding.Client; tests supply deterministic fakes.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Store manages the corpus SQLite database.
type Store struct {
	db       *sql.DB
	embedder Embedder
}

// NewStore opens or creates the corpus database at dataDir/index/fedquery.db
// and ensures the schema exists.
func NewStore(cfg types.StoreConfig, embedder Embedder) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, embedder: embedder}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			type TEXT NOT NULL,
			source_url TEXT NOT NULL,
			text TEXT NOT NULL,
			ingested_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL REFERENCES documents(id),
			chunk_index INTEGER NOT NULL,
			section_header TEXT,
			token_count INTEGER,
			text TEXT NOT NULL,
			embedding BLOB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_date ON documents(date)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_source_url ON documents(source_url)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// AddDocument stores a document and its chunks in one transaction. Chunks
// without embeddings are embedded first.
func (s *Store) AddDocument(ctx context.Context, doc types.Document, chunks []types.DocumentChunk) (int, error) {
	if err := doc.Validate(); err != nil {
		return 0, err
	}

	// Embed any chunks that arrived without vectors.
	var missing []int
	var missingTexts []string
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			missing = append(missing, i)
			missingTexts = append(missingTexts, c.Text)
		}
	}
	if len(missing) > 0 {
		vectors, err := s.embedder.Embed(ctx, missingTexts)
		if err != nil {
			return 0, fmt.Errorf("embedding chunks: %w", err)
		}
		for j, i := range missing {
			chunks[i].Embedding = vectors[j]
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ingestedAt := doc.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, title, date, type, source_url, text, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.Date, string(doc.Type), doc.SourceURL, doc.Text,
		ingestedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return 0, fmt.Errorf("inserting document %s: %w", doc.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, doc.ID); err != nil {
		return 0, fmt.Errorf("clearing stale chunks for %s: %w", doc.ID, err)
	}

	for _, c := range chunks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (id, document_id, chunk_index, section_header, token_count, text, embedding)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, doc.ID, c.Index, c.SectionHeader, c.TokenCount, c.Text, encodeVector(c.Embedding),
		); err != nil {
			return 0, fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing document %s: %w", doc.ID, err)
	}
	return len(chunks), nil
}

// HasDocument reports whether a document with the given source URL is
// already in the corpus.
func (s *Store) HasDocument(ctx context.Context, sourceURL string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM documents WHERE source_url = ?`, sourceURL,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking document %s: %w", sourceURL, err)
	}
	return n > 0, nil
}

// Count returns the number of chunks in the corpus.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// GetDocument returns the full document with the given id, or ErrNotFound.
func (s *Store) GetDocument(ctx context.Context, id string) (types.Document, error) {
	var (
		doc        types.Document
		docType    string
		ingestedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, date, type, source_url, text, ingested_at FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Date, &docType, &doc.SourceURL, &doc.Text, &ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return types.Document{}, fmt.Errorf("loading document %s: %w", id, err)
	}
	doc.Type = types.DocumentType(docType)
	if t, err := time.Parse(time.RFC3339, ingestedAt); err == nil {
		doc.IngestedAt = t
	}
	return doc, nil
}

// encodeVector packs a float32 slice as little-endian bytes.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a little-endian byte blob into a float32 slice.
func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
