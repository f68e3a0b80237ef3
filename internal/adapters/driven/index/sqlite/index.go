// Package sqlite implements the policy index on a single SQLite file.
//
// Embeddings are stored as little-endian float32 blobs next to the
// policy text, with a one-row manifest identifying the embedding model
// the index was built with. Search is exact brute-force cosine distance
// computed in process; the corpus is a handful of policies, so no
// approximate indexing is needed.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/phishguard-labs/phishguard-cli/internal/adapters/driven/index/sqlite/migrations"
	"github.com/phishguard-labs/phishguard-cli/internal/core/domain"
	"github.com/phishguard-labs/phishguard-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.PolicyIndex = (*Index)(nil)

// Index is a SQLite-backed policy index.
type Index struct {
	db *sql.DB
}

// Open loads an existing index. It fails with domain.ErrIndexNotFound
// when no index file exists at path, and with domain.ErrIndexCorrupt
// when the file is unreadable or its schema is missing.
func Open(path string) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (run 'phishguard build-index' first)",
				domain.ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}

	idx, err := open(path)
	if err != nil {
		return nil, err
	}

	// A present file without the expected schema is corrupt, not absent.
	var count int
	if err := idx.db.QueryRow("SELECT COUNT(*) FROM manifest").Scan(&count); err != nil {
		idx.db.Close()
		return nil, fmt.Errorf("%w: %v (rebuild the index)", domain.ErrIndexCorrupt, err)
	}
	if count == 0 {
		idx.db.Close()
		return nil, fmt.Errorf("%w: manifest missing (rebuild the index)", domain.ErrIndexCorrupt)
	}

	return idx, nil
}

// Create opens the index for building, creating the file and parent
// directory as needed and applying migrations.
func Create(path string) (*Index, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	idx, err := open(path)
	if err != nil {
		return nil, err
	}

	if err := idx.migrate(migrations.FS); err != nil {
		idx.db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return idx, nil
}

// open opens the database with WAL mode for better concurrency.
func open(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	return &Index{db: db}, nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Rebuild atomically replaces all stored policies and the manifest.
// Runs in one transaction so concurrent readers see either the old
// corpus or the new one.
func (idx *Index) Rebuild(ctx context.Context, entries []domain.IndexEntry, manifest domain.IndexManifest) error {
	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning rebuild: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit.

	if _, err := tx.ExecContext(ctx, "DELETE FROM policies"); err != nil {
		return fmt.Errorf("clearing policies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM manifest"); err != nil {
		return fmt.Errorf("clearing manifest: %w", err)
	}

	for _, entry := range entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO policies (id, position, content, embedding)
			VALUES (?, ?, ?, ?)
		`, entry.Policy.ID, entry.Policy.Position, entry.Policy.Text,
			float32SliceToBytes(entry.Embedding))
		if err != nil {
			return fmt.Errorf("inserting policy %s: %w", entry.Policy.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO manifest (id, embedding_model, dimensions, policy_count, built_at)
		VALUES (1, ?, ?, ?, ?)
	`, manifest.EmbeddingModel, manifest.Dimensions, manifest.PolicyCount, manifest.BuiltAt)
	if err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rebuild: %w", err)
	}
	return nil
}

// Manifest returns the stored build manifest.
func (idx *Index) Manifest(ctx context.Context) (domain.IndexManifest, error) {
	var m domain.IndexManifest
	err := idx.db.QueryRowContext(ctx, `
		SELECT embedding_model, dimensions, policy_count, built_at
		FROM manifest WHERE id = 1
	`).Scan(&m.EmbeddingModel, &m.Dimensions, &m.PolicyCount, &m.BuiltAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.IndexManifest{}, fmt.Errorf("%w: manifest missing (rebuild the index)",
			domain.ErrIndexCorrupt)
	}
	if err != nil {
		return domain.IndexManifest{}, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	return m, nil
}

// Search returns the k nearest policies by cosine distance, most
// similar first. Ties keep corpus order; k larger than the corpus
// returns everything.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedPolicy, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1", domain.ErrInvalidRequest)
	}

	rows, err := idx.db.QueryContext(ctx, `
		SELECT id, position, content, embedding
		FROM policies ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	defer rows.Close()

	var hits []domain.RetrievedPolicy
	for rows.Next() {
		var (
			policy domain.PolicyDocument
			blob   []byte
		)
		if err := rows.Scan(&policy.ID, &policy.Position, &policy.Text, &blob); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
		}
		embedding := bytesToFloat32Slice(blob)
		if len(embedding) != len(query) {
			return nil, fmt.Errorf("%w: stored vector has %d dimensions, query has %d",
				domain.ErrModelMismatch, len(embedding), len(query))
		}
		hits = append(hits, domain.RetrievedPolicy{
			Policy:   policy,
			Distance: cosineDistance(query, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}

	// Rows arrive in corpus order, so the stable sort preserves
	// insertion order between equal distances.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of indexed policies.
func (idx *Index) Count(ctx context.Context) (int, error) {
	var count int
	if err := idx.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM policies").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexCorrupt, err)
	}
	return count, nil
}

// migrate runs all pending migrations.
func (idx *Index) migrate(fsys fs.FS) error {
	_, err := idx.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := idx.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := idx.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := idx.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// cosineDistance returns 1 - cosine similarity. Zero-magnitude vectors
// have no direction; their distance is defined as 1 (fully dissimilar).
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
