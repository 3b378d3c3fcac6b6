package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/fuzzship/genome"
)

// SQLiteStore keeps records in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sqlx.DB
}

// recordRow is the genomes table layout. Genes are a JSON array.
type recordRow struct {
	ID            string  `db:"id"`
	RunID         string  `db:"run_id"`
	SchemaVersion int     `db:"schema_version"`
	Score         float64 `db:"score"`
	Genes         string  `db:"genes"`
	CreatedAt     int64   `db:"created_at"` // Unix nanoseconds
}

const recordColumns = `id, run_id, schema_version, score, genes, created_at`

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sqlx.Open("sqlite", sqliteDSN(s.path))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("open archive: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate archive: %w", err)
	}

	s.db = db
	return nil
}

// sqliteDSN applies the archive's pragmas on every pooled connection.
func sqliteDSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS genomes (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		schema_version INTEGER NOT NULL,
		score REAL NOT NULL,
		genes TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_genomes_run ON genomes(run_id);
	CREATE INDEX IF NOT EXISTS idx_genomes_version_score ON genomes(schema_version, score);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *SQLiteStore) getDB() (*sqlx.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func (s *SQLiteStore) SaveGenome(ctx context.Context, rec Record) error {
	if err := rec.validate(); err != nil {
		return err
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	genes, err := json.Marshal([]float64(rec.Genes))
	if err != nil {
		return fmt.Errorf("encode genes: %w", err)
	}
	row := recordRow{
		ID:            rec.ID,
		RunID:         rec.RunID,
		SchemaVersion: rec.SchemaVersion,
		Score:         rec.Score,
		Genes:         string(genes),
		CreatedAt:     rec.CreatedAt.UnixNano(),
	}
	_, err = db.NamedExecContext(ctx, `
		INSERT INTO genomes (`+recordColumns+`)
		VALUES (:id, :run_id, :schema_version, :score, :genes, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			schema_version = excluded.schema_version,
			score = excluded.score,
			genes = excluded.genes,
			created_at = excluded.created_at
	`, row)
	if err != nil {
		return fmt.Errorf("save genome %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetGenome(ctx context.Context, id string) (Record, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Record{}, false, err
	}

	var row recordRow
	err = db.GetContext(ctx, &row, `SELECT `+recordColumns+` FROM genomes WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	rec, err := row.record()
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *SQLiteStore) Best(ctx context.Context, schemaVersion int) (Record, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Record{}, false, err
	}

	var row recordRow
	err = db.GetContext(ctx, &row, `
		SELECT `+recordColumns+` FROM genomes
		WHERE schema_version = ?
		ORDER BY score DESC, created_at ASC
		LIMIT 1
	`, schemaVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	rec, err := row.record()
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (s *SQLiteStore) ListRun(ctx context.Context, runID string) ([]Record, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var rows []recordRow
	err = db.SelectContext(ctx, &rows, `
		SELECT `+recordColumns+` FROM genomes
		WHERE run_id = ?
		ORDER BY score DESC, created_at ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (row recordRow) record() (Record, error) {
	var genes []float64
	if err := json.Unmarshal([]byte(row.Genes), &genes); err != nil {
		return Record{}, fmt.Errorf("decode genes of %s: %w", row.ID, err)
	}
	return Record{
		ID:            row.ID,
		RunID:         row.RunID,
		SchemaVersion: row.SchemaVersion,
		Score:         row.Score,
		Genes:         genome.Genome(genes),
		CreatedAt:     time.Unix(0, row.CreatedAt).UTC(),
	}, nil
}
