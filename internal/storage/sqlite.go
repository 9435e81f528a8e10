//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"gene/internal/model"

	_ "modernc.org/sqlite"
)

const defaultStoreKind = "sqlite"

type SQLiteStore struct {
	path        string
	compression Compression

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string, compression Compression) *SQLiteStore {
	return &SQLiteStore{path: path, compression: compression}
}

func newSQLiteStore(path string, compression Compression) (Store, error) {
	return NewSQLiteStore(path, compression), nil
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

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL`); err != nil {
		_ = db.Close()
		return fmt.Errorf("pragma: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveGenome(ctx context.Context, record model.GenomeRecord) error {
	if record.ID == "" {
		return errors.New("genome id is required")
	}
	db, err := s.getDB()
	if err != nil {
		return err
	}

	record = Stamp(record)
	payload, err := EncodeGenomeRecord(record)
	if err != nil {
		return err
	}
	vector, err := EncodeVector(record.Genome, s.compression)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO genomes (id, run_id, generation, fitness, schema_version, codec_version, payload, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			run_id = excluded.run_id,
			generation = excluded.generation,
			fitness = excluded.fitness,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload,
			vector = excluded.vector
	`, record.ID, record.RunID, record.Generation, record.Fitness, record.SchemaVersion, record.CodecVersion, payload, vector)
	return err
}

func (s *SQLiteStore) GetGenome(ctx context.Context, id string) (model.GenomeRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.GenomeRecord{}, false, err
	}

	var payload, vector []byte
	err = db.QueryRowContext(ctx, `SELECT payload, vector FROM genomes WHERE id = ?`, id).Scan(&payload, &vector)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GenomeRecord{}, false, nil
		}
		return model.GenomeRecord{}, false, err
	}

	record, err := decodeRow(payload, vector)
	if err != nil {
		return model.GenomeRecord{}, false, fmt.Errorf("decode genome %s: %w", id, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) ListGenomes(ctx context.Context, runID string) ([]model.GenomeRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, payload, vector FROM genomes
		WHERE run_id = ?
		ORDER BY generation ASC, fitness DESC, id ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.GenomeRecord, 0)
	for rows.Next() {
		var (
			id              string
			payload, vector []byte
		)
		if err := rows.Scan(&id, &payload, &vector); err != nil {
			return nil, err
		}
		record, err := decodeRow(payload, vector)
		if err != nil {
			return nil, fmt.Errorf("decode genome %s: %w", id, err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveFitnessHistory(ctx context.Context, runID string, history []model.GenerationStats) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeFitnessHistory(history)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO fitness_history (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			payload = excluded.payload
	`, runID, payload)
	return err
}

func (s *SQLiteStore) GetFitnessHistory(ctx context.Context, runID string) ([]model.GenerationStats, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM fitness_history WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	history, err := DecodeFitnessHistory(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode fitness history %s: %w", runID, err)
	}
	return history, true, nil
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

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func decodeRow(payload, vector []byte) (model.GenomeRecord, error) {
	record, err := DecodeGenomeRecord(payload)
	if err != nil {
		return model.GenomeRecord{}, err
	}
	genome, err := DecodeVector(vector)
	if err != nil {
		return model.GenomeRecord{}, err
	}
	record.Genome = genome
	return record, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS genomes (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			generation INTEGER NOT NULL,
			fitness REAL NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			vector BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS genomes_run_idx ON genomes (run_id, generation);
		CREATE TABLE IF NOT EXISTS fitness_history (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}
