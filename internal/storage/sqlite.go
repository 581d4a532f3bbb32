package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for entity records, knowledge
// documents, and the extraction job queue.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "trcdesk.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for tests and maintenance tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- Entity records ---

// InsertEntityRecords stores a batch of records into the named collection
// ("Merchants" or "Publishers"). Fields are stored as a JSON document.
func (s *Store) InsertEntityRecords(collection string, records []EntityRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO entity_records (collection, fields, created_at) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, r := range records {
		fields, err := json.Marshal(r)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshalling record %d: %w", i, err)
		}
		if _, err := stmt.Exec(collection, string(fields), now); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListEntityRecords returns all records of the named collection.
func (s *Store) ListEntityRecords(ctx context.Context, collection string) ([]EntityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fields FROM entity_records WHERE collection = ? ORDER BY id ASC`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var records []EntityRecord
	for rows.Next() {
		var fields string
		if err := rows.Scan(&fields); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		var r EntityRecord
		if err := json.Unmarshal([]byte(fields), &r); err != nil {
			return nil, fmt.Errorf("unmarshalling record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountEntityRecords returns the number of records in the named collection.
func (s *Store) CountEntityRecords(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entity_records WHERE collection = ?`, collection).Scan(&count)
	return count, err
}

// DeleteEntityRecords removes every record of the named collection.
// Used by re-imports to replace a table wholesale.
func (s *Store) DeleteEntityRecords(collection string) error {
	_, err := s.db.Exec(`DELETE FROM entity_records WHERE collection = ?`, collection)
	return err
}

// --- Knowledge documents ---

// SaveKnowledgeDoc stores one extracted document.
func (s *Store) SaveKnowledgeDoc(doc KnowledgeDoc) error {
	_, err := s.db.Exec(`
		INSERT INTO knowledge_docs (id, file_name, file_url, file_type, extracted_text, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.FileName, doc.FileURL, doc.FileType, doc.ExtractedText,
		doc.UploadedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetKnowledgeDoc returns the document with the given ID.
func (s *Store) GetKnowledgeDoc(id string) (KnowledgeDoc, error) {
	var d KnowledgeDoc
	var uploadedAt string
	err := s.db.QueryRow(`
		SELECT id, file_name, file_url, file_type, extracted_text, uploaded_at
		FROM knowledge_docs WHERE id = ?`, id,
	).Scan(&d.ID, &d.FileName, &d.FileURL, &d.FileType, &d.ExtractedText, &uploadedAt)
	if err == sql.ErrNoRows {
		return KnowledgeDoc{}, ErrNotFound
	}
	if err != nil {
		return KnowledgeDoc{}, err
	}
	t, err := time.Parse(time.RFC3339, uploadedAt)
	if err != nil {
		return KnowledgeDoc{}, fmt.Errorf("parsing uploaded_at: %w", err)
	}
	d.UploadedAt = t
	return d, nil
}

// ListKnowledgeDocs returns documents most recently uploaded first.
func (s *Store) ListKnowledgeDocs(limit int) ([]KnowledgeDoc, error) {
	rows, err := s.db.Query(`
		SELECT id, file_name, file_url, file_type, extracted_text, uploaded_at
		FROM knowledge_docs ORDER BY uploaded_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeDocs(rows)
}

// DeleteKnowledgeDocByURL removes the document indexed for the given
// storage path. Missing rows are not an error: a file can be deleted
// before its extraction job ran.
func (s *Store) DeleteKnowledgeDocByURL(fileURL string) error {
	_, err := s.db.Exec(`DELETE FROM knowledge_docs WHERE file_url = ?`, fileURL)
	return err
}

// HasKnowledgeDocForURL reports whether a document is already indexed for
// the given storage path.
func (s *Store) HasKnowledgeDocForURL(fileURL string) (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM knowledge_docs WHERE file_url = ?`, fileURL).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanKnowledgeDocs(rows *sql.Rows) ([]KnowledgeDoc, error) {
	var docs []KnowledgeDoc
	for rows.Next() {
		var d KnowledgeDoc
		var uploadedAt string
		if err := rows.Scan(&d.ID, &d.FileName, &d.FileURL, &d.FileType, &d.ExtractedText, &uploadedAt); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, uploadedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing uploaded_at: %w", err)
		}
		d.UploadedAt = t
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// --- Jobs ---

// EnqueueJob adds a background job to the queue.
func (s *Store) EnqueueJob(job Job) error {
	now := time.Now().UTC().Format(time.RFC3339)
	runAfter := now
	if !job.RunAfter.IsZero() {
		runAfter = job.RunAfter.UTC().Format(time.RFC3339)
	}
	maxAttempts := job.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	_, err := s.db.Exec(`
		INSERT INTO jobs (id, type, payload_json, status, attempts, max_attempts, run_after, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', 0, ?, ?, ?, ?)`,
		job.ID, job.Type, job.PayloadJSON, maxAttempts, runAfter, now, now,
	)
	return err
}

// ClaimNextJob atomically claims the oldest runnable pending job of one of
// the given types, or returns nil when none is due.
func (s *Store) ClaimNextJob(types []string) (*Job, error) {
	if len(types) == 0 {
		return nil, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	placeholders := strings.Repeat(",?", len(types)-1)
	query := `SELECT id, type, payload_json, status, attempts, max_attempts, run_after, created_at, updated_at, last_error
		FROM jobs
		WHERE status = 'pending' AND run_after <= ? AND type IN (?` + placeholders + `)
		ORDER BY run_after ASC, created_at ASC
		LIMIT 1`

	args := make([]interface{}, 0, len(types)+1)
	args = append(args, now)
	for _, t := range types {
		args = append(args, t)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning claim transaction: %w", err)
	}

	var j Job
	var runAfter, createdAt, updatedAt string
	var lastError sql.NullString
	err = tx.QueryRow(query, args...).Scan(
		&j.ID, &j.Type, &j.PayloadJSON, &j.Status, &j.Attempts, &j.MaxAttempts,
		&runAfter, &createdAt, &updatedAt, &lastError,
	)
	if err == sql.ErrNoRows {
		tx.Rollback()
		return nil, nil
	}
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("selecting next job: %w", err)
	}

	res, err := tx.Exec(`UPDATE jobs SET status = 'running', updated_at = ? WHERE id = ? AND status = 'pending'`, now, j.ID)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("updating job status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("checking updated job rows: %w", err)
	}
	if n != 1 {
		tx.Rollback()
		return nil, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}

	j.Status = "running"
	j.LastError = lastError.String
	if j.RunAfter, err = time.Parse(time.RFC3339, runAfter); err != nil {
		return nil, fmt.Errorf("parsing run_after for job %s: %w", j.ID, err)
	}
	if j.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at for job %s: %w", j.ID, err)
	}
	if j.UpdatedAt, err = time.Parse(time.RFC3339, now); err != nil {
		return nil, fmt.Errorf("parsing updated_at for job %s: %w", j.ID, err)
	}
	return &j, nil
}

// CompleteJob marks a job as completed.
func (s *Store) CompleteJob(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE jobs SET status = 'completed', updated_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FailJob records a failed attempt, rescheduling with exponential backoff
// until max_attempts is reached.
func (s *Store) FailJob(id string, errMsg string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning fail transaction: %w", err)
	}
	defer tx.Rollback()

	var attempts, maxAttempts int
	err = tx.QueryRow(`SELECT attempts, max_attempts FROM jobs WHERE id = ?`, id).Scan(&attempts, &maxAttempts)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	attempts++

	if attempts >= maxAttempts {
		_, err = tx.Exec(`UPDATE jobs SET status = 'failed', attempts = ?, last_error = ?, updated_at = ? WHERE id = ?`,
			attempts, errMsg, now.Format(time.RFC3339), id)
	} else {
		backoff := time.Duration(math.Pow(2, float64(attempts))) * time.Second
		runAfter := now.Add(backoff)
		_, err = tx.Exec(`UPDATE jobs SET status = 'pending', attempts = ?, last_error = ?, run_after = ?, updated_at = ? WHERE id = ?`,
			attempts, errMsg, runAfter.Format(time.RFC3339), now.Format(time.RFC3339), id)
	}

	if err != nil {
		return err
	}

	return tx.Commit()
}
