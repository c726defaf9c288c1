package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vova4o/passkeeper/internal/models"
	"github.com/vova4o/passkeeper/package/logger"

	// Драйверы баз данных, выбираются настройкой driver
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names
const (
	DriverSQLite3  = "sqlite3"  // mattn/go-sqlite3, cgo
	DriverSQLite   = "sqlite"   // modernc.org/sqlite, pure go
	DriverPostgres = "postgres" // lib/pq
	DriverPgx      = "pgx"      // jackc/pgx stdlib
)

const defaultSQLitePath = "passes.db"

const passColumns = "id, title, code, is_code39, is_on_watch, is_on_widget, is_on_siri, created_at, updated_at"

// Storage keeps passes in a SQL database.
// Every mutation runs under the write lock and inside one transaction, so
// readers never see half of a flag hand-over.
type Storage struct {
	db       *sql.DB
	mu       sync.RWMutex
	postgres bool
	logger   *logger.Logger
	now      func() time.Time
	newID    func() string
}

// NewStorage opens the database with the given driver and creates the schema
func NewStorage(ctx context.Context, driver, dsn string, log *logger.Logger) (*Storage, error) {
	if driver == "" {
		driver = DriverSQLite3
	}

	isPostgres := false
	switch driver {
	case DriverSQLite3, DriverSQLite:
		if dsn == "" {
			dsn = defaultSQLitePath
		}
	case DriverPostgres, DriverPgx:
		isPostgres = true
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверка соединения
	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to connect to the database: " + err.Error())
		db.Close()
		return nil, err
	}

	s := newStorage(db, isPostgres, log)

	if !isPostgres {
		// SQLite allows a single writer; one connection also keeps :memory: databases shared
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := s.applyPragmas(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := s.createTables(ctx); err != nil {
		log.Error("Failed to create tables: " + err.Error())
		db.Close()
		return nil, err
	}

	log.Info("Connected to the database (" + driver + ") and tables created successfully")
	return s, nil
}

func newStorage(db *sql.DB, postgres bool, log *logger.Logger) *Storage {
	return &Storage{
		db:       db,
		postgres: postgres,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

func (s *Storage) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *Storage) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS passes (
            id VARCHAR(36) PRIMARY KEY,
            title TEXT NOT NULL,
            code TEXT NOT NULL,
            is_code39 BOOLEAN NOT NULL DEFAULT FALSE,
            is_on_watch BOOLEAN NOT NULL DEFAULT FALSE,
            is_on_widget BOOLEAN NOT NULL DEFAULT FALSE,
            is_on_siri BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_passes_created_at ON passes(created_at)`,
	}

	// Не больше одного пропуска на каждое назначение
	for _, d := range models.Destinations() {
		column, _ := flagColumn(d)
		queries = append(queries, fmt.Sprintf(
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_passes_%s ON passes(%s) WHERE %s`, column, column, column))
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	return nil
}

// flagColumn maps a destination to its column; names never come from user input
func flagColumn(d models.Destination) (string, error) {
	switch d {
	case models.Watch:
		return "is_on_watch", nil
	case models.Widget:
		return "is_on_widget", nil
	case models.Siri:
		return "is_on_siri", nil
	default:
		return "", fmt.Errorf("%w: unknown destination %d", models.ErrValidationFailed, d)
	}
}

// q rewrites ? placeholders into $n for postgres
func (s *Storage) q(query string) string {
	if !s.postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Storage) failure(action string, err error) error {
	s.logger.Error("Failed to " + action + ": " + err.Error())
	return fmt.Errorf("%w: %s: %w", models.ErrStoreFailure, action, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPass(row scanner) (models.Pass, error) {
	var p models.Pass
	err := row.Scan(&p.ID, &p.Title, &p.Code, &p.IsCode39, &p.IsOnWatch, &p.IsOnWidget, &p.IsOnSiri, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePass сохраняет новый пропуск, назначения по умолчанию выключены
func (s *Storage) CreatePass(ctx context.Context, pass models.Pass) (models.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	created := models.Pass{
		ID:        s.newID(),
		Title:     pass.Title,
		Code:      pass.Code,
		IsCode39:  pass.IsCode39,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `INSERT INTO passes (` + passColumns + `) VALUES (?, ?, ?, ?, FALSE, FALSE, FALSE, ?, ?)`
	_, err := s.db.ExecContext(ctx, s.q(query), created.ID, created.Title, created.Code, created.IsCode39, now, now)
	if err != nil {
		return models.Pass{}, s.failure("create pass", err)
	}

	s.logger.Info("Pass created successfully: " + created.ID)
	return created, nil
}

// UpdatePass loads the pass, lets mutate change it and writes title, code and
// format back in the same transaction. Destination flags are never written here.
// An error returned by mutate aborts the transaction and is returned unchanged.
func (s *Storage) UpdatePass(ctx context.Context, id string, mutate func(*models.Pass) error) (updated models.Pass, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Pass{}, s.failure("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	current, err := scanPass(tx.QueryRowContext(ctx, s.q(`SELECT `+passColumns+` FROM passes WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pass{}, models.ErrNotFound
	}
	if err != nil {
		return models.Pass{}, s.failure("read pass", err)
	}

	updated = current
	if err = mutate(&updated); err != nil {
		return models.Pass{}, err
	}
	updated.ID = current.ID
	updated.IsOnWatch, updated.IsOnWidget, updated.IsOnSiri = current.IsOnWatch, current.IsOnWidget, current.IsOnSiri
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = s.now()

	_, err = tx.ExecContext(ctx, s.q(`UPDATE passes SET title = ?, code = ?, is_code39 = ?, updated_at = ? WHERE id = ?`),
		updated.Title, updated.Code, updated.IsCode39, updated.UpdatedAt, id)
	if err != nil {
		return models.Pass{}, s.failure("update pass", err)
	}

	if err = tx.Commit(); err != nil {
		return models.Pass{}, s.failure("commit pass update", err)
	}

	s.logger.Info("Pass updated successfully: " + id)
	return updated, nil
}

// DeletePass удаляет пропуск
func (s *Storage) DeletePass(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM passes WHERE id = ?`), id)
	if err != nil {
		return s.failure("delete pass", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return s.failure("delete pass", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}

	s.logger.Info("Pass deleted successfully: " + id)
	return nil
}

// SetExclusiveFlag sets the destination flag of one pass. Setting it to true
// clears it on every other pass in the same transaction; setting it to false
// touches only the target. Setting a flag to the value it already has is a
// successful no-op.
func (s *Storage) SetExclusiveFlag(ctx context.Context, id string, dest models.Destination, value bool) (err error) {
	column, err := flagColumn(dest)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.failure("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current bool
	err = tx.QueryRowContext(ctx, s.q(`SELECT `+column+` FROM passes WHERE id = ?`), id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return s.failure("read "+column, err)
	}

	if current == value {
		if err = tx.Commit(); err != nil {
			return s.failure("commit "+column, err)
		}
		return nil
	}

	now := s.now()
	if value {
		_, err = tx.ExecContext(ctx, s.q(`UPDATE passes SET `+column+` = FALSE, updated_at = ? WHERE `+column+` AND id <> ?`), now, id)
		if err != nil {
			return s.failure("clear "+column, err)
		}
	}

	_, err = tx.ExecContext(ctx, s.q(`UPDATE passes SET `+column+` = ?, updated_at = ? WHERE id = ?`), value, now, id)
	if err != nil {
		return s.failure("set "+column, err)
	}

	if err = tx.Commit(); err != nil {
		return s.failure("commit "+column, err)
	}

	s.logger.Infof("Pass %s: %s set to %t", id, dest, value)
	return nil
}

// GetPass возвращает пропуск по ID
func (s *Storage) GetPass(ctx context.Context, id string) (models.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pass, err := scanPass(s.db.QueryRowContext(ctx, s.q(`SELECT `+passColumns+` FROM passes WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pass{}, models.ErrNotFound
	}
	if err != nil {
		return models.Pass{}, s.failure("get pass", err)
	}
	return pass, nil
}

// ListPasses возвращает снимок всех пропусков
func (s *Storage) ListPasses(ctx context.Context) ([]models.Pass, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+passColumns+` FROM passes ORDER BY created_at, id`)
	if err != nil {
		return nil, s.failure("list passes", err)
	}
	defer rows.Close()

	passes := []models.Pass{}
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, s.failure("scan pass", err)
		}
		passes = append(passes, pass)
	}

	if err := rows.Err(); err != nil {
		return nil, s.failure("iterate passes", err)
	}

	s.logger.Debugf("Listed %d passes", len(passes))
	return passes, nil
}

// ActivePass returns the pass currently holding the destination
func (s *Storage) ActivePass(ctx context.Context, dest models.Destination) (models.Pass, error) {
	column, err := flagColumn(dest)
	if err != nil {
		return models.Pass{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pass, err := scanPass(s.db.QueryRowContext(ctx, `SELECT `+passColumns+` FROM passes WHERE `+column))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Pass{}, models.ErrNotFound
	}
	if err != nil {
		return models.Pass{}, s.failure("get active pass", err)
	}
	return pass, nil
}

// Close закрывает соединение с базой данных
func (s *Storage) Close() error {
	return s.db.Close()
}
