package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/vova4o/passkeeper/package/logger"
)

// ErrNoSession is returned when the device has not paired with the server
var ErrNoSession = errors.New("not paired with server")

// Session is the pairing state of the device against one server
type Session struct {
	Server    string
	Token     string
	ExpiresAt time.Time
	PairedAt  time.Time
}

// Expired reports whether the token is past its expiry at now
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Storage struct for storage
type Storage struct {
	db     *sql.DB
	logger *logger.Logger
	now    func() time.Time
}

// NewStorage создает новое хранилище и инициализирует базу данных SQLite
func NewStorage(dbPath string, logger *logger.Logger) (*Storage, error) {
	if dbPath == "" {
		dbPath = "passkeeper.db"
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	storage := &Storage{
		db:     db,
		logger: logger,
		now:    time.Now,
	}

	// Создание таблицы для хранения сессий
	createTableQuery := `
	CREATE TABLE IF NOT EXISTS sessions (
		server TEXT PRIMARY KEY,
		token TEXT NOT NULL,
		expires_at INTEGER NOT NULL DEFAULT 0,
		paired_at INTEGER NOT NULL
	);
    `
	_, err = storage.db.Exec(createTableQuery)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Debug("SQLite database initialized successfully")
	return storage, nil
}

// SaveSession добавляет или обновляет токен для сервера
func (s *Storage) SaveSession(ctx context.Context, server, token string, expiresAt time.Time) error {
	var expires int64
	if !expiresAt.IsZero() {
		expires = expiresAt.Unix()
	}

	query := `INSERT INTO sessions (server, token, expires_at, paired_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(server) DO UPDATE SET token = excluded.token, expires_at = excluded.expires_at, paired_at = excluded.paired_at`
	_, err := s.db.ExecContext(ctx, query, server, token, expires, s.now().Unix())
	if err != nil {
		s.logger.Error("Failed to save session: " + err.Error())
		return err
	}

	s.logger.Debug("Session for " + server + " saved successfully")
	return nil
}

// GetSession читает сессию сервера. ErrNoSession when the device never
// paired or the token has expired.
func (s *Storage) GetSession(ctx context.Context, server string) (Session, error) {
	session := Session{Server: server}
	var expires, paired int64

	err := s.db.QueryRowContext(ctx, "SELECT token, expires_at, paired_at FROM sessions WHERE server = ?", server).
		Scan(&session.Token, &expires, &paired)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		s.logger.Error("Failed to read session: " + err.Error())
		return Session{}, err
	}

	if expires > 0 {
		session.ExpiresAt = time.Unix(expires, 0)
	}
	session.PairedAt = time.Unix(paired, 0)

	if session.Expired(s.now()) {
		s.logger.Info("Session for " + server + " has expired")
		return Session{}, fmt.Errorf("%w: token expired at %s", ErrNoSession, session.ExpiresAt.Format(time.RFC3339))
	}
	return session, nil
}

// DeleteSession forgets the pairing with server
func (s *Storage) DeleteSession(ctx context.Context, server string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE server = ?", server)
	if err != nil {
		s.logger.Error("Failed to delete session: " + err.Error())
		return err
	}
	return nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}
