package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tahcohcat/ramadan-tracker/internal/logger"
)

type DB struct {
	*sqlx.DB
}

// NewDB opens the SQLite database and creates the schema if needed
func NewDB(databasePath string) (*DB, error) {
	if databasePath == "" {
		databasePath = "ramadan.db" // Default SQLite file
	}

	db, err := sqlx.Connect("sqlite3", databasePath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite serialises writers; one connection also keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	dbWrapper := &DB{DB: db}

	if err := dbWrapper.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.New().Info(fmt.Sprintf("database ready at %s", databasePath))
	return dbWrapper, nil
}

// createTables creates the profile, leaderboard and completion tables
func (db *DB) createTables() error {
	// points is nullable on purpose: rows written by older clients may lack it
	profilesTable := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		gender TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		points INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	leaderboardTable := `
	CREATE TABLE IF NOT EXISTS leaderboard (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		male_points INTEGER NOT NULL DEFAULT 0,
		female_points INTEGER NOT NULL DEFAULT 0
	);`

	completionsTable := `
	CREATE TABLE IF NOT EXISTS activity_completions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		activity_id TEXT NOT NULL,
		title TEXT NOT NULL,
		points_awarded INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
	);`

	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_profiles_points ON profiles(points DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_completions_user_id ON activity_completions(user_id, created_at);`,
		`INSERT OR IGNORE INTO leaderboard (id, male_points, female_points) VALUES (1, 0, 0);`,
	}

	for _, query := range []string{profilesTable, leaderboardTable, completionsTable} {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialise schema: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
