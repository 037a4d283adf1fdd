package database

import (
	"context"
	"errors"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql
	"github.com/jmoiron/sqlx"
)

// DB is the process-wide database handle. StartPostgreSQL assigns it once
// before the server accepts traffic; tests assign a mocked handle directly.
var DB *sqlx.DB

// StartPostgreSQL opens the connection pool and creates the tables if they do
// not exist yet.
func StartPostgreSQL() error {
	uri := os.Getenv("POSTGRESQL_URI")
	if uri == "" {
		return errors.New("you must set your 'POSTGRESQL_URI' environmental variable")
	}

	db, err := sqlx.Open("pgx", uri)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	err = db.PingContext(context.Background())
	if err != nil {
		return fmt.Errorf("cannot connect to PostgreSQL: %w", err)
	}

	fmt.Println("Connected to PostgreSQL successfully")

	DB = db

	err = createTables()
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// createTables sets up the three collections. Reference columns (user_id,
// list_id) deliberately carry no foreign-key constraints: the store layer owns
// referential integrity and cascades deletes itself.
func createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(50) PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS todo_lists (
		id VARCHAR(50) PRIMARY KEY,
		title VARCHAR(100) NOT NULL,
		category VARCHAR(100) NOT NULL DEFAULT 'general',
		user_id VARCHAR(50) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_todo_lists_user_id ON todo_lists (user_id);

	CREATE TABLE IF NOT EXISTS todos (
		id VARCHAR(50) PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date DATE,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		list_id VARCHAR(50) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_todos_list_id ON todos (list_id)
	`
	_, err := DB.Exec(query)
	if err != nil {
		return err
	}

	fmt.Println("Tables created or already exist")
	return nil
}

// ClosePostgreSQL closes the connection pool.
func ClosePostgreSQL() {
	if DB != nil {
		err := DB.Close()
		if err != nil {
			panic(err)
		}
		fmt.Println("Database connection closed")
	}
}
