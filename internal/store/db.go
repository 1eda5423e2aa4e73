package store

import (
	"database/sql"
	"log/slog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

type Store struct {
	DB *sql.DB
}

func NewStore(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// SQLite allows one writer; a second connection trying to write would
	// hit "database is locked" instead of queueing.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}

	return &Store{DB: db}, nil
}

func (s *Store) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		is_admin INTEGER NOT NULL DEFAULT 0,
		balance REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL,
		original_price REAL NOT NULL DEFAULT 0,
		images TEXT NOT NULL DEFAULT '[]',
		quantity INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT '',
		available INTEGER NOT NULL DEFAULT 1,
		preorder INTEGER NOT NULL DEFAULT 0,
		rare INTEGER NOT NULL DEFAULT 0,
		easy_care INTEGER NOT NULL DEFAULT 0,
		labels TEXT NOT NULL DEFAULT '[]',
		delivery_cost REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		items TEXT NOT NULL,
		total_amount REAL NOT NULL,
		delivery_amount REAL NOT NULL DEFAULT 0,
		full_name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		delivery_type TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL DEFAULT '',
		payment_status TEXT NOT NULL DEFAULT 'pending',
		status TEXT NOT NULL DEFAULT 'pending',
		promo_code TEXT NOT NULL DEFAULT '',
		discount REAL NOT NULL DEFAULT 0,
		payment_proof_url TEXT NOT NULL DEFAULT '',
		tracking_number TEXT NOT NULL DEFAULT '',
		delivery_date TEXT NOT NULL DEFAULT '',
		admin_comment TEXT NOT NULL DEFAULT '',
		quantities_reduced INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS promo_codes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		discount_type TEXT NOT NULL,
		discount_value REAL NOT NULL,
		min_order_amount REAL NOT NULL DEFAULT 0,
		start_date DATETIME NOT NULL,
		end_date DATETIME NOT NULL,
		max_uses INTEGER NOT NULL DEFAULT 0,
		current_uses INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS promo_code_uses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		promo_code_id INTEGER NOT NULL REFERENCES promo_codes(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		order_id INTEGER NOT NULL,
		discount REAL NOT NULL DEFAULT 0,
		used_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(promo_code_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		product_id INTEGER NOT NULL REFERENCES products(id),
		rating INTEGER NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		images TEXT NOT NULL DEFAULT '[]',
		approved INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS payment_details (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		card_number TEXT NOT NULL DEFAULT '',
		card_holder TEXT NOT NULL DEFAULT '',
		bank_name TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		instructions TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users(id),
		order_id INTEGER NOT NULL DEFAULT 0,
		message TEXT NOT NULL,
		read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.DB.Exec(query)
	if err != nil {
		slog.Error("Error creating schema", "error", err)
		return err
	}
	return nil
}
