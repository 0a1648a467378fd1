package store

import (
	"fmt"

	"github.com/pocketbase/dbx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		email        TEXT NOT NULL UNIQUE,
		phone_number TEXT NOT NULL UNIQUE,
		upi_id       TEXT NOT NULL DEFAULT '',
		role         TEXT NOT NULL DEFAULT 'user',
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id             TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		sold_by        TEXT NOT NULL,
		bought_by      TEXT,
		event_name     TEXT,
		venue          TEXT NOT NULL,
		city           TEXT NOT NULL,
		show_time      TEXT,
		original_price TEXT NOT NULL DEFAULT '0',
		selling_price  TEXT NOT NULL DEFAULT '0',
		contact_info   TEXT NOT NULL DEFAULT '',
		ticket_url     TEXT NOT NULL DEFAULT '',
		poster_url     TEXT,
		seat_numbers   TEXT NOT NULL DEFAULT '[]',
		count          INTEGER NOT NULL DEFAULT 0,
		is_sold        INTEGER NOT NULL DEFAULT 0,
		deleted        INTEGER NOT NULL DEFAULT 0,
		order_id       TEXT,
		payment_id     TEXT,
		sold_at        TEXT,
		created_at     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_available
		ON tickets (is_sold, deleted)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_event_city
		ON tickets (event_name, city)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id   TEXT NOT NULL,
		reported_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		name       TEXT PRIMARY KEY,
		poster_url TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS cinemas (
		name    TEXT NOT NULL,
		city    TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (name, city)
	)`,
}

func applySchema(db *dbx.DB) error {
	for _, stmt := range schema {
		if _, err := db.NewQuery(stmt).Execute(); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
