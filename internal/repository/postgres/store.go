package postgres

import "database/sql"

// Store serves both repositories from one connection pool
type Store struct {
	*UserRepo
	*ReminderRepo

	db *sql.DB
}

// NewStore wraps an open database
func NewStore(db *sql.DB) *Store {
	return &Store{
		UserRepo:     NewUserRepo(db),
		ReminderRepo: NewReminderRepo(db),
		db:           db,
	}
}

// Close closes the underlying pool
func (s *Store) Close() error {
	return s.db.Close()
}
