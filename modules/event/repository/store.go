package repository

import (
	"context"

	"family-calendar-api/core/database"
)

// Store bundles the event and exception repositories behind one transaction
// boundary. Base events and exceptions may only be mutated through the
// scope-mutation coordinator, and every mutation runs inside a single
// WithinTransaction call so partial application cannot be observed.
type Store interface {
	Events() EventRepositoryInterface
	Exceptions() ExceptionRepositoryInterface
	WithinTransaction(ctx context.Context, fn func(s Store) error) error
}

type sqlStore struct {
	db         database.IDatabase
	events     EventRepositoryInterface
	exceptions ExceptionRepositoryInterface
}

func NewStore(db database.IDatabase) Store {
	return &sqlStore{
		db:         db,
		events:     NewEventRepository(db),
		exceptions: NewExceptionRepository(db),
	}
}

func (s *sqlStore) Events() EventRepositoryInterface {
	return s.events
}

func (s *sqlStore) Exceptions() ExceptionRepositoryInterface {
	return s.exceptions
}

func (s *sqlStore) WithinTransaction(ctx context.Context, fn func(s Store) error) error {
	return s.db.WithinTransaction(ctx, func(q database.Querier) error {
		return fn(&txStore{
			events:     NewEventRepository(q),
			exceptions: NewExceptionRepository(q),
		})
	})
}

// txStore is a Store bound to an open transaction.
type txStore struct {
	events     EventRepositoryInterface
	exceptions ExceptionRepositoryInterface
}

func (s *txStore) Events() EventRepositoryInterface {
	return s.events
}

func (s *txStore) Exceptions() ExceptionRepositoryInterface {
	return s.exceptions
}

// WithinTransaction on an already-open transaction just runs fn in it.
func (s *txStore) WithinTransaction(ctx context.Context, fn func(s Store) error) error {
	return fn(s)
}
