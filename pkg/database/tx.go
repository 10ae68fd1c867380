package database

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

type txState struct {
	db          *gorm.DB
	afterCommit []func()
}

// Transactor runs a unit of work inside a single database transaction.
// Repositories called with the context handed to fn join that transaction
// through Conn.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested units of work join the outer transaction.
	if fromContext(ctx) != nil {
		return fn(ctx)
	}

	state := &txState{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state.db = tx
		return fn(context.WithValue(ctx, txKey{}, state))
	})
	if err != nil {
		return TranslateError(err)
	}

	for _, hook := range state.afterCommit {
		hook()
	}
	return nil
}

// Conn returns the transaction bound to ctx, or db when ctx carries none.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if state := fromContext(ctx); state != nil {
		return state.db.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// AfterCommit defers fn until the transaction bound to ctx commits. Hooks of
// a rolled back transaction never run. Without a transaction fn runs now.
func AfterCommit(ctx context.Context, fn func()) {
	if state := fromContext(ctx); state != nil {
		state.afterCommit = append(state.afterCommit, fn)
		return
	}
	fn()
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	return fromContext(ctx) != nil
}

func fromContext(ctx context.Context) *txState {
	state, _ := ctx.Value(txKey{}).(*txState)
	return state
}

// Detach returns a context that no longer carries the transaction of ctx,
// for work scheduled through AfterCommit.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, (*txState)(nil))
}
