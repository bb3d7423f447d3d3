// Package dbtest provides a scripted in-memory db.Conn for tests.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/tordrt/schemaplan/internal/db"
	"github.com/tordrt/schemaplan/internal/dialect"
)

type script struct {
	substr string
	rows   [][]any
	err    error
}

// Conn answers queries from canned rows and records every statement it runs.
// A query is answered by the first script whose substring it contains; queries
// nothing matches return no rows.
type Conn struct {
	dialect dialect.Dialect

	mu         sync.Mutex
	queries    []script
	execFails  []script
	executed   []string
	begun      int
	committed  int
	rolledBack int
	closed     bool
}

// New returns an empty fake for d.
func New(d dialect.Dialect) *Conn {
	return &Conn{dialect: d}
}

// OnQuery answers queries containing substr with rows.
func (c *Conn) OnQuery(substr string, rows ...[]any) *Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, script{substr: substr, rows: rows})
	return c
}

// FailQuery makes queries containing substr fail with err.
func (c *Conn) FailQuery(substr string, err error) *Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, script{substr: substr, err: err})
	return c
}

// FailExec makes statements containing substr fail with err.
func (c *Conn) FailExec(substr string, err error) *Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execFails = append(c.execFails, script{substr: substr, err: err})
	return c
}

// Executed returns the statements run so far, failed ones included.
func (c *Conn) Executed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.executed...)
}

// Transactions reports how many transactions were begun, committed and rolled back.
func (c *Conn) Transactions() (begun, committed, rolledBack int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.begun, c.committed, c.rolledBack
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) Dialect() dialect.Dialect { return c.dialect }

func (c *Conn) Query(ctx context.Context, query string, _ ...any) (db.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.queries {
		if strings.Contains(query, s.substr) {
			if s.err != nil {
				return nil, s.err
			}
			return &Rows{rows: s.rows, pos: -1}, nil
		}
	}
	return &Rows{pos: -1}, nil
}

func (c *Conn) Exec(ctx context.Context, query string, _ ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.executed = append(c.executed, query)
	for _, s := range c.execFails {
		if strings.Contains(query, s.substr) {
			return s.err
		}
	}
	return nil
}

func (c *Conn) Begin(ctx context.Context) (db.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.begun++
	return &tx{Conn: c}, nil
}

func (c *Conn) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

type tx struct {
	*Conn
	done bool
}

func (t *tx) Commit(context.Context) error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	t.mu.Lock()
	defer t.mu.Unlock()
	t.committed++
	return nil
}

func (t *tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolledBack++
	return nil
}

// Rows iterates canned rows. Scan converts each value to the destination's
// type; a nil value leaves pointer destinations nil.
type Rows struct {
	rows [][]any
	pos  int
}

func (r *Rows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *Rows) Err() error   { return nil }
func (r *Rows) Close() error { return nil }

func (r *Rows) Scan(dest ...any) error {
	row := r.rows[r.pos]
	if len(row) != len(dest) {
		return fmt.Errorf("row has %d values, scanning into %d", len(row), len(dest))
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	return nil
}

func assign(dest, value any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination %T is not a pointer", dest)
	}
	target := dv.Elem()
	if value == nil {
		target.SetZero()
		return nil
	}
	// canned values may be pointers, like the nullable columns drivers scan into
	if v := reflect.ValueOf(value); v.Kind() == reflect.Pointer {
		if v.IsNil() {
			target.SetZero()
			return nil
		}
		return assign(dest, v.Elem().Interface())
	}
	if target.Kind() == reflect.Pointer {
		p := reflect.New(target.Type().Elem())
		if err := assign(p.Interface(), value); err != nil {
			return err
		}
		target.Set(p)
		return nil
	}
	v := reflect.ValueOf(value)
	if !v.Type().ConvertibleTo(target.Type()) {
		return fmt.Errorf("cannot scan %T into %s", value, target.Type())
	}
	target.Set(v.Convert(target.Type()))
	return nil
}
