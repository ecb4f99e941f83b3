package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNotFound = errors.New("record not found")

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type DB interface {
	Execer
	Getter
	Selecter
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// where accumulates AND-ed predicates with positional parameters.
type where struct {
	clauses []string
	args    []any
}

// add appends a predicate; each %d in clause is replaced by the next parameter index.
func (w *where) add(clause string, values ...any) {
	indexes := make([]any, len(values))
	for i, value := range values {
		w.args = append(w.args, value)
		indexes[i] = len(w.args)
	}
	w.clauses = append(w.clauses, fmt.Sprintf(clause, indexes...))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *where) next() string {
	return "$" + strconv.Itoa(len(w.args)+1)
}

func likePattern(term string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(term) + "%"
}
