package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Storage struct {
	Pool *pgxpool.Pool
}

// New opens the connection pool once at process startup. The pool is
// handed to the repositories; nothing else touches the database.
func New(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgresql.New"

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{Pool: pool}, nil
}

func (s *Storage) Stop() {
	s.Pool.Close()
}
