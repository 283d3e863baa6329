package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	// postgres driver
	_ "github.com/lib/pq"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/logger"
)

const dsnTemplate = "user=%s password=%s host=%s dbname=%s sslmode=disable"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type config interface {
	Host() string
	Username() string
	Password() string
	Database() string
}

// PostgresStorage keeps logs in an expenses table keyed by username.
// It implements the same whole-log contract as FileStorage: Overwrite
// replaces every row for the user inside one transaction.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{db}, nil
}

func (s *PostgresStorage) Load(ctx context.Context, user string) (expense.Log, error) {
	query := psql.Select("id", "expense_date", "category", "amount", "description").
		From("expenses").
		Where(sq.Eq{"username": user}).
		OrderBy("id")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load log")
	}
	defer func() {
		rowErr := rows.Close()
		if rowErr != nil {
			logger.Error("error closing rows", zap.Error(rowErr))
		}
	}()

	log := make(expense.Log, 0)
	for rows.Next() {
		var rec expense.Record
		err = rows.Scan(&rec.ID, &rec.Date, &rec.Category, &rec.Amount, &rec.Description)
		if err != nil {
			return nil, errors.Wrap(err, "load log")
		}
		log = append(log, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "load log")
	}
	return log, nil
}

func (s *PostgresStorage) Append(ctx context.Context, user string, rec expense.Record) (expense.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "append expense")
	}
	defer rollback(tx)

	next := psql.Select("coalesce(max(id), 0) + 1").
		From("expenses").
		Where(sq.Eq{"username": user})
	err = next.RunWith(tx).QueryRowContext(ctx).Scan(&rec.ID)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "append expense")
	}

	insert := psql.Insert("expenses").
		Columns("username", "id", "expense_date", "category", "amount", "description").
		Values(user, rec.ID, rec.Date, rec.Category, rec.Amount, rec.Description)
	_, err = insert.RunWith(tx).ExecContext(ctx)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "append expense")
	}

	if err = tx.Commit(); err != nil {
		return expense.Record{}, errors.Wrap(err, "append expense")
	}
	return rec, nil
}

func (s *PostgresStorage) Overwrite(ctx context.Context, user string, log expense.Log) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "overwrite log")
	}
	defer rollback(tx)

	del := psql.Delete("expenses").Where(sq.Eq{"username": user})
	if _, err = del.RunWith(tx).ExecContext(ctx); err != nil {
		return errors.Wrap(err, "overwrite log")
	}

	for _, rec := range log {
		insert := psql.Insert("expenses").
			Columns("username", "id", "expense_date", "category", "amount", "description").
			Values(user, rec.ID, rec.Date, rec.Category, rec.Amount, rec.Description)
		if _, err = insert.RunWith(tx).ExecContext(ctx); err != nil {
			return errors.Wrap(err, "overwrite log")
		}
	}
	return errors.Wrap(tx.Commit(), "overwrite log")
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Error("error when transaction rollback", zap.Error(err))
	}
}
