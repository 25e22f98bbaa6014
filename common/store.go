package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	resultColumns = "language, variant, version, mode, iterations, pi_estimate, abs_error, time_ms, memory_mb" +
		", cpu_cores, thread_count, os, compiler, seed, partition_mode"

	insertQuery = "INSERT INTO results (run_id, " + resultColumns + ") VALUES (?, " +
		"?, ?, ?, ?, ?, ?, ?, ?, ?, " +
		"?, ?, ?, ?, ?, ?)"

	selectQuery = "SELECT run_id, insert_time, " + resultColumns + " FROM results"
)

var ErrNoRunID = errors.New("result has no run id")

// DBConfigFromEnv reads DB_USER, DB_PASSWORD, DB_ADDRESS and DB_NAME.
func DBConfigFromEnv() *mysql.Config {
	return &mysql.Config{
		User:                 os.Getenv("DB_USER"),
		Passwd:               os.Getenv("DB_PASSWORD"),
		Addr:                 os.Getenv("DB_ADDRESS"),
		DBName:               os.Getenv("DB_NAME"),
		Collation:            "utf8mb4_general_ci",
		Net:                  "tcp",
		AllowNativePasswords: true,
		ParseTime:            true,
	}
}

type Store struct {
	db *sql.DB
}

func OpenStore(cfg *mysql.Config) (*Store, error) {
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	return NewStore(db), nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (store *Store) Close() error {
	return store.db.Close()
}

func (store *Store) Insert(ctx context.Context, packet AMQPPacket) error {
	if packet.RunID == "" {
		return ErrNoRunID
	}

	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	r := packet.Result
	if _, err = stmt.ExecContext(ctx,
		packet.RunID,
		r.Language, r.Variant, r.Version, r.Mode, r.Iterations, r.PiEstimate, r.Error, r.TimeMS, r.MemoryMB,
		r.CPUCores, r.ThreadCount, r.OS, r.Compiler, r.Seed, r.Partition,
	); err != nil {
		return fmt.Errorf("inserting run %s: %w", packet.RunID, err)
	}

	return tx.Commit()
}

type Filter struct {
	Language string
	Mode     string
	// Limit <= 0 means no limit.
	Limit int
}

func (filter Filter) query() (string, []any) {
	var conditions []string
	var args []any

	if filter.Language != "" {
		conditions = append(conditions, "language = ?")
		args = append(args, filter.Language)
	}

	if filter.Mode != "" {
		conditions = append(conditions, "mode = ?")
		args = append(args, filter.Mode)
	}

	query := selectQuery
	if len(conditions) != 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY insert_time"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return query, args
}

type StoredResult struct {
	RunID      string
	InsertTime time.Time

	Result
}

func (store *Store) Results(ctx context.Context, filter Filter) ([]StoredResult, error) {
	query, args := filter.query()

	rows, err := store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []StoredResult
	for i := 0; rows.Next(); i++ {
		var row StoredResult

		if err = rows.Scan(
			&row.RunID, &row.InsertTime,
			&row.Language, &row.Variant, &row.Version, &row.Mode,
			&row.Iterations, &row.PiEstimate, &row.Error, &row.TimeMS, &row.MemoryMB,
			&row.CPUCores, &row.ThreadCount, &row.OS, &row.Compiler, &row.Seed, &row.Partition,
		); err != nil {
			return nil, fmt.Errorf("reading row %d: %w", i, err)
		}

		results = append(results, row)
	}

	return results, rows.Err()
}
