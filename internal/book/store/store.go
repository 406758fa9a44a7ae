package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hjin-me/libraryms/internal/book"
)

// Store is the Postgres repository behind the lifecycle engine. Every
// transition runs as one transaction that appends exactly one change-log
// entry and advances the book snapshot, so the snapshot and the log can
// never drift apart.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Authors are stored joined on "/", the same separator the catalog service
// uses in its author field.
const authorsSep = "/"

func joinAuthors(authors []string) string {
	return strings.Join(authors, authorsSep)
}

func splitAuthors(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, authorsSep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	return parts
}

const selectBookColumns = `
	b.id, b.isbn, b.title, b.authors, b.publisher, b.thumbnail, b.state,
	b.holder_id, b.log_id, cl.operator, a.display_name, cl.operate_at,
	b.created_at, b.deleted_at
`

// scanBook reads one row in selectBookColumns order.
func scanBook(s scanner) (*book.Book, error) {
	var (
		b            book.Book
		authors      string
		state        string
		holderID     sql.NullString
		operator     sql.NullString
		operatorName sql.NullString
		operatedAt   sql.NullTime
	)

	if err := s.Scan(
		&b.ID, &b.ISBN, &b.Title, &authors, &b.Publisher, &b.Thumbnail, &state,
		&holderID, &b.LogID, &operator, &operatorName, &operatedAt,
		&b.CreatedAt, &b.DeletedAt,
	); err != nil {
		return nil, err
	}

	b.Authors = splitAuthors(authors)
	b.State = book.ParseState(state)
	b.HolderID = holderID.String
	b.Operator = operator.String
	b.OperatorName = operatorName.String
	b.OperatedAt = operatedAt.Time

	return &b, nil
}

const insertChangeLog = `
	INSERT INTO change_logs (operator, source_id, source_type, action, state, operate_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	RETURNING id, operate_at
`

// CreateBook inserts the book row, its first change-log entry and the
// pointer to it in a single transaction. Any failure rolls the whole
// acquisition back.
func (s *Store) CreateBook(ctx context.Context, b *book.Book, narrative string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	b.ID = uuid.New()

	insertBook := `
		INSERT INTO books (id, isbn, title, authors, publisher, thumbnail, state, log_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, NOW())
		RETURNING created_at
	`
	if err := tx.QueryRowContext(ctx, insertBook,
		b.ID, b.ISBN, b.Title, joinAuthors(b.Authors), b.Publisher, b.Thumbnail, string(b.State),
	).Scan(&b.CreatedAt); err != nil {
		return fmt.Errorf("inserting book: %w", err)
	}

	if err := tx.QueryRowContext(ctx, insertChangeLog,
		b.Operator, b.ID, book.SourceTypeBook, narrative, string(b.State),
	).Scan(&b.LogID, &b.OperatedAt); err != nil {
		return fmt.Errorf("inserting change log: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE books SET log_id = $1 WHERE id = $2`, b.LogID, b.ID); err != nil {
		return fmt.Errorf("linking change log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing acquisition: %w", err)
	}

	return nil
}

// Transition appends a change-log entry and updates the book snapshot in one
// transaction. The UPDATE carries the precondition: it only matches a live
// row in one of the expected source states (and held by the expected member,
// for returns). Zero rows matched means the entry insert is rolled back and
// the caller gets ErrNotFound or ErrConflict.
func (s *Store) Transition(ctx context.Context, p book.TransitionParams) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var logID int64
	if err := tx.QueryRowContext(ctx, insertChangeLog,
		p.Actor, p.BookID, book.SourceTypeBook, p.Narrative, string(p.To),
	).Scan(&logID, new(sql.NullTime)); err != nil {
		return fmt.Errorf("inserting change log: %w", err)
	}

	query := `UPDATE books SET state = $1, log_id = $2`
	args := []any{string(p.To), logID}
	argIdx := 3

	if p.SetHolder != "" {
		query += fmt.Sprintf(", holder_id = $%d", argIdx)

		args = append(args, p.SetHolder)
		argIdx++
	}

	if p.ClearHolder {
		query += ", holder_id = NULL"
	}

	if p.SoftDelete {
		query += ", deleted_at = NOW()"
	}

	query += fmt.Sprintf(" WHERE id = $%d AND deleted_at IS NULL", argIdx)

	args = append(args, p.BookID)
	argIdx++

	if len(p.FromStates) > 0 {
		placeholders := make([]string, len(p.FromStates))
		for i, st := range p.FromStates {
			placeholders[i] = fmt.Sprintf("$%d", argIdx)

			args = append(args, string(st))
			argIdx++
		}

		query += fmt.Sprintf(" AND state IN (%s)", strings.Join(placeholders, ", "))
	}

	if p.HolderMustBe != nil {
		query += fmt.Sprintf(" AND holder_id = $%d", argIdx)

		args = append(args, *p.HolderMustBe)
		argIdx++
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}

	if affected == 0 {
		// Distinguish a missing/removed book from a live one in the
		// wrong state. Either way the deferred rollback discards the
		// change-log entry.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM books WHERE id = $1 AND deleted_at IS NULL)`,
			p.BookID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking book existence: %w", err)
		}

		if !exists {
			return book.ErrNotFound
		}

		return fmt.Errorf("%w: book %s is not in state %v", book.ErrConflict, p.BookID, p.FromStates)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transition: %w", err)
	}

	return nil
}

func (s *Store) GetBook(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	query := `SELECT ` + selectBookColumns + `
		FROM books b
		         LEFT JOIN change_logs cl ON b.log_id = cl.id
		         LEFT JOIN accounts a ON a.id = cl.operator
		WHERE b.id = $1 AND b.deleted_at IS NULL`

	b, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, book.ErrNotFound
		}

		return nil, fmt.Errorf("getting book: %w", err)
	}

	return b, nil
}

func (s *Store) ListBooks(ctx context.Context, filter book.ListFilter) ([]*book.Book, error) {
	query := `SELECT ` + selectBookColumns + `
		FROM books b
		         LEFT JOIN change_logs cl ON b.log_id = cl.id
		         LEFT JOIN accounts a ON a.id = cl.operator
		WHERE b.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Query != "" {
		query += fmt.Sprintf(" AND (b.title ILIKE $%d OR b.isbn ILIKE $%d)", argIdx, argIdx)

		args = append(args, "%"+filter.Query+"%")
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []*book.Book

	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}

		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating book rows: %w", err)
	}

	return books, nil
}

// ListChangeLogs returns a live book's audit trail, newest entry first.
func (s *Store) ListChangeLogs(ctx context.Context, bookID uuid.UUID) ([]*book.ChangeLog, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM books WHERE id = $1 AND deleted_at IS NULL)`,
		bookID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking book existence: %w", err)
	}

	if !exists {
		return nil, book.ErrNotFound
	}

	query := `
		SELECT id, operator, source_id, source_type, action, state, operate_at
		FROM change_logs
		WHERE source_id = $1 AND source_type = $2
		ORDER BY id DESC
	`

	rows, err := s.db.QueryContext(ctx, query, bookID, book.SourceTypeBook)
	if err != nil {
		return nil, fmt.Errorf("listing change logs: %w", err)
	}
	defer rows.Close()

	var logs []*book.ChangeLog

	for rows.Next() {
		var (
			cl    book.ChangeLog
			state string
		)

		if err := rows.Scan(&cl.ID, &cl.Operator, &cl.SourceID, &cl.SourceType, &cl.Action, &state, &cl.OperatedAt); err != nil {
			return nil, fmt.Errorf("scanning change log: %w", err)
		}

		cl.State = book.ParseState(state)
		logs = append(logs, &cl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change log rows: %w", err)
	}

	return logs, nil
}
