package catalog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a catalog record does not exist
var ErrNotFound = goerrors.New("record not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound).
	WithTextCode("NOT_FOUND")

// ListBooksQuery carries the supported filters for listing books.
// Ordering accepts created_at, title, and publication_date, with a
// leading '-' for descending.
type ListBooksQuery struct {
	Genre     string
	CreatedBy string
	Search    string
	Ordering  string
	Limit     int
	Offset    int
}

var orderableBookColumns = map[string]string{
	"created_at":       "b.created_at",
	"title":            "b.title",
	"publication_date": "b.publication_date",
}

type BooksRepository struct {
	db *bun.DB
}

func NewBooksRepository(db *bun.DB) *BooksRepository {
	return &BooksRepository{db: db}
}

func (r *BooksRepository) Create(ctx context.Context, book *Book) (*Book, error) {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	now := time.Now()
	book.CreatedAt = &now
	book.UpdatedAt = &now

	_, err := r.db.NewInsert().
		Model(book).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create book")
	}

	return book, nil
}

func (r *BooksRepository) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	book := &Book{}
	err := r.db.NewSelect().
		Model(book).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to get book")
	}
	return book, nil
}

func (r *BooksRepository) List(ctx context.Context, query ListBooksQuery) ([]*Book, error) {
	var books []*Book

	q := r.db.NewSelect().Model(&books)

	if query.Genre != "" {
		q = q.Where("b.genre = ?", query.Genre)
	}

	if query.CreatedBy != "" {
		q = q.Where("b.created_by = ?", query.CreatedBy)
	}

	if query.Search != "" {
		needle := "%" + strings.ToLower(query.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("lower(b.title) LIKE ?", needle).
				WhereOr("lower(b.authors) LIKE ?", needle).
				WhereOr("lower(b.description) LIKE ?", needle)
		})
	}

	q = q.Order(resolveBookOrdering(query.Ordering))

	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	if query.Offset > 0 {
		q = q.Offset(query.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to list books")
	}

	return books, nil
}

func (r *BooksRepository) Update(ctx context.Context, book *Book) (*Book, error) {
	now := time.Now()
	book.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(book).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update book")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrNotFound
	}

	return book, nil
}

func (r *BooksRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete book")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ISBNTaken checks the unique ISBN constraint ahead of the insert so
// callers can return a field error instead of a bare conflict.
func (r *BooksRepository) ISBNTaken(ctx context.Context, isbn string, excludeID uuid.UUID) (bool, error) {
	q := r.db.NewSelect().
		Model((*Book)(nil)).
		Where("isbn = ?", isbn)

	if excludeID != uuid.Nil {
		q = q.Where("id != ?", excludeID)
	}

	count, err := q.Count(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to check isbn")
	}
	return count > 0, nil
}

func resolveBookOrdering(ordering string) string {
	direction := "ASC"
	key := ordering

	if strings.HasPrefix(ordering, "-") {
		direction = "DESC"
		key = ordering[1:]
	}

	column, ok := orderableBookColumns[key]
	if !ok {
		return "b.created_at DESC"
	}

	return column + " " + direction
}
