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

type ReadingListsRepository struct {
	db *bun.DB
}

func NewReadingListsRepository(db *bun.DB) *ReadingListsRepository {
	return &ReadingListsRepository{db: db}
}

func (r *ReadingListsRepository) Create(ctx context.Context, list *ReadingList) (*ReadingList, error) {
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	now := time.Now()
	list.CreatedAt = &now
	list.UpdatedAt = &now

	_, err := r.db.NewInsert().
		Model(list).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create reading list")
	}

	return list, nil
}

// GetByID loads a list with its items, items sorted by position then by
// when they were added.
func (r *ReadingListsRepository) GetByID(ctx context.Context, id uuid.UUID) (*ReadingList, error) {
	list := &ReadingList{}
	err := r.db.NewSelect().
		Model(list).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("rli.position ASC", "rli.added_at ASC")
		}).
		Relation("Items.Book").
		Where("rl.id = ?", id).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to get reading list")
	}
	return list, nil
}

func (r *ReadingListsRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*ReadingList, error) {
	var lists []*ReadingList

	err := r.db.NewSelect().
		Model(&lists).
		Where("rl.owner_id = ?", ownerID).
		Order("rl.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to list reading lists")
	}

	return lists, nil
}

func (r *ReadingListsRepository) Update(ctx context.Context, list *ReadingList) (*ReadingList, error) {
	now := time.Now()
	list.UpdatedAt = &now

	res, err := r.db.NewUpdate().
		Model(list).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to update reading list")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrNotFound
	}

	return list, nil
}

func (r *ReadingListsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// items go first, sqlite will not cascade for us by default
	if _, err := r.db.NewDelete().
		Model((*ReadingListItem)(nil)).
		Where("list_id = ?", id).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete reading list items")
	}

	res, err := r.db.NewDelete().
		Model((*ReadingList)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to delete reading list")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// NameTaken enforces the one-name-per-owner rule, case insensitively
func (r *ReadingListsRepository) NameTaken(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	q := r.db.NewSelect().
		Model((*ReadingList)(nil)).
		Where("owner_id = ?", ownerID).
		Where("lower(name) = ?", strings.ToLower(strings.TrimSpace(name)))

	if excludeID != uuid.Nil {
		q = q.Where("id != ?", excludeID)
	}

	count, err := q.Count(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to check list name")
	}
	return count > 0, nil
}

func (r *ReadingListsRepository) AddItem(ctx context.Context, item *ReadingListItem) (*ReadingListItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	now := time.Now()
	item.AddedAt = &now

	_, err := r.db.NewInsert().
		Model(item).
		Exec(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to add reading list item")
	}

	return item, nil
}

func (r *ReadingListsRepository) RemoveItem(ctx context.Context, listID, itemID uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*ReadingListItem)(nil)).
		Where("id = ?", itemID).
		Where("list_id = ?", listID).
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to remove reading list item")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotFound
	}

	return nil
}

// HasBook reports whether the list already contains the book
func (r *ReadingListsRepository) HasBook(ctx context.Context, listID, bookID uuid.UUID) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*ReadingListItem)(nil)).
		Where("list_id = ?", listID).
		Where("book_id = ?", bookID).
		Count(ctx)
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to check list membership")
	}
	return count > 0, nil
}
