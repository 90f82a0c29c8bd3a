package catalog

import (
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/amalnian/Book-Management"
)

// ReadingListsController handles the reading list HTTP routes. Lists
// are owner scoped: only the user that created a list can modify it,
// and private lists are invisible to everyone else. Public lists can
// be read by any authenticated user.
type ReadingListsController struct {
	repo       *ReadingListsRepository
	books      *BooksRepository
	logger     auth.Logger
	contextKey string
}

type ReadingListsControllerOption func(*ReadingListsController)

func NewReadingListsController(repo *ReadingListsRepository, books *BooksRepository, opts ...ReadingListsControllerOption) *ReadingListsController {
	c := &ReadingListsController{
		repo:       repo,
		books:      books,
		contextKey: "user",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func WithReadingListsLogger(l auth.Logger) ReadingListsControllerOption {
	return func(c *ReadingListsController) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithReadingListsContextKey(key string) ReadingListsControllerOption {
	return func(c *ReadingListsController) {
		if key != "" {
			c.contextKey = key
		}
	}
}

// RegisterRoutes mounts the reading list endpoints
func (c *ReadingListsController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/reading-lists", c.List)
	group.Post("/reading-lists", c.Create)
	group.Get("/reading-lists/:id", c.Show)
	group.Put("/reading-lists/:id", c.Update)
	group.Delete("/reading-lists/:id", c.Remove)
	group.Post("/reading-lists/:id/items", c.AddItem)
	group.Delete("/reading-lists/:id/items/:itemID", c.RemoveItem)
}

// ReadingListPayload is the create/update request body
type ReadingListPayload struct {
	Name        string `form:"name" json:"name"`
	Description string `form:"description" json:"description"`
	IsPublic    bool   `form:"is_public" json:"is_public"`
}

// Validate will validate the payload
func (r ReadingListPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

// ReadingListItemPayload adds a book to a list
type ReadingListItemPayload struct {
	BookID   string `form:"book_id" json:"book_id"`
	Position int    `form:"position" json:"position"`
	Notes    string `form:"notes" json:"notes"`
}

// Validate will validate the payload
func (r ReadingListItemPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required, validation.By(validateUUID)),
		validation.Field(&r.Position, validation.Min(0)),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

func validateUUID(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return goerrors.New("must be a valid uuid", goerrors.CategoryValidation)
	}
	return nil
}

func (c *ReadingListsController) List(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	lists, err := c.repo.ListByOwner(ctx.Context(), userID)
	if err != nil {
		c.logError("list reading lists", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"count":   len(lists),
		"results": lists,
	})
}

func (c *ReadingListsController) Create(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	payload := new(ReadingListPayload)
	if err := ctx.Bind(payload); err != nil {
		return badBody(ctx)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx, err)
	}

	taken, err := c.repo.NameTaken(ctx.Context(), userID, payload.Name, uuid.Nil)
	if err != nil {
		c.logError("create list name check", err)
		return serverError(ctx)
	}
	if taken {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"errors": map[string]string{"name": "You already have a reading list with that name"},
		})
	}

	list, err := c.repo.Create(ctx.Context(), &ReadingList{
		Name:        payload.Name,
		Description: payload.Description,
		IsPublic:    payload.IsPublic,
		OwnerID:     userID,
	})
	if err != nil {
		c.logError("create reading list", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusCreated, list)
}

func (c *ReadingListsController) Show(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	list, err := c.visibleList(ctx, userID)
	if err != nil {
		return c.listError(ctx, err)
	}

	return ctx.JSON(router.StatusOK, list)
}

func (c *ReadingListsController) Update(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	list, err := c.ownedList(ctx, userID)
	if err != nil {
		return c.listError(ctx, err)
	}

	payload := new(ReadingListPayload)
	if err := ctx.Bind(payload); err != nil {
		return badBody(ctx)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx, err)
	}

	taken, err := c.repo.NameTaken(ctx.Context(), userID, payload.Name, list.ID)
	if err != nil {
		c.logError("update list name check", err)
		return serverError(ctx)
	}
	if taken {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"errors": map[string]string{"name": "You already have a reading list with that name"},
		})
	}

	list.Name = payload.Name
	list.Description = payload.Description
	list.IsPublic = payload.IsPublic
	list.Items = nil

	updated, err := c.repo.Update(ctx.Context(), list)
	if err != nil {
		c.logError("update reading list", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusOK, updated)
}

func (c *ReadingListsController) Remove(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	list, err := c.ownedList(ctx, userID)
	if err != nil {
		return c.listError(ctx, err)
	}

	if err := c.repo.Delete(ctx.Context(), list.ID); err != nil {
		c.logError("delete reading list", err)
		return serverError(ctx)
	}

	return ctx.Status(router.StatusNoContent).SendString("")
}

func (c *ReadingListsController) AddItem(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	list, err := c.ownedList(ctx, userID)
	if err != nil {
		return c.listError(ctx, err)
	}

	payload := new(ReadingListItemPayload)
	if err := ctx.Bind(payload); err != nil {
		return badBody(ctx)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx, err)
	}

	bookID, _ := uuid.Parse(payload.BookID)
	if _, err := c.books.GetByID(ctx.Context(), bookID); err != nil {
		if goerrors.Is(err, ErrNotFound) {
			return ctx.JSON(router.StatusBadRequest, map[string]any{
				"errors": map[string]string{"book_id": "Book does not exist"},
			})
		}
		c.logError("add item book lookup", err)
		return serverError(ctx)
	}

	exists, err := c.repo.HasBook(ctx.Context(), list.ID, bookID)
	if err != nil {
		c.logError("add item membership check", err)
		return serverError(ctx)
	}
	if exists {
		return ctx.JSON(router.StatusBadRequest, map[string]any{
			"errors": map[string]string{"book_id": "Book is already in this list"},
		})
	}

	item, err := c.repo.AddItem(ctx.Context(), &ReadingListItem{
		ListID:   list.ID,
		BookID:   bookID,
		Position: payload.Position,
		Notes:    payload.Notes,
	})
	if err != nil {
		c.logError("add reading list item", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusCreated, item)
}

func (c *ReadingListsController) RemoveItem(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	list, err := c.ownedList(ctx, userID)
	if err != nil {
		return c.listError(ctx, err)
	}

	itemID, err := uuid.Parse(ctx.Param("itemID"))
	if err != nil {
		return notFound(ctx)
	}

	if err := c.repo.RemoveItem(ctx.Context(), list.ID, itemID); err != nil {
		if goerrors.Is(err, ErrNotFound) {
			return notFound(ctx)
		}
		c.logError("remove reading list item", err)
		return serverError(ctx)
	}

	return ctx.Status(router.StatusNoContent).SendString("")
}

// ownedList resolves the :id param to a list owned by the caller
func (c *ReadingListsController) ownedList(ctx router.Context, userID uuid.UUID) (*ReadingList, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return nil, ErrNotFound
	}

	list, err := c.repo.GetByID(ctx.Context(), id)
	if err != nil {
		return nil, err
	}

	if !list.OwnedBy(userID) {
		// hide other users' lists entirely instead of confirming they exist
		return nil, ErrNotFound
	}

	return list, nil
}

// visibleList resolves a list the caller may read: their own, or anyone's
// public list. Private lists of other users stay indistinguishable from
// missing ones.
func (c *ReadingListsController) visibleList(ctx router.Context, userID uuid.UUID) (*ReadingList, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return nil, ErrNotFound
	}

	list, err := c.repo.GetByID(ctx.Context(), id)
	if err != nil {
		return nil, err
	}

	if !list.OwnedBy(userID) && !list.IsPublic {
		return nil, ErrNotFound
	}

	return list, nil
}

func (c *ReadingListsController) listError(ctx router.Context, err error) error {
	if goerrors.Is(err, ErrNotFound) {
		return notFound(ctx)
	}
	c.logError("reading list lookup", err)
	return serverError(ctx)
}

func (c *ReadingListsController) currentUserID(ctx router.Context) (uuid.UUID, error) {
	claims, ok := auth.GetRouterClaims(ctx, c.contextKey)
	if !ok {
		return uuid.Nil, auth.ErrIdentityNotFound
	}
	return uuid.Parse(claims.UserID)
}

func (c *ReadingListsController) logError(msg string, err error) {
	if c.logger != nil {
		c.logger.Error(msg, "error", err)
	}
}
