package catalog

import (
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/amalnian/Book-Management"
)

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// BooksController handles the book catalog HTTP routes. All routes
// require an authenticated caller; mutations additionally require that
// the caller created the book.
type BooksController struct {
	repo       *BooksRepository
	logger     auth.Logger
	contextKey string
}

type BooksControllerOption func(*BooksController)

func NewBooksController(repo *BooksRepository, opts ...BooksControllerOption) *BooksController {
	c := &BooksController{
		repo:       repo,
		contextKey: "user",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func WithBooksLogger(l auth.Logger) BooksControllerOption {
	return func(c *BooksController) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithBooksContextKey(key string) BooksControllerOption {
	return func(c *BooksController) {
		if key != "" {
			c.contextKey = key
		}
	}
}

// RegisterRoutes mounts the book endpoints
func (c *BooksController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/books", c.List)
	group.Post("/books", c.Create)
	group.Get("/books/:id", c.Show)
	group.Put("/books/:id", c.Update)
	group.Delete("/books/:id", c.Remove)
}

// BookPayload is the create/update request body
type BookPayload struct {
	Title           string `form:"title" json:"title"`
	Authors         string `form:"authors" json:"authors"`
	Genre           string `form:"genre" json:"genre"`
	PublicationDate string `form:"publication_date" json:"publication_date"`
	Description     string `form:"description" json:"description"`
	CoverURL        string `form:"cover_url" json:"cover_url"`
	ISBN            string `form:"isbn" json:"isbn"`
	Pages           int    `form:"pages" json:"pages"`
}

// Validate will validate the payload
func (r BookPayload) Validate() error {
	genres := Genres()
	choices := make([]any, 0, len(genres))
	for _, g := range genres {
		choices = append(choices, string(g.(Genre)))
	}

	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Authors, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Genre, validation.Required, validation.In(choices...)),
		validation.Field(&r.PublicationDate, validation.Date("2006-01-02")),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.CoverURL, is.URL),
		validation.Field(&r.ISBN, validation.Length(10, 13)),
		validation.Field(&r.Pages, validation.Min(0)),
	)
}

func (r BookPayload) toBook(ownerID uuid.UUID) *Book {
	book := &Book{
		Title:       r.Title,
		Authors:     r.Authors,
		Genre:       Genre(r.Genre),
		Description: r.Description,
		CoverURL:    r.CoverURL,
		Pages:       r.Pages,
		CreatedBy:   ownerID,
	}

	if r.ISBN != "" {
		isbn := r.ISBN
		book.ISBN = &isbn
	}

	if r.PublicationDate != "" {
		if t, err := time.Parse("2006-01-02", r.PublicationDate); err == nil {
			book.PublicationDate = &t
		}
	}

	return book
}

func (c *BooksController) List(ctx router.Context) error {
	if _, err := c.currentUserID(ctx); err != nil {
		return unauthorized(ctx)
	}

	limit, _ := strconv.Atoi(ctx.Query("limit", "50"))
	offset, _ := strconv.Atoi(ctx.Query("offset", "0"))

	books, err := c.repo.List(ctx.Context(), ListBooksQuery{
		Genre:     ctx.Query("genre"),
		CreatedBy: ctx.Query("created_by"),
		Search:    ctx.Query("search"),
		Ordering:  ctx.Query("ordering", "-created_at"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		c.logError("list books", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"count":   len(books),
		"results": books,
	})
}

func (c *BooksController) Create(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	payload := new(BookPayload)
	if err := ctx.Bind(payload); err != nil {
		return badBody(ctx)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx, err)
	}

	if payload.ISBN != "" {
		taken, err := c.repo.ISBNTaken(ctx.Context(), payload.ISBN, uuid.Nil)
		if err != nil {
			c.logError("create book isbn check", err)
			return serverError(ctx)
		}
		if taken {
			return ctx.JSON(router.StatusBadRequest, map[string]any{
				"errors": map[string]string{"isbn": "A book with that ISBN already exists"},
			})
		}
	}

	book, err := c.repo.Create(ctx.Context(), payload.toBook(userID))
	if err != nil {
		c.logError("create book", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusCreated, book)
}

func (c *BooksController) Show(ctx router.Context) error {
	if _, err := c.currentUserID(ctx); err != nil {
		return unauthorized(ctx)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return notFound(ctx)
	}

	book, err := c.repo.GetByID(ctx.Context(), id)
	if err != nil {
		if goerrors.Is(err, ErrNotFound) {
			return notFound(ctx)
		}
		c.logError("get book", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusOK, book)
}

func (c *BooksController) Update(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return notFound(ctx)
	}

	existing, err := c.repo.GetByID(ctx.Context(), id)
	if err != nil {
		if goerrors.Is(err, ErrNotFound) {
			return notFound(ctx)
		}
		c.logError("get book", err)
		return serverError(ctx)
	}

	if !existing.OwnedBy(userID) {
		return forbidden(ctx)
	}

	payload := new(BookPayload)
	if err := ctx.Bind(payload); err != nil {
		return badBody(ctx)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(ctx, err)
	}

	if payload.ISBN != "" {
		taken, err := c.repo.ISBNTaken(ctx.Context(), payload.ISBN, id)
		if err != nil {
			c.logError("update book isbn check", err)
			return serverError(ctx)
		}
		if taken {
			return ctx.JSON(router.StatusBadRequest, map[string]any{
				"errors": map[string]string{"isbn": "A book with that ISBN already exists"},
			})
		}
	}

	book := payload.toBook(existing.CreatedBy)
	book.ID = existing.ID
	book.CreatedAt = existing.CreatedAt

	updated, err := c.repo.Update(ctx.Context(), book)
	if err != nil {
		c.logError("update book", err)
		return serverError(ctx)
	}

	return ctx.JSON(router.StatusOK, updated)
}

func (c *BooksController) Remove(ctx router.Context) error {
	userID, err := c.currentUserID(ctx)
	if err != nil {
		return unauthorized(ctx)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return notFound(ctx)
	}

	existing, err := c.repo.GetByID(ctx.Context(), id)
	if err != nil {
		if goerrors.Is(err, ErrNotFound) {
			return notFound(ctx)
		}
		c.logError("get book", err)
		return serverError(ctx)
	}

	if !existing.OwnedBy(userID) {
		return forbidden(ctx)
	}

	if err := c.repo.Delete(ctx.Context(), id); err != nil {
		c.logError("delete book", err)
		return serverError(ctx)
	}

	return ctx.Status(router.StatusNoContent).SendString("")
}

func (c *BooksController) currentUserID(ctx router.Context) (uuid.UUID, error) {
	claims, ok := auth.GetRouterClaims(ctx, c.contextKey)
	if !ok {
		return uuid.Nil, auth.ErrIdentityNotFound
	}
	return uuid.Parse(claims.UserID)
}

func (c *BooksController) logError(msg string, err error) {
	if c.logger != nil {
		c.logger.Error(msg, "error", err)
	}
}

func unauthorized(ctx router.Context) error {
	return ctx.JSON(router.StatusUnauthorized, map[string]string{
		"error": "Authentication required",
	})
}

func forbidden(ctx router.Context) error {
	return ctx.JSON(router.StatusForbidden, map[string]string{
		"error": "You do not have permission to perform this action",
	})
}

func notFound(ctx router.Context) error {
	return ctx.JSON(router.StatusNotFound, map[string]string{
		"error": "Not found",
	})
}

func badBody(ctx router.Context) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"errors": map[string]string{"body": "Failed to parse request body"},
	})
}

func validationFailed(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"errors": auth.FormatValidationErrorToMap(err),
	})
}

func serverError(ctx router.Context) error {
	return ctx.JSON(router.StatusInternalServerError, map[string]string{
		"error": "Something went wrong",
	})
}
