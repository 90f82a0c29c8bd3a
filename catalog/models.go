package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Genre is the closed set of book categories
type Genre string

const (
	GenreFiction    Genre = "fiction"
	GenreNonFiction Genre = "non_fiction"
	GenreMystery    Genre = "mystery"
	GenreRomance    Genre = "romance"
	GenreSciFi      Genre = "sci_fi"
	GenreFantasy    Genre = "fantasy"
	GenreBiography  Genre = "biography"
	GenreHistory    Genre = "history"
	GenreSelfHelp   Genre = "self_help"
	GenreOther      Genre = "other"
)

// Genres lists every valid genre, used by payload validation
func Genres() []any {
	return []any{
		GenreFiction, GenreNonFiction, GenreMystery, GenreRomance,
		GenreSciFi, GenreFantasy, GenreBiography, GenreHistory,
		GenreSelfHelp, GenreOther,
	}
}

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              uuid.UUID  `bun:"id,pk,notnull" json:"id"`
	Title           string     `bun:"title,notnull" json:"title"`
	Authors         string     `bun:"authors,notnull" json:"authors"`
	Genre           Genre      `bun:"genre,notnull" json:"genre"`
	PublicationDate *time.Time `bun:"publication_date,nullzero" json:"publication_date,omitempty"`
	Description     string     `bun:"description" json:"description"`
	CoverURL        string     `bun:"cover_url" json:"cover_url,omitempty"`
	ISBN            *string    `bun:"isbn,nullzero,unique" json:"isbn,omitempty"`
	Pages           int        `bun:"pages" json:"pages,omitempty"`
	CreatedBy       uuid.UUID  `bun:"created_by,notnull" json:"created_by"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// OwnedBy reports whether the book was created by the given user
func (b *Book) OwnedBy(userID uuid.UUID) bool {
	return b.CreatedBy == userID
}

type ReadingList struct {
	bun.BaseModel `bun:"table:reading_lists,alias:rl"`

	ID          uuid.UUID  `bun:"id,pk,notnull" json:"id"`
	Name        string     `bun:"name,notnull" json:"name"`
	Description string     `bun:"description" json:"description"`
	IsPublic    bool       `bun:"is_public,default:false" json:"is_public"`
	OwnerID     uuid.UUID  `bun:"owner_id,notnull" json:"owner_id"`
	CreatedAt   *time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   *time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Items []*ReadingListItem `bun:"rel:has-many,join:id=list_id" json:"items,omitempty"`
}

func (l *ReadingList) OwnedBy(userID uuid.UUID) bool {
	return l.OwnerID == userID
}

// ReadingListItem links a book into a list. A book appears in a list at
// most once; items sort by position, ties broken by when they were added.
type ReadingListItem struct {
	bun.BaseModel `bun:"table:reading_list_items,alias:rli"`

	ID       uuid.UUID  `bun:"id,pk,notnull" json:"id"`
	ListID   uuid.UUID  `bun:"list_id,notnull" json:"list_id"`
	BookID   uuid.UUID  `bun:"book_id,notnull" json:"book_id"`
	Position int        `bun:"position,default:0" json:"position"`
	Notes    string     `bun:"notes" json:"notes,omitempty"`
	AddedAt  *time.Time `bun:"added_at,nullzero,notnull,default:current_timestamp" json:"added_at"`

	Book *Book `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
}
