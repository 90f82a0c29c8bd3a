package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UpdateProfileMessage carries a partial profile update. Email changes
// are not supported; the field simply does not exist here.
type UpdateProfileMessage struct {
	UserID         string  `json:"user_id"`
	Username       *string `json:"username,omitempty"`
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`

	OnResponse func(*User)
}

func (e UpdateProfileMessage) Type() string { return "user.update_profile" }

type UpdateProfileHandler struct {
	repo RepositoryManager
}

func NewUpdateProfileHandler(repo RepositoryManager) *UpdateProfileHandler {
	return &UpdateProfileHandler{repo: repo}
}

func (h *UpdateProfileHandler) Execute(ctx context.Context, event UpdateProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateProfileHandler) execute(ctx context.Context, event UpdateProfileMessage) error {
	id, err := uuid.Parse(event.UserID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if event.Username != nil {
			current, err := h.repo.Users().GetByID(ctx, event.UserID)
			if err != nil {
				return err
			}

			if !strings.EqualFold(current.Username, *event.Username) {
				taken, err := h.repo.Users().UsernameTaken(ctx, *event.Username)
				if err != nil {
					return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username availability")
				}
				if taken {
					return goerrors.New("A user with that username already exists", goerrors.CategoryValidation).
						WithTextCode("USERNAME_TAKEN").
						WithMetadata(map[string]any{"field": "username"})
				}
			}
		}

		user, err = h.repo.Users().UpdateProfileTx(ctx, tx, id, ProfileUpdate{
			Username:       event.Username,
			FirstName:      event.FirstName,
			LastName:       event.LastName,
			Bio:            event.Bio,
			ProfilePicture: event.ProfilePicture,
		})

		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profile update transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}
