package auth_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	auth "github.com/amalnian/Book-Management"
)

// fakeUsers overrides the handful of repository methods the controller
// exercises. The embedded interface is never touched beyond those.
type fakeUsers struct {
	auth.Users

	byIdentifier  map[string]*auth.User
	usernameTaken bool
	emailTaken    bool
	created       *auth.User
	updated       *auth.User
}

func (f *fakeUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	if user, ok := f.byIdentifier[strings.ToLower(identifier)]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (f *fakeUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	return f.GetByIdentifier(ctx, id)
}

func (f *fakeUsers) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return f.usernameTaken, nil
}

func (f *fakeUsers) EmailTaken(ctx context.Context, email string) (bool, error) {
	return f.emailTaken, nil
}

func (f *fakeUsers) CreateTx(ctx context.Context, tx bun.IDB, record *auth.User, criteria ...repository.InsertCriteria) (*auth.User, error) {
	record.ID = testUserID
	f.created = record
	return record, nil
}

func (f *fakeUsers) UpdateProfileTx(ctx context.Context, tx bun.IDB, id uuid.UUID, fields auth.ProfileUpdate) (*auth.User, error) {
	user, err := f.GetByIdentifier(ctx, id.String())
	if err != nil {
		return nil, err
	}

	if fields.Username != nil {
		user.Username = *fields.Username
	}
	if fields.FirstName != nil {
		user.FirstName = *fields.FirstName
	}
	if fields.LastName != nil {
		user.LastName = *fields.LastName
	}
	if fields.Bio != nil {
		user.Bio = *fields.Bio
	}
	if fields.ProfilePicture != nil {
		user.ProfilePicture = *fields.ProfilePicture
	}

	f.updated = user
	return user, nil
}

// fakeRepoManager satisfies auth.RepositoryManager without a database
type fakeRepoManager struct {
	users auth.Users
}

func (f fakeRepoManager) Validate() error { return nil }
func (f fakeRepoManager) MustValidate()   {}

func (f fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	return fn(ctx, bun.Tx{})
}

func (f fakeRepoManager) Users() auth.Users { return f.users }

func newTestController(t *testing.T, users *fakeUsers) *auth.AuthController {
	t.Helper()

	cfg := newTestConfig()
	identity := testIdentity{id: testUserID.String(), username: "tester", email: "tester@example.com"}

	provider := new(MockIdentityProvider)
	provider.On("VerifyIdentity", mock.Anything, "tester@example.com", "Str0ng!pass").
		Return(identity, nil).Maybe()
	provider.On("VerifyIdentity", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, auth.ErrMismatchedHashAndPassword).Maybe()
	provider.On("FindIdentityByIdentifier", mock.Anything, testUserID.String()).
		Return(identity, nil).Maybe()

	return auth.NewAuthController(
		auth.WithControllerRepo(fakeRepoManager{users: users}),
		auth.WithControllerAuther(auth.NewAuthenticator(provider, cfg)),
		auth.WithControllerSession(auth.NewCookieSession(cfg)),
	)
}

func newFakeUsers(t *testing.T) *fakeUsers {
	user := newStoredUser(t)
	user.FirstName = "Test"
	user.LastName = "Er"

	return &fakeUsers{
		byIdentifier: map[string]*auth.User{
			"tester@example.com":        user,
			"tester":                    user,
			strings.ToLower(user.ID.String()): user,
		},
	}
}

func bindPayload[T any](payload T) func(mock.Arguments) {
	return func(args mock.Arguments) {
		target := args.Get(0).(*T)
		*target = payload
	}
}

func TestAuthController_LoginPost(t *testing.T) {
	t.Run("valid credentials set cookies and return the profile", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.LoginRequest{Email: "tester@example.com", Password: "Str0ng!pass"})).
			Return(nil)
		ctx.On("Context").Return(context.Background())

		cookies := map[string]string{}
		ctx.On("Cookie", mock.Anything).Run(func(args mock.Arguments) {
			cookie := args.Get(0).(*router.Cookie)
			cookies[cookie.Name] = cookie.Value
		}).Return()

		var body fiber.Map
		ctx.On("JSON", fiber.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.LoginPost(ctx))

		assert.NotEmpty(t, cookies["access_token"])
		assert.NotEmpty(t, cookies["refresh_token"])
		assert.Equal(t, "Login successful", body["message"])

		profile, ok := body["user"].(*auth.Profile)
		require.True(t, ok)
		assert.Equal(t, "tester@example.com", profile.Email)
	})

	t.Run("wrong password responds with the generic credential error", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.LoginRequest{Email: "tester@example.com", Password: "wrong"})).
			Return(nil)
		ctx.On("Context").Return(context.Background())

		var body fiber.Map
		ctx.On("JSON", fiber.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.LoginPost(ctx))
		assert.Equal(t, "Invalid credentials", body["error"])
		ctx.AssertNotCalled(t, "Cookie", mock.Anything)
	})

	t.Run("unknown email responds with the same body as a wrong password", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.LoginRequest{Email: "ghost@example.com", Password: "Str0ng!pass"})).
			Return(nil)
		ctx.On("Context").Return(context.Background())

		var body fiber.Map
		ctx.On("JSON", fiber.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.LoginPost(ctx))
		assert.Equal(t, "Invalid credentials", body["error"])
	})

	t.Run("invalid payload responds with field errors", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.LoginRequest{Email: "not-an-email"})).
			Return(nil)

		var body fiber.Map
		ctx.On("JSON", fiber.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.LoginPost(ctx))

		errs, ok := body["errors"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "password")
	})
}

func TestAuthController_RegistrationCreate(t *testing.T) {
	payload := auth.RegistrationCreatePayload{
		Username:        "newuser",
		Email:           "new@example.com",
		FirstName:       "New",
		LastName:        "User",
		Password:        "Str0ng!pass",
		ConfirmPassword: "Str0ng!pass",
	}

	t.Run("creates the user", func(t *testing.T) {
		users := newFakeUsers(t)
		controller := newTestController(t, users)

		ctx := router.NewMockContext()
		ctx.On("Bind", mock.Anything).Run(bindPayload(payload)).Return(nil)
		ctx.On("Context").Return(context.Background())

		var body fiber.Map
		ctx.On("JSON", fiber.StatusCreated, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.RegistrationCreate(ctx))

		assert.Equal(t, "User registered successfully", body["message"])
		require.NotNil(t, users.created)
		assert.Equal(t, "newuser", users.created.Username)
		assert.NotEqual(t, "Str0ng!pass", users.created.PasswordHash)
	})

	t.Run("taken username is a field error", func(t *testing.T) {
		users := newFakeUsers(t)
		users.usernameTaken = true
		controller := newTestController(t, users)

		ctx := router.NewMockContext()
		ctx.On("Bind", mock.Anything).Run(bindPayload(payload)).Return(nil)
		ctx.On("Context").Return(context.Background())

		var body fiber.Map
		ctx.On("JSON", fiber.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.RegistrationCreate(ctx))

		errs, ok := body["errors"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, errs["username"], "already exists")
	})

	t.Run("taken email is a field error", func(t *testing.T) {
		users := newFakeUsers(t)
		users.emailTaken = true
		controller := newTestController(t, users)

		ctx := router.NewMockContext()
		ctx.On("Bind", mock.Anything).Run(bindPayload(payload)).Return(nil)
		ctx.On("Context").Return(context.Background())

		var body fiber.Map
		ctx.On("JSON", fiber.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.RegistrationCreate(ctx))

		errs, ok := body["errors"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, errs["email"], "already exists")
	})

	t.Run("password mismatch is rejected before hitting the store", func(t *testing.T) {
		users := newFakeUsers(t)
		controller := newTestController(t, users)

		bad := payload
		bad.ConfirmPassword = "Different1!"

		ctx := router.NewMockContext()
		ctx.On("Bind", mock.Anything).Run(bindPayload(bad)).Return(nil)

		var body fiber.Map
		ctx.On("JSON", fiber.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.RegistrationCreate(ctx))

		errs, ok := body["errors"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, errs, "confirm_password")
		assert.Nil(t, users.created)
	})

	t.Run("weak password is rejected", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		weak := payload
		weak.Password = "weakpassword"
		weak.ConfirmPassword = "weakpassword"

		ctx := router.NewMockContext()
		ctx.On("Bind", mock.Anything).Run(bindPayload(weak)).Return(nil)

		var body fiber.Map
		ctx.On("JSON", fiber.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.RegistrationCreate(ctx))

		errs, ok := body["errors"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, errs, "password")
	})
}

func TestAuthController_RefreshToken(t *testing.T) {
	t.Run("missing cookie", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()
		ctx.CookiesM["refresh_token"] = ""

		var body fiber.Map
		ctx.On("JSON", fiber.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.RefreshToken(ctx))
		assert.Equal(t, "Refresh token not found", body["error"])
	})

	t.Run("invalid token clears the session", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()
		ctx.CookiesM["refresh_token"] = "garbage"
		ctx.On("Context").Return(context.Background())

		cleared := 0
		ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
			return c.Value == ""
		})).Run(func(mock.Arguments) { cleared++ }).Return()

		var body fiber.Map
		ctx.On("JSON", fiber.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.RefreshToken(ctx))
		assert.Equal(t, "Invalid refresh token", body["error"])
		assert.Equal(t, 2, cleared)
	})

	t.Run("valid token writes a new access cookie only", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		pair, _, err := controller.Auther.Login(context.Background(), "tester@example.com", "Str0ng!pass")
		require.NoError(t, err)

		ctx := router.NewMockContext()
		ctx.CookiesM["refresh_token"] = pair.RefreshToken
		ctx.On("Context").Return(context.Background())

		var written []*router.Cookie
		ctx.On("Cookie", mock.Anything).Run(func(args mock.Arguments) {
			written = append(written, args.Get(0).(*router.Cookie))
		}).Return()

		var body fiber.Map
		ctx.On("JSON", fiber.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.RefreshToken(ctx))
		assert.Equal(t, "Token refreshed", body["message"])

		require.Len(t, written, 1)
		assert.Equal(t, "access_token", written[0].Name)
		assert.NotEmpty(t, written[0].Value)
		assert.True(t, written[0].Expires.After(time.Now()))
	})
}

func TestAuthController_LogOut(t *testing.T) {
	t.Run("clears cookies even without a refresh token", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()
		ctx.CookiesM["refresh_token"] = ""
		ctx.On("Context").Return(context.Background())

		cleared := 0
		ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
			return c.Value == ""
		})).Run(func(mock.Arguments) { cleared++ }).Return()

		var body fiber.Map
		ctx.On("JSON", fiber.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.LogOut(ctx))
		assert.Equal(t, "Logout successful", body["message"])
		assert.Equal(t, 2, cleared)
	})

	t.Run("revokes the refresh token so it cannot be replayed", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		pair, _, err := controller.Auther.Login(context.Background(), "tester@example.com", "Str0ng!pass")
		require.NoError(t, err)

		ctx := router.NewMockContext()
		ctx.CookiesM["refresh_token"] = pair.RefreshToken
		ctx.On("Context").Return(context.Background())
		ctx.On("Cookie", mock.Anything).Return()
		ctx.On("JSON", fiber.StatusOK, mock.Anything).Return(nil).Once()

		require.NoError(t, controller.LogOut(ctx))

		_, _, err = controller.Auther.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrTokenRevoked)
	})
}

func TestAuthController_ProfileShow(t *testing.T) {
	t.Run("returns the profile for the authenticated user", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = &auth.JWTClaims{UserID: testUserID.String()}
		ctx.On("Context").Return(context.Background())

		var profile *auth.Profile
		ctx.On("JSON", fiber.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			profile = args.Get(1).(*auth.Profile)
		}).Return(nil).Once()

		require.NoError(t, controller.ProfileShow(ctx))

		require.NotNil(t, profile)
		assert.Equal(t, "tester", profile.Username)
		assert.Equal(t, "tester@example.com", profile.Email)
	})

	t.Run("missing claims yields 401", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()

		var body fiber.Map
		ctx.On("JSON", fiber.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.ProfileShow(ctx))
		assert.Equal(t, "Authentication required", body["error"])
	})
}

func strptr(s string) *string { return &s }

func TestAuthController_ProfileUpdate(t *testing.T) {
	authedCtx := func() *router.MockContext {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = &auth.JWTClaims{UserID: testUserID.String()}
		ctx.On("Context").Return(context.Background())
		return ctx
	}

	t.Run("partial update leaves untouched fields alone", func(t *testing.T) {
		users := newFakeUsers(t)
		controller := newTestController(t, users)

		ctx := authedCtx()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.ProfileUpdatePayload{FirstName: strptr("Renamed")})).
			Return(nil)

		var profile *auth.Profile
		ctx.On("JSON", fiber.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			profile = args.Get(1).(*auth.Profile)
		}).Return(nil).Once()

		require.NoError(t, controller.ProfileUpdate(ctx))

		require.NotNil(t, profile)
		assert.Equal(t, "Renamed", profile.FirstName)
		assert.Equal(t, "tester", profile.Username)
		assert.Equal(t, "tester@example.com", profile.Email)
	})

	t.Run("bio and picture round trip through the profile", func(t *testing.T) {
		users := newFakeUsers(t)
		controller := newTestController(t, users)

		ctx := authedCtx()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.ProfileUpdatePayload{
				Bio:            strptr("Reads mostly sci-fi."),
				ProfilePicture: strptr("https://cdn.example.com/avatars/tester.png"),
			})).
			Return(nil)

		var profile *auth.Profile
		ctx.On("JSON", fiber.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
			profile = args.Get(1).(*auth.Profile)
		}).Return(nil).Once()

		require.NoError(t, controller.ProfileUpdate(ctx))

		require.NotNil(t, profile)
		assert.Equal(t, "Reads mostly sci-fi.", profile.Bio)
		assert.Equal(t, "https://cdn.example.com/avatars/tester.png", profile.ProfilePicture)
		assert.Equal(t, "tester", profile.Username)
	})

	t.Run("malformed picture reference is rejected", func(t *testing.T) {
		users := newFakeUsers(t)
		controller := newTestController(t, users)

		ctx := authedCtx()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.ProfileUpdatePayload{ProfilePicture: strptr("not a url")})).
			Return(nil)

		var body fiber.Map
		ctx.On("JSON", fiber.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.ProfileUpdate(ctx))

		errs, ok := body["errors"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, errs, "profile_picture")
		assert.Nil(t, users.updated)
	})

	t.Run("taken username is a field error", func(t *testing.T) {
		users := newFakeUsers(t)
		users.usernameTaken = true
		controller := newTestController(t, users)

		ctx := authedCtx()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.ProfileUpdatePayload{Username: strptr("someone_else")})).
			Return(nil)

		var body fiber.Map
		ctx.On("JSON", fiber.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.ProfileUpdate(ctx))

		errs, ok := body["errors"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, errs["username"], "already exists")
		assert.Nil(t, users.updated)
	})

	t.Run("keeping your own username skips the availability check", func(t *testing.T) {
		users := newFakeUsers(t)
		users.usernameTaken = true
		controller := newTestController(t, users)

		ctx := authedCtx()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.ProfileUpdatePayload{Username: strptr("TESTER")})).
			Return(nil)

		ctx.On("JSON", fiber.StatusOK, mock.Anything).Return(nil).Once()

		require.NoError(t, controller.ProfileUpdate(ctx))
		require.NotNil(t, users.updated)
	})

	t.Run("bad username format is rejected before the store", func(t *testing.T) {
		users := newFakeUsers(t)
		controller := newTestController(t, users)

		ctx := authedCtx()
		ctx.On("Bind", mock.Anything).
			Run(bindPayload(auth.ProfileUpdatePayload{Username: strptr("-bad-name-")})).
			Return(nil)

		var body fiber.Map
		ctx.On("JSON", fiber.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
			body = args.Get(1).(fiber.Map)
		}).Return(nil).Once()

		require.NoError(t, controller.ProfileUpdate(ctx))

		errs, ok := body["errors"].(map[string]string)
		require.True(t, ok)
		assert.Contains(t, errs, "username")
		assert.Nil(t, users.updated)
	})

	t.Run("missing claims yields 401", func(t *testing.T) {
		controller := newTestController(t, newFakeUsers(t))

		ctx := router.NewMockContext()
		ctx.On("JSON", fiber.StatusUnauthorized, mock.Anything).Return(nil).Once()

		require.NoError(t, controller.ProfileUpdate(ctx))
	})
}

// trackerFake narrows fakeUsers to the UserTracker surface so we can
// run a real UserProvider over the in-memory records.
type trackerFake struct {
	users *fakeUsers
}

func (tf trackerFake) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	return tf.users.GetByIdentifier(ctx, identifier)
}

func (tf trackerFake) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	user.LoginAttempts++
	return nil
}

func (tf trackerFake) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	user.LoginAttempts = 0
	return nil
}

// TestAuthController_SessionLifecycle walks one account through the
// whole session flow: register, log in, refresh, log out, and confirm
// the revoked refresh token is no longer honored.
func TestAuthController_SessionLifecycle(t *testing.T) {
	users := &fakeUsers{byIdentifier: map[string]*auth.User{}}
	cfg := newTestConfig()

	provider := auth.NewUserProvider(trackerFake{users: users})
	controller := auth.NewAuthController(
		auth.WithControllerRepo(fakeRepoManager{users: users}),
		auth.WithControllerAuther(auth.NewAuthenticator(provider, cfg)),
		auth.WithControllerSession(auth.NewCookieSession(cfg)),
	)

	// register
	ctx := router.NewMockContext()
	ctx.On("Bind", mock.Anything).
		Run(bindPayload(auth.RegistrationCreatePayload{
			Username:        "alice",
			Email:           "alice@example.com",
			FirstName:       "Alice",
			LastName:        "Doe",
			Password:        "P@ssw0rd1",
			ConfirmPassword: "P@ssw0rd1",
		})).
		Return(nil)
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", fiber.StatusCreated, mock.Anything).Return(nil).Once()

	require.NoError(t, controller.RegistrationCreate(ctx))
	require.NotNil(t, users.created)

	// make the stored record findable the way a real repository would
	users.byIdentifier["alice@example.com"] = users.created
	users.byIdentifier["alice"] = users.created
	users.byIdentifier[strings.ToLower(users.created.ID.String())] = users.created

	// login
	ctx = router.NewMockContext()
	ctx.On("Bind", mock.Anything).
		Run(bindPayload(auth.LoginRequest{Email: "alice@example.com", Password: "P@ssw0rd1"})).
		Return(nil)
	ctx.On("Context").Return(context.Background())

	cookies := map[string]string{}
	ctx.On("Cookie", mock.Anything).Run(func(args mock.Arguments) {
		cookie := args.Get(0).(*router.Cookie)
		cookies[cookie.Name] = cookie.Value
	}).Return()

	var body fiber.Map
	ctx.On("JSON", fiber.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(fiber.Map)
	}).Return(nil).Once()

	require.NoError(t, controller.LoginPost(ctx))
	require.NotEmpty(t, cookies["access_token"])
	require.NotEmpty(t, cookies["refresh_token"])

	profile, ok := body["user"].(*auth.Profile)
	require.True(t, ok)
	assert.Equal(t, "alice", profile.Username)

	refreshToken := cookies["refresh_token"]

	// refresh mints a fresh access cookie only
	ctx = router.NewMockContext()
	ctx.CookiesM["refresh_token"] = refreshToken
	ctx.On("Context").Return(context.Background())

	var written []*router.Cookie
	ctx.On("Cookie", mock.Anything).Run(func(args mock.Arguments) {
		written = append(written, args.Get(0).(*router.Cookie))
	}).Return()
	ctx.On("JSON", fiber.StatusOK, mock.Anything).Return(nil).Once()

	require.NoError(t, controller.RefreshToken(ctx))
	require.Len(t, written, 1)
	assert.Equal(t, "access_token", written[0].Name)

	// logout revokes and clears
	ctx = router.NewMockContext()
	ctx.CookiesM["refresh_token"] = refreshToken
	ctx.On("Context").Return(context.Background())

	cleared := 0
	ctx.On("Cookie", mock.MatchedBy(func(c *router.Cookie) bool {
		return c.Value == ""
	})).Run(func(mock.Arguments) { cleared++ }).Return()
	ctx.On("JSON", fiber.StatusOK, mock.Anything).Return(nil).Once()

	require.NoError(t, controller.LogOut(ctx))
	assert.Equal(t, 2, cleared)

	// the revoked token is refused even though it has not expired
	ctx = router.NewMockContext()
	ctx.CookiesM["refresh_token"] = refreshToken
	ctx.On("Context").Return(context.Background())
	ctx.On("Cookie", mock.Anything).Return()

	ctx.On("JSON", fiber.StatusUnauthorized, mock.Anything).Run(func(args mock.Arguments) {
		body = args.Get(1).(fiber.Map)
	}).Return(nil).Once()

	require.NoError(t, controller.RefreshToken(ctx))
	assert.Equal(t, "Invalid refresh token", body["error"])
}
