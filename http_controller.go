package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RegisterAuthRoutes mounts the auth endpoints on the given router.
// Routes that need an authenticated caller use the controller's Protect
// middleware when one is configured.
func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		SetName("auth.register")

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")

	app.Post(controller.Routes.TokenRefresh, controller.RefreshToken).
		SetName("auth.token-refresh")

	if controller.Protect != nil {
		app.Post(controller.Routes.Logout, controller.LogOut, controller.Protect).
			SetName("auth.logout")
		app.Get(controller.Routes.Profile, controller.ProfileShow, controller.Protect).
			SetName("auth.profile.get")
		app.Put(controller.Routes.Profile, controller.ProfileUpdate, controller.Protect).
			SetName("auth.profile.put")
	} else {
		app.Post(controller.Routes.Logout, controller.LogOut).SetName("auth.logout")
		app.Get(controller.Routes.Profile, controller.ProfileShow).SetName("auth.profile.get")
		app.Put(controller.Routes.Profile, controller.ProfileUpdate).SetName("auth.profile.put")
	}
}

type AuthControllerRoutes struct {
	Register     string
	Login        string
	Logout       string
	TokenRefresh string
	Profile      string
}

type AuthController struct {
	Debug      bool
	Logger     Logger
	Repo       RepositoryManager
	Routes     *AuthControllerRoutes
	Auther     Authenticator
	Session    *CookieSession
	Protect    router.MiddlewareFunc
	ContextKey string
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: "user",
		Routes: &AuthControllerRoutes{
			Register:     "/register",
			Login:        "/login",
			Logout:       "/logout",
			TokenRefresh: "/token/refresh",
			Profile:      "/profile",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Session == nil {
		panic("Missing CookieSession in auth controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerSession(session *CookieSession) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Session = session
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerProtect(mw router.MiddlewareFunc) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Protect = mw
		return c
	}
}

func WithControllerContextKey(key string) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.ContextKey = key
		return c
	}
}

// RegistrationCreatePayload is the register request body
type RegistrationCreatePayload struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required,
			validation.Length(3, 100),
			validation.By(ValidateUsernameFormat),
		),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 254), is.Email),
		validation.Field(&r.FirstName, validation.Length(0, 30)),
		validation.Field(&r.LastName, validation.Length(0, 150)),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(8, 128),
			validation.By(ValidatePasswordStrength),
		),
		validation.Field(&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, fiber.Map{
			"errors": map[string]string{"body": "Failed to parse request body"},
		})
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, fiber.Map{
			"errors": FormatValidationErrorToMap(err),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ===")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	var user *User
	req := RegisterUserMessage{
		Username:  payload.Username,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Password:  payload.Password,
		OnResponse: func(u *User) {
			user = u
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error: ", "error", err)
		return a.registrationError(ctx, err)
	}

	return ctx.JSON(fiber.StatusCreated, fiber.Map{
		"message": "User registered successfully",
		"user":    user.Profile(),
	})
}

// registrationError maps handler errors to responses. Uniqueness and
// validation failures come back as field errors, anything else is a
// generic 500.
func (a *AuthController) registrationError(ctx router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		switch richErr.Category {
		case goerrors.CategoryValidation, goerrors.CategoryConflict:
			field := "detail"
			if f, ok := richErr.Metadata["field"].(string); ok {
				field = f
			}
			return ctx.JSON(fiber.StatusBadRequest, fiber.Map{
				"errors": map[string]string{field: richErr.Message},
			})
		}
	}

	return ctx.JSON(fiber.StatusInternalServerError, fiber.Map{
		"error": "Registration failed",
	})
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Email
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, fiber.Map{
			"errors": map[string]string{"body": "Failed to parse request body"},
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, fiber.Map{
			"errors": FormatValidationErrorToMap(err),
		})
	}

	pair, identity, err := a.Auther.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		if goerrors.Is(err, ErrTooManyLoginAttempts) {
			return ctx.JSON(fiber.StatusUnauthorized, fiber.Map{
				"error": "Too many login attempts",
			})
		}
		// same body for unknown email and wrong password
		return ctx.JSON(fiber.StatusUnauthorized, fiber.Map{
			"error": "Invalid credentials",
		})
	}

	a.Session.WriteSessionCookies(ctx, pair)

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), identity.ID())
	if err != nil {
		a.Logger.Error("login profile lookup: ", "error", err)
		return ctx.JSON(fiber.StatusInternalServerError, fiber.Map{
			"error": "Login failed",
		})
	}

	return ctx.JSON(fiber.StatusOK, fiber.Map{
		"message": "Login successful",
		"user":    user.Profile(),
	})
}

// LogOut revokes the current refresh token and clears both cookies. It
// reports success even when the token was already gone.
func (a *AuthController) LogOut(ctx router.Context) error {
	raw := a.Session.RefreshTokenFromContext(ctx)
	a.Auther.Logout(ctx.Context(), raw)
	a.Session.ClearSessionCookies(ctx)

	return ctx.JSON(fiber.StatusOK, fiber.Map{
		"message": "Logout successful",
	})
}

func (a *AuthController) RefreshToken(ctx router.Context) error {
	raw := a.Session.RefreshTokenFromContext(ctx)
	if raw == "" {
		return ctx.JSON(fiber.StatusUnauthorized, fiber.Map{
			"error": "Refresh token not found",
		})
	}

	token, expiresAt, err := a.Auther.Refresh(ctx.Context(), raw)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryAuth {
			// the session is unrecoverable, make the client start over
			a.Session.ClearSessionCookies(ctx)
			return ctx.JSON(fiber.StatusUnauthorized, fiber.Map{
				"error": "Invalid refresh token",
			})
		}

		a.Logger.Error("token refresh error: ", "error", err)
		return ctx.JSON(fiber.StatusUnauthorized, fiber.Map{
			"error": "Token refresh failed",
		})
	}

	a.Session.WriteAccessCookie(ctx, token, expiresAt)

	return ctx.JSON(fiber.StatusOK, fiber.Map{
		"message": "Token refreshed",
	})
}

func (a *AuthController) ProfileShow(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return ctx.JSON(fiber.StatusUnauthorized, fiber.Map{
			"error": "Authentication required",
		})
	}

	user, err := a.Repo.Users().GetByID(ctx.Context(), claims.UserID)
	if err != nil {
		a.Logger.Error("profile lookup: ", "error", err)
		return ctx.JSON(fiber.StatusInternalServerError, fiber.Map{
			"error": "Something went wrong",
		})
	}

	return ctx.JSON(fiber.StatusOK, user.Profile())
}

// ProfileUpdatePayload carries a partial profile update. Email is not a
// field here: it cannot be changed after registration.
type ProfileUpdatePayload struct {
	Username       *string `form:"username" json:"username"`
	FirstName      *string `form:"first_name" json:"first_name"`
	LastName       *string `form:"last_name" json:"last_name"`
	Bio            *string `form:"bio" json:"bio"`
	ProfilePicture *string `form:"profile_picture" json:"profile_picture"`
}

// Validate will validate the payload
func (r ProfileUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Length(3, 100),
			validation.By(validateOptionalUsername),
		),
		validation.Field(&r.FirstName, validation.Length(0, 30)),
		validation.Field(&r.LastName, validation.Length(0, 150)),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
		validation.Field(&r.ProfilePicture, is.URL),
	)
}

func validateOptionalUsername(value any) error {
	s, ok := value.(*string)
	if !ok || s == nil {
		return nil
	}
	return ValidateUsernameFormat(*s)
}

func (a *AuthController) ProfileUpdate(ctx router.Context) error {
	claims, ok := GetRouterClaims(ctx, a.ContextKey)
	if !ok {
		return ctx.JSON(fiber.StatusUnauthorized, fiber.Map{
			"error": "Authentication required",
		})
	}

	payload := new(ProfileUpdatePayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("profile update parse payload: ", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, fiber.Map{
			"errors": map[string]string{"body": "Failed to parse request body"},
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, fiber.Map{
			"errors": FormatValidationErrorToMap(err),
		})
	}

	var user *User
	req := UpdateProfileMessage{
		UserID:         claims.UserID,
		Username:       payload.Username,
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		Bio:            payload.Bio,
		ProfilePicture: payload.ProfilePicture,
		OnResponse: func(u *User) {
			user = u
		},
	}

	updateProfile := NewUpdateProfileHandler(a.Repo)
	if err := updateProfile.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("profile update error: ", "error", err)

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
			field := "detail"
			if f, ok := richErr.Metadata["field"].(string); ok {
				field = f
			}
			return ctx.JSON(fiber.StatusBadRequest, fiber.Map{
				"errors": map[string]string{field: richErr.Message},
			})
		}

		return ctx.JSON(fiber.StatusInternalServerError, fiber.Map{
			"error": "Something went wrong",
		})
	}

	return ctx.JSON(fiber.StatusOK, user.Profile())
}
