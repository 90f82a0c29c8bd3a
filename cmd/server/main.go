package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/amalnian/Book-Management"
	"github.com/amalnian/Book-Management/catalog"
	"github.com/amalnian/Book-Management/config"
	"github.com/amalnian/Book-Management/database"
	"github.com/amalnian/Book-Management/middleware/authware"
	"github.com/amalnian/Book-Management/middleware/csrf"
)

type App struct {
	config  *config.Config
	bunDB   *bun.DB
	repo    auth.RepositoryManager
	auther  *auth.Auther
	session *auth.CookieSession
	srv     router.Server[*fiber.App]
	logger  *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("app"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(goerrors.ToSlogAttributes),
	)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}

	cfg := config.Load(configPath)

	fmt.Println("============")
	fmt.Println(print.MaybeHighlightJSON(cfg))
	fmt.Println("============")

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithAuth(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.config.Server.Address)

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := database.Connect(app.config.DB.DSN)
	if err != nil {
		return err
	}

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	app.bunDB = db
	app.repo = auth.NewRepositoryManager(db)

	return app.repo.Validate()
}

type userTrackerAdapter struct {
	users auth.Users
}

func (a userTrackerAdapter) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	return a.users.GetByIdentifier(ctx, identifier)
}

func (a userTrackerAdapter) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	return a.users.TrackAttemptedLogin(ctx, user)
}

func (a userTrackerAdapter) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	return a.users.TrackSuccessfulLogin(ctx, user)
}

func WithAuth(ctx context.Context, app *App) error {
	cfg := app.config

	userProvider := auth.NewUserProvider(userTrackerAdapter{users: app.repo.Users()})
	userProvider.WithLogger(app.GetLogger("auth:prv"))

	auther := auth.NewAuthenticator(userProvider, cfg)
	auther.WithLogger(app.GetLogger("auth:authz"))
	auther.WithRevocationLedger(buildLedger(ctx, app))

	app.auther = auther
	app.session = auth.NewCookieSession(cfg)

	return nil
}

// buildLedger prefers redis so revocations survive restarts and are
// shared between instances; without an address it falls back to the in
// process ledger.
func buildLedger(ctx context.Context, app *App) auth.RevocationLedger {
	addr := app.config.Redis.Address
	if addr == "" {
		app.GetLogger("auth:ledger").Warn("no redis address configured, using in-memory revocation ledger")
		return auth.NewMemoryLedger()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: app.config.Redis.Password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		app.GetLogger("auth:ledger").Error("redis unreachable, using in-memory revocation ledger", "error", err)
		return auth.NewMemoryLedger()
	}

	return auth.NewRedisLedger(client)
}

func WithHTTPServer(ctx context.Context, app *App) error {
	cfg := app.config

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	csrfKey := cfg.Auth.CSRFKey
	if csrfKey == "" {
		csrfKey = cfg.Auth.SigningKey
	}
	key := sha256.Sum256([]byte(csrfKey))
	// mounted ahead of the auth gate, so tokens are bound to the client
	// IP rather than the user id; anonymous flows (login, register) need
	// protection too
	srv.Router().Use(csrf.New(csrf.Config{
		SecureKey: key[:],
	}))

	csrf.RegisterRoutes(srv.Router(), csrf.RouteConfig{Path: "/csrf-token"})

	protected := authware.New(authware.Config{
		ContextKey:  cfg.GetContextKey(),
		TokenLookup: cfg.GetTokenLookup(),
		AuthScheme:  cfg.GetAuthScheme(),
		TokenValidator: authware.TokenValidatorFunc(func(raw string) (authware.AuthClaims, error) {
			claims, err := app.auther.TokenService().Validate(raw, auth.TokenUseAccess)
			if err != nil {
				return nil, err
			}
			return claims, nil
		}),
		ContextEnricher: func(c context.Context, claims authware.AuthClaims) context.Context {
			if jc, ok := claims.(*auth.JWTClaims); ok {
				return auth.WithClaimsContext(c, jc)
			}
			return c
		},
	})

	auth.RegisterAuthRoutes(srv.Router(),
		auth.WithControllerRepo(app.repo),
		auth.WithControllerAuther(app.auther),
		auth.WithControllerSession(app.session),
		auth.WithControllerLogger(app.GetLogger("auth:ctrl")),
		auth.WithControllerProtect(protected),
		auth.WithControllerContextKey(cfg.GetContextKey()),
	)

	CatalogRoutes(app, srv, protected)

	app.srv = srv

	return nil
}

func CatalogRoutes(app *App, srv router.Server[*fiber.App], protected router.MiddlewareFunc) {
	booksRepo := catalog.NewBooksRepository(app.bunDB)
	listsRepo := catalog.NewReadingListsRepository(app.bunDB)

	books := catalog.NewBooksController(booksRepo,
		catalog.WithBooksLogger(app.GetLogger("catalog:books")),
		catalog.WithBooksContextKey(app.config.GetContextKey()),
	)

	lists := catalog.NewReadingListsController(listsRepo, booksRepo,
		catalog.WithReadingListsLogger(app.GetLogger("catalog:lists")),
		catalog.WithReadingListsContextKey(app.config.GetContextKey()),
	)

	group := srv.Router().Group("/")
	group.Use(protected)
	books.RegisterRoutes(group)
	lists.RegisterRoutes(group)
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
