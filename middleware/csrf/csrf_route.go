package csrf

import "github.com/goliatone/go-router"

// RouteConfig controls the token bootstrap endpoint. Single-page
// clients call it once before their first mutating request to learn
// the token plus the header and form field names to submit it under.
type RouteConfig struct {
	// Path is the route registered for retrieving the CSRF token.
	Path string
	// ContextKey is the context key where the middleware stored the token.
	ContextKey string
	// RouteName is the name assigned to the registered route.
	RouteName string
}

const (
	defaultRoutePath = "/csrf-token"
	defaultRouteName = "auth.csrf.get"
)

// RegisterRoutes mounts the token endpoint. The CSRF middleware must
// run before it so the request context already carries a minted token.
func RegisterRoutes[T any](app router.Router[T], cfg ...RouteConfig) {
	conf := RouteConfig{
		Path:       defaultRoutePath,
		ContextKey: DefaultContextKey,
		RouteName:  defaultRouteName,
	}
	if len(cfg) > 0 {
		if cfg[0].Path != "" {
			conf.Path = cfg[0].Path
		}
		if cfg[0].ContextKey != "" {
			conf.ContextKey = cfg[0].ContextKey
		}
		if cfg[0].RouteName != "" {
			conf.RouteName = cfg[0].RouteName
		}
	}

	app.Get(conf.Path, tokenHandler(conf)).SetName(conf.RouteName)
}

func tokenHandler(cfg RouteConfig) router.HandlerFunc {
	return func(ctx router.Context) error {
		token, _ := ctx.Locals(cfg.ContextKey).(string)
		if token == "" {
			return ctx.JSON(router.StatusUnauthorized, map[string]string{
				"error": ErrTokenMissing.Error(),
			})
		}

		// tokens are per-request and short-lived, keep them out of caches
		ctx.SetHeader("Cache-Control", "no-store, max-age=0")
		ctx.SetHeader("Pragma", "no-cache")
		ctx.SetHeader("Expires", "0")

		body := map[string]any{
			"token":       token,
			"field_name":  localString(ctx, cfg.ContextKey+"_field", DefaultFormFieldName),
			"header_name": localString(ctx, cfg.ContextKey+"_header", DefaultHeaderName),
		}
		if ttl, ok := ctx.Locals(cfg.ContextKey + "_ttl").(int); ok && ttl > 0 {
			body["expires_in"] = ttl
		}

		return ctx.JSON(router.StatusOK, body)
	}
}

func localString(ctx router.Context, key, fallback string) string {
	if v, ok := ctx.Locals(key).(string); ok && v != "" {
		return v
	}
	return fallback
}
