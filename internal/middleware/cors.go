package middleware

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders = "Content-Type, Authorization"
)

// CORS decorates a handler with cross-origin headers and answers preflight
// requests. Origins outside the allow list get no CORS headers; the browser
// enforces the rest.
func CORS(allowedOrigins []string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	allowed := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek("Origin"))

			switch {
			case origin == "":
				// non-browser client, nothing to negotiate
			case wildcard:
				ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
			default:
				if _, ok := allowed[origin]; ok {
					ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
					ctx.Response.Header.Set("Access-Control-Allow-Credentials", "true")
					ctx.Response.Header.Set("Vary", "Origin")
				} else {
					logger.Warn("blocked cross-origin request", zap.String("origin", origin))
				}
			}

			if origin != "" {
				ctx.Response.Header.Set("Access-Control-Allow-Methods", allowMethods)
				ctx.Response.Header.Set("Access-Control-Allow-Headers", allowHeaders)
			}

			if string(ctx.Method()) == fasthttp.MethodOptions {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}

			next(ctx)
		}
	}
}
