package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func run(t *testing.T, origins []string, method, origin string) (*fasthttp.RequestCtx, bool) {
	t.Helper()

	called := false
	handler := CORS(origins, nil)(func(ctx *fasthttp.RequestCtx) {
		called = true
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	if origin != "" {
		ctx.Request.Header.Set("Origin", origin)
	}
	handler(ctx)
	return ctx, called
}

func TestCORS_AllowedOrigin(t *testing.T) {
	ctx, called := run(t, []string{"https://app.example.com"}, fasthttp.MethodGet, "https://app.example.com")

	assert.True(t, called)
	assert.Equal(t, "https://app.example.com", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
	assert.Equal(t, "true", string(ctx.Response.Header.Peek("Access-Control-Allow-Credentials")))
}

func TestCORS_Wildcard(t *testing.T) {
	ctx, called := run(t, []string{"*"}, fasthttp.MethodGet, "https://anywhere.example.com")

	assert.True(t, called)
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}

func TestCORS_BlockedOriginStillServes(t *testing.T) {
	ctx, called := run(t, []string{"https://app.example.com"}, fasthttp.MethodGet, "https://evil.example.com")

	assert.True(t, called, "the browser enforces CORS; the server only withholds headers")
	assert.Empty(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}

func TestCORS_Preflight(t *testing.T) {
	ctx, called := run(t, []string{"*"}, fasthttp.MethodOptions, "https://app.example.com")

	assert.False(t, called, "preflight never reaches the handler")
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Methods")), "PUT")
}

func TestCORS_NoOriginHeader(t *testing.T) {
	ctx, called := run(t, []string{"https://app.example.com"}, fasthttp.MethodGet, "")

	assert.True(t, called)
	assert.Empty(t, string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}
