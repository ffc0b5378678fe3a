package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tasknest/backend/api/handler"
)

type Handlers struct {
	Todo   *apiHandler.TodoHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, cors func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/todos", cors(handlers.Todo.GetTodos))
	r.POST("/todos", cors(handlers.Todo.CreateTodo))
	r.PUT("/todos/{id}", cors(handlers.Todo.UpdateTodo))
	r.DELETE("/todos/{id}", cors(handlers.Todo.DeleteTodo))

	// Preflight for the collection and item routes.
	r.OPTIONS("/todos", cors(noop))
	r.OPTIONS("/todos/{id}", cors(noop))

	return r
}

func noop(*fasthttp.RequestCtx) {}
