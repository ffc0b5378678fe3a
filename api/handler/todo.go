package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/pkg/httpcontext"
	todoUC "github.com/tasknest/backend/usecase/todo"
)

type TodoHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

func NewTodoHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List todos
// @Tags todos
// @Router /todos [get]
func (h *TodoHandler) GetTodos(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todos, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	h.respondSuccess(ctx, http.StatusOK, todos)
}

// @Summary Create todo with optional attachments
// @Tags todos
// @Router /todos [post]
func (h *TodoHandler) CreateTodo(ctx *fasthttp.RequestCtx) {
	form, err := transport.ParseTodoForm(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	in := todoUC.CreateInput{
		DueDate: form.DueDate,
		Parts:   form.Parts,
	}
	if form.Text != nil {
		in.Text = *form.Text
	}
	if form.Completed != nil {
		in.Completed = *form.Completed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update todo, optionally replacing attachments
// @Tags todos
// @Router /todos/{id} [put]
func (h *TodoHandler) UpdateTodo(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing todo id", nil))
		return
	}

	form, err := transport.ParseTodoForm(ctx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	in := todoUC.UpdateInput{
		Text:      form.Text,
		DueDate:   form.DueDate,
		Completed: form.Completed,
		Parts:     form.Parts,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, id, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete todo and its attachments
// @Tags todos
// @Router /todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing todo id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.NewMessage("deleted"))
}
