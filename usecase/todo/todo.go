// Package todo implements the attachment lifecycle coordinator: it sequences
// record mutations around the uploads and deletions of their remote
// attachments.
package todo

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/upload"
	"github.com/tasknest/backend/repository"
	"github.com/tasknest/backend/usecase"
)

// CreateInput carries the fields and raw multipart parts of a create request.
type CreateInput struct {
	Text      string
	DueDate   *time.Time
	Completed bool
	Parts     []domain.Part
}

// UpdateInput carries optional field changes; nil means "leave unchanged".
type UpdateInput struct {
	Text      *string
	DueDate   *time.Time
	Completed *bool
	Parts     []domain.Part
}

type UseCase struct {
	todos     repository.TodoRepository
	storage   usecase.ObjectStorage
	validator *upload.Validator
	cache     repository.ListCache
	logger    *zap.Logger
}

func New(todos repository.TodoRepository, storage usecase.ObjectStorage, validator *upload.Validator, cache repository.ListCache, logger *zap.Logger) *UseCase {
	if validator == nil {
		validator = upload.NewValidator(upload.Limits{})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:     todos,
		storage:   storage,
		validator: validator,
		cache:     cache,
		logger:    logger,
	}
}

// List returns every record, newest first, consulting the list cache first.
func (uc *UseCase) List(ctx context.Context) ([]domain.Todo, error) {
	if uc.cache != nil {
		if todos, ok := uc.cache.Get(ctx); ok {
			return todos, nil
		}
	}

	todos, err := uc.todos.List(ctx)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, todos)
	}
	return todos, nil
}

// Create validates the submission, uploads any accepted attachments and
// persists the record last. Either upload failing fails the whole creation;
// no row with a dangling locator is ever written.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*domain.Todo, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.ErrTextRequired
	}

	sub, err := uc.validator.Validate(in.Parts)
	if err != nil {
		return nil, err
	}

	todo := &domain.Todo{
		Text:      text,
		DueDate:   in.DueDate,
		Completed: in.Completed,
	}

	if err := uc.attach(ctx, todo, sub, nil); err != nil {
		return nil, err
	}

	created, err := uc.todos.Create(ctx, todo)
	if err != nil {
		return nil, err
	}
	uc.invalidateList(ctx)
	return created, nil
}

// Update loads the record, applies supplied scalar changes and replaces
// attachments for which a new part arrived. The row is persisted exactly
// once, after every requested upload succeeded.
func (uc *UseCase) Update(ctx context.Context, id string, in UpdateInput) (*domain.Todo, error) {
	sub, err := uc.validator.Validate(in.Parts)
	if err != nil {
		return nil, err
	}

	todo, err := uc.todos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" {
			return nil, domain.ErrTextRequired
		}
		todo.Text = text
	}
	if in.DueDate != nil {
		todo.DueDate = in.DueDate
	}
	if in.Completed != nil {
		todo.Completed = *in.Completed
	}

	old := *todo
	if err := uc.attach(ctx, todo, sub, &old); err != nil {
		return nil, err
	}

	if err := uc.todos.Update(ctx, todo); err != nil {
		return nil, err
	}
	uc.invalidateList(ctx)
	return todo, nil
}

// Delete removes the record after issuing advisory deletions for both
// locators. Row removal is unconditional once the record was found; failed
// storage deletions never block it.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	todo, err := uc.todos.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if todo.ImageURL != "" {
		uc.storage.Delete(ctx, todo.ImageURL)
	}
	if todo.PDFURL != "" {
		uc.storage.Delete(ctx, todo.PDFURL)
	}

	if err := uc.todos.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidateList(ctx)
	return nil
}

// attach runs the image and pdf paths independently, in parallel. For a
// replacement (prev != nil) the superseded object is deleted before the new
// upload, matching the locator invariant: the persisted row only ever points
// at the newest successful upload.
//
// Known gap: if one path succeeds and the other fails, the successful
// upload's object is left orphaned remotely. Accepted; nothing references it
// and the row is never written.
func (uc *UseCase) attach(ctx context.Context, todo *domain.Todo, sub upload.Submission, prev *domain.Todo) error {
	var g errgroup.Group

	if sub.Image != nil {
		part := sub.Image
		g.Go(func() error {
			if prev != nil && prev.ImageURL != "" {
				uc.storage.Delete(ctx, prev.ImageURL)
			}
			locator, err := uc.storage.Upload(ctx, part.Data, part.ContentType, part.Kind())
			if err != nil {
				return err
			}
			todo.ImageURL = locator
			return nil
		})
	}

	if sub.PDF != nil {
		part := sub.PDF
		g.Go(func() error {
			if prev != nil && prev.PDFURL != "" {
				uc.storage.Delete(ctx, prev.PDFURL)
			}
			locator, err := uc.storage.Upload(ctx, part.Data, part.ContentType, part.Kind())
			if err != nil {
				return err
			}
			todo.PDFURL = locator
			return nil
		})
	}

	return g.Wait()
}

func (uc *UseCase) invalidateList(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	uc.cache.Invalidate(ctx)
}
