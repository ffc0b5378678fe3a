package todo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/upload"
	"github.com/tasknest/backend/repository"
)

type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]domain.Todo

	creates int
	updates int
}

func newFakeRepo(seed ...domain.Todo) *fakeRepo {
	r := &fakeRepo{byID: make(map[string]domain.Todo)}
	for _, t := range seed {
		r.byID[t.ID] = t
	}
	return r
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTodoNotFound
	}
	out := todo
	return &out, nil
}

func (r *fakeRepo) List(_ context.Context) ([]domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var todos []domain.Todo
	for _, t := range r.byID {
		todos = append(todos, t)
	}
	sort.Slice(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

func (r *fakeRepo) Create(_ context.Context, todo *domain.Todo) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}
	todo.CreatedAt = time.Now()
	todo.UpdatedAt = todo.CreatedAt
	r.byID[todo.ID] = *todo
	r.creates++
	return todo, nil
}

func (r *fakeRepo) Update(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[todo.ID]; !ok {
		return domain.ErrTodoNotFound
	}
	todo.UpdatedAt = time.Now()
	r.byID[todo.ID] = *todo
	r.updates++
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrTodoNotFound
	}
	delete(r.byID, id)
	return nil
}

var _ repository.TodoRepository = (*fakeRepo)(nil)

// fakeStorage records the sequence of gateway calls per attachment kind.
type fakeStorage struct {
	mu       sync.Mutex
	events   []string
	uploads  int
	failKind domain.Kind
}

func (s *fakeStorage) Upload(_ context.Context, data []byte, contentType string, kind domain.Kind) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failKind != "" && kind == s.failKind {
		s.events = append(s.events, "fail:"+string(kind))
		return "", domain.NewError(domain.ErrCodeUploadFailed, "remote store rejected the stream")
	}
	s.uploads++
	locator := fmt.Sprintf("http://store.local/attachments/todos/%s-%d", kind, s.uploads)
	s.events = append(s.events, "upload:"+string(kind))
	return locator, nil
}

func (s *fakeStorage) Delete(_ context.Context, locator string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "delete:"+locator)
}

func (s *fakeStorage) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

type fakeCache struct {
	mu          sync.Mutex
	cached      []domain.Todo
	valid       bool
	invalidated int
}

func (c *fakeCache) Get(_ context.Context) ([]domain.Todo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached, c.valid
}

func (c *fakeCache) Set(_ context.Context, todos []domain.Todo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = todos
	c.valid = true
}

func (c *fakeCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.invalidated++
}

func newUseCase(repo *fakeRepo, storage *fakeStorage, cache *fakeCache) *UseCase {
	v := upload.NewValidator(upload.Limits{})
	var listCache repository.ListCache
	if cache != nil {
		listCache = cache
	}
	return New(repo, storage, v, listCache, nil)
}

func imagePart(size int) domain.Part {
	return domain.Part{Field: domain.FieldImage, ContentType: "image/png", Data: make([]byte, size)}
}

func pdfPart(size int) domain.Part {
	return domain.Part{Field: domain.FieldPDF, ContentType: "application/pdf", Data: make([]byte, size)}
}

func TestCreate_NoAttachments(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	created, err := uc.Create(context.Background(), CreateInput{Text: "Buy milk"})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Buy milk", created.Text)
	assert.False(t, created.Completed)
	assert.Empty(t, created.ImageURL)
	assert.Empty(t, created.PDFURL)
	assert.Empty(t, storage.calls())
}

func TestCreate_TrimsAndRequiresText(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	_, err := uc.Create(context.Background(), CreateInput{Text: "   ", Parts: []domain.Part{imagePart(64)}})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Zero(t, repo.creates)
	assert.Empty(t, storage.calls(), "validation failures must precede any remote call")
}

func TestCreate_WithImage(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	created, err := uc.Create(context.Background(), CreateInput{
		Text:  "Buy milk",
		Parts: []domain.Part{imagePart(1024)},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ImageURL)
	assert.Empty(t, created.PDFURL)
	assert.Equal(t, []string{"upload:image"}, storage.calls())
}

func TestCreate_BadImageMIME(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	_, err := uc.Create(context.Background(), CreateInput{
		Text:  "Buy milk",
		Parts: []domain.Part{{Field: domain.FieldImage, ContentType: "application/zip", Data: []byte{0x1}}},
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnsupportedMedia))
	assert.Zero(t, repo.creates)
	assert.Empty(t, storage.calls())
}

func TestCreate_UploadFailureWritesNoRecord(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{failKind: domain.KindImage}
	uc := newUseCase(repo, storage, nil)

	_, err := uc.Create(context.Background(), CreateInput{
		Text:  "Buy milk",
		Parts: []domain.Part{imagePart(64)},
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUploadFailed))
	assert.Zero(t, repo.creates)
}

func TestCreate_PartialUploadFailureWritesNoRecord(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{failKind: domain.KindRaw}
	uc := newUseCase(repo, storage, nil)

	_, err := uc.Create(context.Background(), CreateInput{
		Text:  "Buy milk",
		Parts: []domain.Part{imagePart(64), pdfPart(64)},
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUploadFailed))
	assert.Zero(t, repo.creates, "one failed upload fails the whole creation")
}

func TestUpdate_ReplacesImage(t *testing.T) {
	existing := domain.Todo{
		ID:       "t1",
		Text:     "Buy milk",
		ImageURL: "http://store.local/attachments/todos/old-image",
	}
	repo := newFakeRepo(existing)
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	updated, err := uc.Update(context.Background(), "t1", UpdateInput{
		Parts: []domain.Part{imagePart(128)},
	})
	require.NoError(t, err)

	assert.NotEqual(t, existing.ImageURL, updated.ImageURL)
	require.Equal(t, []string{"delete:" + existing.ImageURL, "upload:image"}, storage.calls(),
		"the superseded object is deleted before the new upload")
	assert.Equal(t, 1, repo.updates)
}

func TestUpdate_ScalarFieldsOnly(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := newFakeRepo(domain.Todo{ID: "t1", Text: "Buy milk"})
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	completed := true
	text := "Buy oat milk"
	updated, err := uc.Update(context.Background(), "t1", UpdateInput{
		Text:      &text,
		DueDate:   &due,
		Completed: &completed,
	})
	require.NoError(t, err)

	assert.Equal(t, "Buy oat milk", updated.Text)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))
	assert.Empty(t, storage.calls())
}

func TestUpdate_EmptyPDFRejectedBeforeAnySideEffect(t *testing.T) {
	existing := domain.Todo{ID: "t1", Text: "Buy milk", PDFURL: "http://store.local/attachments/todos/old-pdf"}
	repo := newFakeRepo(existing)
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	_, err := uc.Update(context.Background(), "t1", UpdateInput{
		Parts: []domain.Part{pdfPart(0)},
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeEmptyPayload))
	assert.Empty(t, storage.calls())

	kept, err := repo.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, existing.PDFURL, kept.PDFURL, "original locator unchanged")
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	_, err := uc.Update(context.Background(), "missing", UpdateInput{})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.Empty(t, storage.calls())
}

func TestUpdate_UploadFailureLeavesRecordUntouched(t *testing.T) {
	existing := domain.Todo{ID: "t1", Text: "Buy milk", PDFURL: "http://store.local/attachments/todos/old-pdf"}
	repo := newFakeRepo(existing)
	storage := &fakeStorage{failKind: domain.KindRaw}
	uc := newUseCase(repo, storage, nil)

	_, err := uc.Update(context.Background(), "t1", UpdateInput{
		Parts: []domain.Part{pdfPart(64)},
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUploadFailed))
	assert.Zero(t, repo.updates, "the row is persisted once, after all uploads succeed, or not at all")

	kept, err := repo.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, existing.PDFURL, kept.PDFURL)
}

func TestDelete_IssuesAdvisoryDeletesThenRemovesRow(t *testing.T) {
	existing := domain.Todo{
		ID:       "t1",
		Text:     "Buy milk",
		ImageURL: "http://store.local/attachments/todos/img",
		PDFURL:   "http://store.local/attachments/todos/doc",
	}
	repo := newFakeRepo(existing)
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	require.NoError(t, uc.Delete(context.Background(), "t1"))

	assert.ElementsMatch(t, []string{
		"delete:" + existing.ImageURL,
		"delete:" + existing.PDFURL,
	}, storage.calls())

	_, err := repo.GetByID(context.Background(), "t1")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestDelete_NotFoundMakesNoGatewayCalls(t *testing.T) {
	repo := newFakeRepo()
	storage := &fakeStorage{}
	uc := newUseCase(repo, storage, nil)

	err := uc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.Empty(t, storage.calls())
}

func TestList_CacheHit(t *testing.T) {
	repo := newFakeRepo(domain.Todo{ID: "db", Text: "from db"})
	storage := &fakeStorage{}
	cache := &fakeCache{cached: []domain.Todo{{ID: "cached", Text: "from cache"}}, valid: true}
	uc := newUseCase(repo, storage, cache)

	todos, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.Equal(t, "cached", todos[0].ID)
}

func TestList_CacheMissFillsCache(t *testing.T) {
	repo := newFakeRepo(domain.Todo{ID: "db", Text: "from db"})
	storage := &fakeStorage{}
	cache := &fakeCache{}
	uc := newUseCase(repo, storage, cache)

	todos, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 1)
	assert.True(t, cache.valid, "listing is cached after a miss")
}

func TestMutations_InvalidateListCache(t *testing.T) {
	repo := newFakeRepo(domain.Todo{ID: "t1", Text: "Buy milk"})
	storage := &fakeStorage{}
	cache := &fakeCache{valid: true}
	uc := newUseCase(repo, storage, cache)

	_, err := uc.Create(context.Background(), CreateInput{Text: "new"})
	require.NoError(t, err)
	require.NoError(t, uc.Delete(context.Background(), "t1"))

	assert.Equal(t, 2, cache.invalidated)
}
