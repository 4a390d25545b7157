package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shaiso/todos/internal/domain"
	"github.com/shaiso/todos/internal/mq"
	"github.com/shaiso/todos/internal/repo"
)

// --- Test doubles ---

// mockStore — TodoStore с подменяемым поведением каждого метода.
// Не заданный метод возвращает errNotMocked.
type mockStore struct {
	getAll     func(ctx context.Context) ([]domain.Todo, error)
	findByID   func(ctx context.Context, id int64) (*domain.Todo, error)
	add        func(ctx context.Context, todo domain.Todo) (*domain.Todo, error)
	update     func(ctx context.Context, id int64, todo domain.Todo) (*domain.Todo, error)
	deleteByID func(ctx context.Context, id int64) error
	deleteAll  func(ctx context.Context) (int64, error)
}

var errNotMocked = errors.New("not mocked")

func (m *mockStore) GetAll(ctx context.Context) ([]domain.Todo, error) {
	if m.getAll == nil {
		return nil, errNotMocked
	}
	return m.getAll(ctx)
}

func (m *mockStore) FindByID(ctx context.Context, id int64) (*domain.Todo, error) {
	if m.findByID == nil {
		return nil, errNotMocked
	}
	return m.findByID(ctx, id)
}

func (m *mockStore) Add(ctx context.Context, todo domain.Todo) (*domain.Todo, error) {
	if m.add == nil {
		return nil, errNotMocked
	}
	return m.add(ctx, todo)
}

func (m *mockStore) Update(ctx context.Context, id int64, todo domain.Todo) (*domain.Todo, error) {
	if m.update == nil {
		return nil, errNotMocked
	}
	return m.update(ctx, id, todo)
}

func (m *mockStore) DeleteByID(ctx context.Context, id int64) error {
	if m.deleteByID == nil {
		return errNotMocked
	}
	return m.deleteByID(ctx, id)
}

func (m *mockStore) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteAll == nil {
		return 0, errNotMocked
	}
	return m.deleteAll(ctx)
}

// recordingPublisher запоминает опубликованные события.
type recordingPublisher struct {
	events []mq.EventType
	err    error
}

func (p *recordingPublisher) PublishTodoEvent(_ context.Context, eventType mq.EventType, _ mq.TodoEventPayload) error {
	p.events = append(p.events, eventType)
	return p.err
}

// --- Helpers ---

func newTestServer(store TodoStore, publisher EventPublisher) http.Handler {
	h := NewHandler(Config{
		Store:     store,
		Publisher: publisher,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func perform(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeTodo(t *testing.T, rec *httptest.ResponseRecorder) domain.Todo {
	t.Helper()
	var todo domain.Todo
	if err := json.Unmarshal(rec.Body.Bytes(), &todo); err != nil {
		t.Fatalf("decode todo: %v (body: %s)", err, rec.Body.String())
	}
	return todo
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v (body: %s)", err, rec.Body.String())
	}
	return resp.Error
}

// --- Handler tests with mocked store ---

func TestListTodos(t *testing.T) {
	store := &mockStore{
		getAll: func(context.Context) ([]domain.Todo, error) {
			return []domain.Todo{{ID: 1, Title: "Title", Completed: false, Order: 2}}, nil
		},
	}

	rec := perform(t, newTestServer(store, nil), http.MethodGet, "/todos", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}

	var todos []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &todos); err != nil {
		t.Fatalf("expected JSON array: %v", err)
	}
	if len(todos) != 1 {
		t.Fatalf("expected 1 todo, got %d", len(todos))
	}
	if todos[0]["id"] != float64(1) {
		t.Errorf("expected id 1, got %v", todos[0]["id"])
	}
	if todos[0]["title"] != "Title" {
		t.Errorf("expected title Title, got %v", todos[0]["title"])
	}
}

func TestListTodos_EmptyIsArray(t *testing.T) {
	store := &mockStore{
		getAll: func(context.Context) ([]domain.Todo, error) { return nil, nil },
	}

	rec := perform(t, newTestServer(store, nil), http.MethodGet, "/todos", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestGetTodo(t *testing.T) {
	// Хранилище отдаёт запись с id=123 по ключу 1; ответ повторяет запись как есть
	store := &mockStore{
		findByID: func(_ context.Context, id int64) (*domain.Todo, error) {
			if id != 1 {
				return nil, repo.ErrNotFound
			}
			return &domain.Todo{ID: 123, Title: "Title", Completed: true, Order: 1}, nil
		},
	}

	rec := perform(t, newTestServer(store, nil), http.MethodGet, "/todos/1", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"id": float64(123), "title": "Title", "completed": true, "order": float64(1)}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s: expected %v, got %v", k, v, body[k])
		}
	}
	if len(body) != len(want) {
		t.Errorf("unexpected fields in %v", body)
	}
}

func TestGetTodo_NotFound(t *testing.T) {
	store := &mockStore{
		findByID: func(context.Context, int64) (*domain.Todo, error) { return nil, repo.ErrNotFound },
	}

	rec := perform(t, newTestServer(store, nil), http.MethodGet, "/todos/42", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %s", e.Code)
	}
}

func TestGetTodo_InvalidID(t *testing.T) {
	rec := perform(t, newTestServer(&mockStore{}, nil), http.MethodGet, "/todos/abc", nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != ErrCodeBadRequest {
		t.Errorf("expected BAD_REQUEST, got %s", e.Code)
	}
}

func TestCreateTodo(t *testing.T) {
	var stored domain.Todo
	store := &mockStore{
		add: func(_ context.Context, todo domain.Todo) (*domain.Todo, error) {
			stored = todo
			todo.ID = 1
			return &todo, nil
		},
	}

	body := domain.Todo{ID: 12, Title: "Title", Completed: true, Order: 1}
	rec := perform(t, newTestServer(store, nil), http.MethodPost, "/todos", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/todos/1" {
		t.Errorf("expected Location /todos/1, got %q", loc)
	}

	// Клиентский id не передаётся в хранилище
	if stored.ID != 0 {
		t.Errorf("client id should be ignored, store got %d", stored.ID)
	}
	if stored.Title != "Title" || !stored.Completed || stored.Order != 1 {
		t.Errorf("unexpected todo passed to store: %+v", stored)
	}

	created := decodeTodo(t, rec)
	want := domain.Todo{ID: 1, Title: "Title", Completed: true, Order: 1}
	if created != want {
		t.Errorf("expected %+v, got %+v", want, created)
	}
}

func TestCreateTodo_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"empty body", ``},
		{"wrong type", `{"title": 5}`},
		{"missing title", `{"completed": true}`},
		{"blank title", `{"title": "   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{
				add: func(context.Context, domain.Todo) (*domain.Todo, error) {
					t.Error("store must not be called")
					return nil, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/todos", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newTestServer(store, nil).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestDeleteTodo(t *testing.T) {
	var deleted int64
	store := &mockStore{
		findByID: func(_ context.Context, id int64) (*domain.Todo, error) {
			return &domain.Todo{ID: id, Title: "Title", Completed: true, Order: 1}, nil
		},
		deleteByID: func(_ context.Context, id int64) error {
			deleted = id
			return nil
		},
	}

	rec := perform(t, newTestServer(store, nil), http.MethodDelete, "/todos/12", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deleted != 12 {
		t.Errorf("expected delete of 12, got %d", deleted)
	}
	if got := decodeTodo(t, rec); got.ID != 12 {
		t.Errorf("expected deleted todo in body, got %+v", got)
	}
}

func TestDeleteTodo_NotFound(t *testing.T) {
	store := &mockStore{
		findByID: func(context.Context, int64) (*domain.Todo, error) { return nil, repo.ErrNotFound },
		deleteByID: func(context.Context, int64) error {
			t.Error("delete must not be called for missing todo")
			return nil
		},
	}

	rec := perform(t, newTestServer(store, nil), http.MethodDelete, "/todos/12", nil)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateTodo(t *testing.T) {
	store := &mockStore{
		findByID: func(_ context.Context, id int64) (*domain.Todo, error) {
			return &domain.Todo{ID: id, Title: "Title", Completed: true, Order: 1}, nil
		},
		update: func(_ context.Context, id int64, todo domain.Todo) (*domain.Todo, error) {
			todo.ID = id
			return &todo, nil
		},
	}

	body := domain.Todo{ID: 12, Title: "Changed", Completed: false, Order: 3}
	rec := perform(t, newTestServer(store, nil), http.MethodPatch, "/todos/12", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	want := domain.Todo{ID: 12, Title: "Changed", Completed: false, Order: 3}
	if got := decodeTodo(t, rec); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestUpdateTodo_NotFound(t *testing.T) {
	store := &mockStore{
		findByID: func(context.Context, int64) (*domain.Todo, error) { return nil, repo.ErrNotFound },
	}

	rec := perform(t, newTestServer(store, nil), http.MethodPatch, "/todos/12", `{"title":"x"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateTodo_BadRequest(t *testing.T) {
	store := &mockStore{
		findByID: func(_ context.Context, id int64) (*domain.Todo, error) {
			return &domain.Todo{ID: id, Title: "Title"}, nil
		},
		update: func(context.Context, int64, domain.Todo) (*domain.Todo, error) {
			t.Error("update must not be called")
			return nil, nil
		},
	}
	srv := newTestServer(store, nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"invalid id", "/todos/x", `{"title":"x"}`},
		{"malformed body", "/todos/1", `{`},
		{"blank title", "/todos/1", `{"title":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := perform(t, srv, http.MethodPatch, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestStoreFailure_InternalError(t *testing.T) {
	failure := errors.New("connection reset")
	store := &mockStore{
		getAll:   func(context.Context) ([]domain.Todo, error) { return nil, failure },
		findByID: func(context.Context, int64) (*domain.Todo, error) { return nil, failure },
	}
	srv := newTestServer(store, nil)

	for _, path := range []string{"/todos", "/todos/1"} {
		rec := perform(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected 500, got %d", path, rec.Code)
			continue
		}
		e := decodeError(t, rec)
		if e.Code != ErrCodeInternalError {
			t.Errorf("%s: expected INTERNAL_ERROR, got %s", path, e.Code)
		}
		if strings.Contains(e.Message, "connection reset") {
			t.Errorf("%s: internal error details leaked: %q", path, e.Message)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := perform(t, newTestServer(&mockStore{}, nil), http.MethodPut, "/todos/1", `{}`)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

// --- Handler tests with in-memory store ---

func TestUpdateTodo_Idempotent(t *testing.T) {
	store := repo.NewMemoryRepo()
	srv := newTestServer(store, nil)

	created := decodeTodo(t, perform(t, srv, http.MethodPost, "/todos", `{"title":"Title","order":1}`))
	path := "/todos/" + jsonNumber(created.ID)
	body := `{"title":"Done","completed":true,"order":2}`

	first := perform(t, srv, http.MethodPatch, path, body)
	second := perform(t, srv, http.MethodPatch, path, body)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected 200 twice, got %d and %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("responses differ: %s vs %s", first.Body.String(), second.Body.String())
	}

	stored, err := store.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := domain.Todo{ID: created.ID, Title: "Done", Completed: true, Order: 2}
	if *stored != want {
		t.Errorf("expected stored %+v, got %+v", want, *stored)
	}
}

func TestUpdateTodo_Partial(t *testing.T) {
	store := repo.NewMemoryRepo()
	srv := newTestServer(store, nil)

	created := decodeTodo(t, perform(t, srv, http.MethodPost, "/todos", `{"title":"Title","order":5}`))

	rec := perform(t, srv, http.MethodPatch, "/todos/"+jsonNumber(created.ID), `{"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	want := domain.Todo{ID: created.ID, Title: "Title", Completed: true, Order: 5}
	if got := decodeTodo(t, rec); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestCRUDLifecycle(t *testing.T) {
	srv := newTestServer(repo.NewMemoryRepo(), nil)

	a := decodeTodo(t, perform(t, srv, http.MethodPost, "/todos", `{"title":"a","order":2}`))
	b := decodeTodo(t, perform(t, srv, http.MethodPost, "/todos", `{"title":"b","order":1}`))
	if a.ID == b.ID {
		t.Fatalf("ids must be unique, both %d", a.ID)
	}

	var list []domain.Todo
	json.Unmarshal(perform(t, srv, http.MethodGet, "/todos", nil).Body.Bytes(), &list)
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	if rec := perform(t, srv, http.MethodDelete, "/todos/"+jsonNumber(a.ID), nil); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if rec := perform(t, srv, http.MethodGet, "/todos/"+jsonNumber(a.ID), nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
	if rec := perform(t, srv, http.MethodDelete, "/todos/"+jsonNumber(a.ID), nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", rec.Code)
	}

	rec := perform(t, srv, http.MethodDelete, "/todos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d", rec.Code)
	}
	var cleared ClearResponse
	json.Unmarshal(rec.Body.Bytes(), &cleared)
	if cleared.Deleted != 1 {
		t.Errorf("expected 1 cleared, got %d", cleared.Deleted)
	}
}

// --- Events ---

func TestHandler_PublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	srv := newTestServer(repo.NewMemoryRepo(), pub)

	created := decodeTodo(t, perform(t, srv, http.MethodPost, "/todos", `{"title":"a"}`))
	perform(t, srv, http.MethodPost, "/todos", `{"title":"b"}`)
	path := "/todos/" + jsonNumber(created.ID)
	perform(t, srv, http.MethodPatch, path, `{"completed":true}`)
	perform(t, srv, http.MethodDelete, path, nil)
	perform(t, srv, http.MethodDelete, "/todos", nil)
	// Чтение не публикует событий
	perform(t, srv, http.MethodGet, "/todos", nil)

	want := []mq.EventType{
		mq.EventTodoCreated, mq.EventTodoCreated, mq.EventTodoUpdated,
		mq.EventTodoDeleted, mq.EventTodoCleared,
	}
	if len(pub.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, pub.events)
	}
	for i := range want {
		if pub.events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], pub.events[i])
		}
	}
}

func TestClearTodos_EmptyListPublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	srv := newTestServer(repo.NewMemoryRepo(), pub)

	rec := perform(t, srv, http.MethodDelete, "/todos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var cleared ClearResponse
	json.Unmarshal(rec.Body.Bytes(), &cleared)
	if cleared.Deleted != 0 {
		t.Errorf("expected 0 deleted, got %d", cleared.Deleted)
	}
	if len(pub.events) != 0 {
		t.Errorf("expected no events, got %v", pub.events)
	}
}

func TestUpdateTodo_EmptyPatchIsNoop(t *testing.T) {
	current := &domain.Todo{ID: 3, Title: "keep", Completed: true, Order: 7}
	store := &mockStore{
		findByID: func(_ context.Context, id int64) (*domain.Todo, error) {
			return current, nil
		},
		update: func(context.Context, int64, domain.Todo) (*domain.Todo, error) {
			t.Error("Update must not be called for an empty patch")
			return nil, errNotMocked
		},
	}
	pub := &recordingPublisher{}
	srv := newTestServer(store, pub)

	for _, body := range []string{`{}`, `{"id":99}`} {
		rec := perform(t, srv, http.MethodPatch, "/todos/3", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", body, rec.Code)
		}
		if got := decodeTodo(t, rec); got != *current {
			t.Errorf("%s: expected %+v, got %+v", body, *current, got)
		}
	}
	if len(pub.events) != 0 {
		t.Errorf("expected no events, got %v", pub.events)
	}
}

func TestHandler_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &recordingPublisher{err: mq.ErrNoChannel}
	srv := newTestServer(repo.NewMemoryRepo(), pub)

	rec := perform(t, srv, http.MethodPost, "/todos", `{"title":"a"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201 despite publish failure, got %d", rec.Code)
	}
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
