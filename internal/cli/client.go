package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// --- Response types (дублируются из domain, CLI не импортирует internal) ---

// TodoResponse — todo из API.
type TodoResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Order     int    `json:"order"`
}

// ClearResponse — результат DELETE /todos.
type ClearResponse struct {
	Deleted int64 `json:"deleted"`
}

// --- Request types ---

// CreateTodoRequest — создание todo.
type CreateTodoRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed,omitempty"`
	Order     int    `json:"order,omitempty"`
}

// UpdateTodoRequest — частичное обновление todo.
type UpdateTodoRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Order     *int    `json:"order,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError — ошибка, которую вернул сервер.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error: HTTP %d", e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// --- Client ---

// Client — HTTP-клиент для todos API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListTodos возвращает все todo.
func (c *Client) ListTodos() ([]TodoResponse, error) {
	todos := []TodoResponse{}
	err := c.doJSON(http.MethodGet, "/todos", nil, &todos)
	return todos, err
}

// GetTodo возвращает todo по ID.
func (c *Client) GetTodo(id int64) (*TodoResponse, error) {
	var todo TodoResponse
	err := c.doJSON(http.MethodGet, todoPath(id), nil, &todo)
	return &todo, err
}

// CreateTodo создаёт todo.
func (c *Client) CreateTodo(req CreateTodoRequest) (*TodoResponse, error) {
	var todo TodoResponse
	err := c.doJSON(http.MethodPost, "/todos", req, &todo)
	return &todo, err
}

// UpdateTodo частично обновляет todo.
func (c *Client) UpdateTodo(id int64, req UpdateTodoRequest) (*TodoResponse, error) {
	var todo TodoResponse
	err := c.doJSON(http.MethodPatch, todoPath(id), req, &todo)
	return &todo, err
}

// DeleteTodo удаляет todo и возвращает удалённую запись.
func (c *Client) DeleteTodo(id int64) (*TodoResponse, error) {
	var todo TodoResponse
	err := c.doJSON(http.MethodDelete, todoPath(id), nil, &todo)
	return &todo, err
}

// ClearTodos удаляет все todo.
func (c *Client) ClearTodos() (int64, error) {
	var resp ClearResponse
	err := c.doJSON(http.MethodDelete, "/todos", nil, &resp)
	return resp.Deleted, err
}

func todoPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

// --- HTTP helpers ---

func (c *Client) doJSON(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil {
		apiErr.Code = er.Error.Code
		apiErr.Message = er.Error.Message
	}
	return apiErr
}
