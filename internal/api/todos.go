package api

import (
	"context"
	"net/http"
	"strings"

	"pioneer-cli/internal/model"
)

type todoListResponse struct {
	Results []model.Task `json:"results"`
}

// ListTodos returns the task collection, serving the cached copy until a
// mutation invalidates it.
func (c *Client) ListTodos(ctx context.Context) ([]model.Task, error) {
	c.mu.Lock()
	if c.todosValid {
		cached := append([]model.Task(nil), c.todos...)
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	var resp todoListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/todos/", nil, &resp, true); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.todos = append([]model.Task(nil), resp.Results...)
	c.todosValid = true
	c.mu.Unlock()
	return resp.Results, nil
}

// CreateTodo posts a new task. The server assigns the id. The todo cache is
// invalidated on success.
func (c *Client) CreateTodo(ctx context.Context, fields model.TaskFields) (model.Task, error) {
	var created model.Task
	if err := c.doJSON(ctx, http.MethodPost, "/api/todos/", fields, &created, true); err != nil {
		return model.Task{}, err
	}
	c.Invalidate(TagTodo)
	return created, nil
}

// UpdateTodo patches the editable fields of an existing task.
func (c *Client) UpdateTodo(ctx context.Context, id string, fields model.TaskFields) (model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Task{}, &Error{Status: http.StatusBadRequest, Detail: "task id is empty"}
	}
	var updated model.Task
	if err := c.doJSON(ctx, http.MethodPatch, "/api/todos/"+id+"/", fields, &updated, true); err != nil {
		return model.Task{}, err
	}
	// Drop the cached list silently: no tag is published, so subscribers
	// keep what they are showing, but the next ListTodos hits the server.
	c.mu.Lock()
	c.todosValid = false
	c.mu.Unlock()
	return updated, nil
}

// DeleteTodo removes a task.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return &Error{Status: http.StatusBadRequest, Detail: "task id is empty"}
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/todos/"+id+"/", nil, nil, true); err != nil {
		return err
	}
	c.Invalidate(TagTodo)
	return nil
}
