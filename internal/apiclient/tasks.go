package apiclient

import (
	"context"
	"fmt"
	"net/url"
)

// Task is a TaskBuddy task as the backend reports it.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"` // pending | in-progress | completed
	Priority    string `json:"priority"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// TaskStats summarizes the caller's tasks for the dashboard.
type TaskStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Pending    int `json:"pending"`
}

// CreateTaskInput is the admin task creation payload.
type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// ListTasks returns the tasks visible to the caller.
func (c *Client) ListTasks(ctx context.Context, opts ...CallOption) ([]Task, error) {
	var tasks []Task
	if err := c.Get(ctx, "/tasks", &tasks, opts...); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns a single task.
func (c *Client) GetTask(ctx context.Context, id string, opts ...CallOption) (Task, error) {
	var task Task
	err := c.Get(ctx, "/tasks/"+url.PathEscape(id), &task, opts...)
	return task, err
}

// GetTaskStats returns the caller's dashboard summary.
func (c *Client) GetTaskStats(ctx context.Context, opts ...CallOption) (TaskStats, error) {
	var stats TaskStats
	err := c.Get(ctx, "/tasks/stats", &stats, opts...)
	return stats, err
}

// CreateTask creates a task (administrators only, enforced backend-side).
func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput, opts ...CallOption) (Task, error) {
	var task Task
	err := c.Post(ctx, "/tasks", in, &task, opts...)
	return task, err
}

// UpdateTaskStatus moves a task through its lifecycle.
func (c *Client) UpdateTaskStatus(ctx context.Context, id, status string, opts ...CallOption) (Task, error) {
	var task Task
	path := fmt.Sprintf("/tasks/%s/status", url.PathEscape(id))
	err := c.Put(ctx, path, map[string]string{"status": status}, &task, opts...)
	return task, err
}
