package tasksclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"maiyer/pkg/logger"
)

// DefaultBaseURL is the public Google Tasks API base.
const DefaultBaseURL = "https://tasks.googleapis.com/tasks/v1"

// Client wraps the Google Tasks list/read/complete endpoints used to drive
// the shopping list.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Client
}

func New(httpClient *http.Client, baseURL string, logger logger.Client) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// TasksError is returned when a task-list API call fails.
type TasksError struct {
	Op     string
	Status int
	Body   string
}

func (e *TasksError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, e.Body)
}

// TaskList is one of the user's task lists.
type TaskList struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Task is a single entry in a task list.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Notes  string `json:"notes"`
	Status string `json:"status"`
}

type taskListsResponse struct {
	Items []TaskList `json:"items"`
}

type tasksResponse struct {
	Items []Task `json:"items"`
}

// ListTaskLists returns all task lists of the authenticated user.
func (c *Client) ListTaskLists(ctx context.Context, accessToken string) ([]TaskList, error) {
	endpoint := fmt.Sprintf("%s/users/@me/lists", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tasks: failed to build list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tasks: list call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &TasksError{Op: "list task lists", Status: resp.StatusCode, Body: string(body)}
	}

	var apiResp taskListsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("tasks: failed to decode list response: %w", err)
	}
	return apiResp.Items, nil
}

// IncompleteTasks returns the tasks of a list that still need action.
func (c *Client) IncompleteTasks(ctx context.Context, accessToken, listID string) ([]Task, error) {
	endpoint := fmt.Sprintf("%s/lists/%s/tasks", c.baseURL, listID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tasks: failed to build tasks request: %w", err)
	}
	q := req.URL.Query()
	q.Set("showCompleted", "false")
	q.Set("showHidden", "false")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tasks: tasks call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &TasksError{Op: "get tasks", Status: resp.StatusCode, Body: string(body)}
	}

	var apiResp tasksResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("tasks: failed to decode tasks response: %w", err)
	}

	tasks := make([]Task, 0, len(apiResp.Items))
	for _, task := range apiResp.Items {
		if task.Status == "completed" {
			continue
		}
		if task.Status == "" {
			task.Status = "needsAction"
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// CompleteTask marks a single task as completed.
func (c *Client) CompleteTask(ctx context.Context, accessToken, listID, taskID string) error {
	endpoint := fmt.Sprintf("%s/lists/%s/tasks/%s", c.baseURL, listID, taskID)

	payload, err := json.Marshal(map[string]string{"status": "completed"})
	if err != nil {
		return fmt.Errorf("tasks: failed to marshal patch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("tasks: failed to build patch request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tasks: patch call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &TasksError{Op: fmt.Sprintf("complete task %s", taskID), Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// CompleteTasks marks tasks completed in order, stopping at the first
// failure. Previously completed tasks are not rolled back, so callers must
// treat partial completion as possible.
func (c *Client) CompleteTasks(ctx context.Context, accessToken, listID string, taskIDs []string) error {
	for _, taskID := range taskIDs {
		if err := c.CompleteTask(ctx, accessToken, listID, taskID); err != nil {
			return err
		}
		c.logger.Debug("task completed", logger.Field{Key: "task_id", Value: taskID})
	}
	return nil
}
