package tasksclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maiyer/pkg/logger"
)

func testLogger() logger.Client {
	return logger.NewWithWriter("production", io.Discard)
}

func TestListTaskLists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/@me/lists", r.URL.Path)
		assert.Equal(t, "Bearer g-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"id": "list-1", "title": "Groceries"},
				{"id": "list-2", "title": "Errands"},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	lists, err := client.ListTaskLists(context.Background(), "g-token")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "list-1", lists[0].ID)
	assert.Equal(t, "Groceries", lists[0].Title)
}

func TestListTaskLists_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("denied"))
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	_, err := client.ListTaskLists(context.Background(), "g-token")

	var tasksErr *TasksError
	require.ErrorAs(t, err, &tasksErr)
	assert.Equal(t, http.StatusForbidden, tasksErr.Status)
	assert.Contains(t, tasksErr.Error(), "denied")
}

func TestIncompleteTasks_FiltersCompleted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lists/list-1/tasks", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("showCompleted"))
		assert.Equal(t, "false", r.URL.Query().Get("showHidden"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"id": "t1", "title": "milk", "status": "needsAction"},
				{"id": "t2", "title": "eggs", "status": "completed"},
				{"id": "t3", "title": "bread"},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	tasks, err := client.IncompleteTasks(context.Background(), "g-token", "list-1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "milk", tasks[0].Title)
	assert.Equal(t, "bread", tasks[1].Title)
	assert.Equal(t, "needsAction", tasks[1].Status)
}

func TestCompleteTask_PatchesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/lists/list-1/tasks/t1", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "completed", payload["status"])
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	assert.NoError(t, client.CompleteTask(context.Background(), "g-token", "list-1", "t1"))
}

func TestCompleteTasks_StopsAtFirstFailure(t *testing.T) {
	var mu sync.Mutex
	var patched []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		taskID := r.URL.Path[len("/lists/list-1/tasks/"):]
		patched = append(patched, taskID)
		if taskID == "t2" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}
	}))
	defer srv.Close()

	client := New(srv.Client(), srv.URL, testLogger())
	err := client.CompleteTasks(context.Background(), "g-token", "list-1", []string{"t1", "t2", "t3"})

	var tasksErr *TasksError
	require.ErrorAs(t, err, &tasksErr)
	assert.Contains(t, tasksErr.Error(), "t2")

	// t1 stays completed, t3 is never attempted.
	assert.Equal(t, []string{"t1", "t2"}, patched)
}
