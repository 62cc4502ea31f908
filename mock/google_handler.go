package main

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

type mockTask struct {
	ID     string
	Title  string
	Status string
}

type googleHandler struct {
	mu    sync.Mutex
	tasks map[string][]*mockTask
}

func newGoogleHandler() *googleHandler {
	return &googleHandler{
		tasks: map[string][]*mockTask{
			"list-groceries": {
				{ID: "task-1", Title: "milk", Status: "needsAction"},
				{ID: "task-2", Title: "eggs", Status: "needsAction"},
				{ID: "task-3", Title: "bread", Status: "needsAction"},
			},
		},
	}
}

func (h *googleHandler) Token(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"access_token":  "mock-google-token",
		"refresh_token": "mock-google-refresh",
		"token_type":    "Bearer",
		"expires_in":    3599,
	})
}

func (h *googleHandler) TaskLists(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": []gin.H{
			{"id": "list-groceries", "title": "Groceries"},
		},
	})
}

func (h *googleHandler) Tasks(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	showCompleted := c.Query("showCompleted") != "false"
	items := make([]gin.H, 0)
	for _, task := range h.tasks[c.Param("list")] {
		if !showCompleted && task.Status == "completed" {
			continue
		}
		items = append(items, gin.H{"id": task.ID, "title": task.Title, "status": task.Status})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *googleHandler) PatchTask(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var patch struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	for _, task := range h.tasks[c.Param("list")] {
		if task.ID == c.Param("task") {
			if patch.Status != "" {
				task.Status = patch.Status
			}
			c.JSON(http.StatusOK, gin.H{"id": task.ID, "title": task.Title, "status": task.Status})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
}
