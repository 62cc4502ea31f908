package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
)

// Local stand-in for the Kroger and Google Tasks APIs. Point the CLI at it
// with any credentials plus:
//
//	KROGER_API_URL=http://localhost:8081
//	KROGER_TOKEN_URL=http://localhost:8081/v1/connect/oauth2/token
//	GOOGLE_TASKS_API_URL=http://localhost:8081/tasks/v1
//	GOOGLE_TOKEN_URL=http://localhost:8081/token
func main() {
	// Default port
	port := "8081"

	// Check if port is provided as command line argument
	if len(os.Args) > 1 {
		port = os.Args[1]
	}

	r := gin.Default()

	kroger := newKrogerHandler()
	r.POST("/v1/connect/oauth2/token", kroger.Token)
	r.GET("/v1/products", kroger.SearchProducts)
	r.GET("/v1/locations", kroger.FindLocations)
	r.PUT("/v1/cart/add", kroger.AddToCart)

	google := newGoogleHandler()
	r.POST("/token", google.Token)
	r.GET("/tasks/v1/users/@me/lists", google.TaskLists)
	r.GET("/tasks/v1/lists/:list/tasks", google.Tasks)
	r.PATCH("/tasks/v1/lists/:list/tasks/:task", google.PatchTask)

	fmt.Printf("Mock API server running on port %s...\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
