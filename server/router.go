package server

import (
	"time"

	httpHandler "subharvest/interfaces/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// InitiateRouter wires the search API routes.
func InitiateRouter(searchHandler httpHandler.ISearchHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:4200", "http://localhost:8000"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/search", searchHandler.Search)
	router.GET("/healthz", searchHandler.Health)

	return router
}
