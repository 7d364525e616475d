package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-threads-api/internal/core/auth"
	"go-threads-api/internal/graph"
	mdw "go-threads-api/internal/transport/http/middleware"
)

// NewAPIEngine assembles the single public engine: the GraphQL endpoint
// plus health and metrics. Identity derivation runs once per request,
// before the handler, so every resolver sees the same identity value.
func NewAPIEngine(l *zap.Logger, schema graphql.Schema, jwter *auth.JWTer) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
		mdw.Identity(jwter),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/graphql", graph.NewHandler(schema, l))

	return r
}
