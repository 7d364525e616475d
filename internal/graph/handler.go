package graph

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// NewHandler serves POST /graphql. The request context already carries the
// derived identity (or none); execution errors end up in the standard
// {data, errors} envelope, never as transport-level failures.
func NewHandler(schema graphql.Schema, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []gin.H{{"message": "invalid request body"}},
			})
			return
		}
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Request.Context(),
		})
		if result.HasErrors() {
			for _, e := range result.Errors {
				l.Warn("graphql error",
					zap.String("message", e.Message),
					zap.String("rid", c.GetString("X-Request-ID")),
				)
			}
		}
		c.JSON(http.StatusOK, result)
	}
}
