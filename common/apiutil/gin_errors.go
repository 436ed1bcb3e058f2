package apiutil

import (
	"github.com/Aidin1998/ethtransfer/pkg/errors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// WriteProblem aborts the request with an RFC 7807 problem body
func WriteProblem(c *gin.Context, problem *errors.ProblemDetails) {
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		problem.WithTraceID(sc.TraceID().String())
	}
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(problem.Status, problem)
}
