package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.recordHTTPRequest(c.FullPath(), strconv.Itoa(c.Writer.Status()))
	}
}

// Timer measures one remote call
type Timer struct {
	start   time.Time
	metrics *Metrics
	op      string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, op string) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		op:      op,
	}
}

// Stop stops the timer and records the call with its result label
func (t *Timer) Stop(result string) time.Duration {
	d := time.Since(t.start)
	t.metrics.RecordRemoteCall(t.op, result, d)
	return d
}
