// Package health answers the liveness routes.
package health

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/vsnandy/sportsproxy/proxy"
)

// Status is the health response body.
type Status struct {
	Status    string      `json:"status"`
	Message   interface{} `json:"message"`
	Timestamp string      `json:"timestamp"`
}

// Register adds GET and POST /health to router. now is stubbed in tests.
func Register(router *proxy.Router, now func() time.Time) {
	if now == nil {
		now = time.Now
	}

	router.GET("/health", proxy.JSON(func(ctx *proxy.RouteContext) (interface{}, error) {
		return Status{Status: "OK", Message: "Service is healthy", Timestamp: now().UTC().Format(time.RFC3339Nano)}, nil
	}))

	// POST echoes its body, as JSON when it parses.
	router.POST("/health", proxy.JSON(func(ctx *proxy.RouteContext) (interface{}, error) {
		body, err := ctx.Body()
		if err != nil {
			return nil, proxy.NewValidationError("Request body could not be decoded")
		}

		var message interface{} = body
		switch {
		case strings.TrimSpace(body) == "":
			message = "No message received"
		case gjson.Valid(body):
			message = json.RawMessage(body)
		}

		return Status{Status: "OK", Message: message, Timestamp: now().UTC().Format(time.RFC3339Nano)}, nil
	}))
}
