package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vsnandy/sportsproxy/proxy"
)

func serveCmd(build routerFunc) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the routes over plain HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			router, err := build()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), addr, handler(router, log.Logger))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	return cmd
}

func serve(ctx context.Context, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "server failed")
	}
	return <-done
}

// handler translates every HTTP request into an API Gateway v2 event and
// writes back the router's response.
func handler(router *proxy.Router, base zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		event, err := eventFromRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		logger := base.With().Str("requestId", event.RequestContext.RequestID).Logger()
		ctx := logger.WithContext(r.Context())

		response, err := router.Route(ctx, event)
		if err != nil {
			logger.Error().Err(err).Msg("route failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := writeResponse(w, response); err != nil {
			logger.Warn().Err(err).Msg("failed writing response")
		}
	})
}

// eventFromRequest builds the event API Gateway would deliver for r. Repeated
// query parameters and headers are joined with commas, and bodies that are
// not UTF-8 are base64 encoded.
func eventFromRequest(r *http.Request) (events.APIGatewayV2HTTPRequest, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return events.APIGatewayV2HTTPRequest{}, errors.Wrap(err, "failed reading request body")
	}

	event := events.APIGatewayV2HTTPRequest{
		Version:        "2.0",
		RouteKey:       "$default",
		RawPath:        r.URL.Path,
		RawQueryString: r.URL.RawQuery,
		Headers:        make(map[string]string, len(r.Header)),
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: uuid.NewString(),
			Stage:     "$default",
			TimeEpoch: time.Now().UnixMilli(),
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    r.Method,
				Path:      r.URL.Path,
				Protocol:  r.Proto,
				SourceIP:  r.RemoteAddr,
				UserAgent: r.UserAgent(),
			},
		},
	}

	for name, values := range r.Header {
		event.Headers[strings.ToLower(name)] = strings.Join(values, ",")
	}

	if query := r.URL.Query(); len(query) > 0 {
		event.QueryStringParameters = make(map[string]string, len(query))
		for name, values := range query {
			event.QueryStringParameters[name] = strings.Join(values, ",")
		}
	}

	if utf8.Valid(body) {
		event.Body = string(body)
	} else {
		event.Body = base64.StdEncoding.EncodeToString(body)
		event.IsBase64Encoded = true
	}

	return event, nil
}

func writeResponse(w http.ResponseWriter, response events.APIGatewayProxyResponse) error {
	for name, value := range response.Headers {
		w.Header().Set(name, value)
	}
	for name, values := range response.MultiValueHeaders {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}

	body := []byte(response.Body)
	if response.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(response.Body)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return errors.Wrap(err, "failed decoding response body")
		}
		body = decoded
	}

	w.WriteHeader(response.StatusCode)
	_, err := w.Write(body)
	return err
}
