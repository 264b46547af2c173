package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tendant/chi-demo/app"
	demomiddleware "github.com/tendant/chi-demo/middleware"
	"github.com/tendant/storage-catalog/pkg/catalog"
	"github.com/tendant/storage-catalog/pkg/catalog/api"
	"github.com/tendant/storage-catalog/pkg/catalog/config"
)

// HTTPServer wraps the catalog service for HTTP access
type HTTPServer struct {
	service catalog.Service
	config  *config.ServerConfig
}

// NewHTTPServer creates a new HTTP server wrapper
func NewHTTPServer(service catalog.Service, serverConfig *config.ServerConfig) *HTTPServer {
	return &HTTPServer{
		service: service,
		config:  serverConfig,
	}
}

// Routes sets up the HTTP routes. Reads are public; writes require an API
// key when one is configured.
func (s *HTTPServer) Routes() (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	app.RoutesHealthz(r)
	app.RoutesHealthzReady(r)

	handler := api.NewStorageServiceHandler(s.service)

	var writeGuards []func(http.Handler) http.Handler
	if s.config.APIKeySHA256 != "" {
		apiKeyMiddleware, err := demomiddleware.ApiKeyMiddleware(demomiddleware.ApiKeyConfig{
			APIKeys: map[string]string{
				"catalog": s.config.APIKeySHA256,
			},
		})
		if err != nil {
			return nil, err
		}
		writeGuards = append(writeGuards, apiKeyMiddleware)
	}

	r.Mount(catalog.DefaultHrefPrefix, handler.Routes(writeGuards...))

	return r, nil
}
