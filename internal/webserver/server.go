// Package webserver owns the echo instance: middleware, validation, error
// translation, and the /api route registrars used by the handler packages.
package webserver

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/mcpstack/monitord/config"
	"github.com/mcpstack/monitord/internal/store"
)

var server *WebServer

// WebServer wraps the echo engine and the shared store reference.
type WebServer struct {
	root  *echo.Echo
	api   *echo.Group
	cfg   *config.AppConfig
	store *store.Store
}

type webValidator struct {
	validate *validator.Validate
}

func (v *webValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Init builds the global web server instance.
func Init(cfg *config.AppConfig, st *store.Store) *WebServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	validate := validator.New()
	// report field names in their json form
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	e.Validator = &webValidator{validate: validate}
	e.Use(middleware.Recover())
	e.Use(ZapLogger())

	server = &WebServer{
		root:  e,
		cfg:   cfg,
		store: st,
	}

	// Every boundary-crossing /api request bumps the global request counter
	// before the handler runs.
	server.api = e.Group("/api", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st.IncRequests()
			return next(c)
		}
	})

	// Unexpected faults are logged with full detail and surfaced as a
	// generic 500 so no internal detail leaks to the caller.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, isHTTP := err.(*echo.HTTPError); isHTTP {
			code = he.Code
		}
		if code >= http.StatusInternalServerError {
			st.IncErrors()
			zap.L().Error("internal server error",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err))
			_ = c.JSON(code, map[string]interface{}{"error": "Internal server error"})
			return
		}
		_ = c.JSON(code, map[string]interface{}{"error": http.StatusText(code)})
	}

	return server
}

// ZapLogger logs one line per request through the global zap logger.
func ZapLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status))
			return err
		}
	}
}

// ApiGET registers a GET route under /api.
func ApiGET(path string, handler echo.HandlerFunc) {
	server.api.GET(path, handler)
}

// ApiPOST registers a POST route under /api.
func ApiPOST(path string, handler echo.HandlerFunc) {
	server.api.POST(path, handler)
}

// Instance returns the global web server.
func Instance() *WebServer {
	return server
}

// Echo exposes the underlying engine, mainly for tests.
func (ws *WebServer) Echo() *echo.Echo {
	return ws.root
}

// Start runs the listener and blocks until the server stops.
func (ws *WebServer) Start() error {
	addr := fmt.Sprintf("%s:%d", ws.cfg.Web.Host, ws.cfg.Web.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	return ws.root.Start(addr)
}

// Shutdown is a thin wrapper over echo's Close for clean stops.
func (ws *WebServer) Shutdown() error {
	return ws.root.Close()
}
