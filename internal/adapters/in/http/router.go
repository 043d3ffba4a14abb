package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type RouterConfig struct {
	// JWTSecret is the base64 encoded HS256 key.
	JWTSecret       string
	OpenAPIDocument []byte
	Debug           bool
}

// NewRouter builds the echo instance: /health and /swagger are public,
// /api/v1 requires a bearer token and a request matching the OpenAPI document.
func NewRouter(server *Server, cfg RouterConfig, logger *zap.Logger) (*echo.Echo, error) {
	auth, err := JWTAuth(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	validator, err := OpenAPIValidator(cfg.OpenAPIDocument)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug
	if cfg.Debug {
		e.Logger.SetLevel(log.DEBUG)
	} else {
		e.Logger.SetLevel(log.ERROR)
	}
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(RequestContext(logger))
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/api/v1", auth, validator)
	v1.POST("/orders", server.CreateOrder)
	v1.GET("/orders", server.ListOrders)
	v1.GET("/orders/:id", server.GetOrder)
	v1.PATCH("/orders/:id/state", server.ChangeOrderState)

	return e, nil
}
