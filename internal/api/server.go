package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/grussorusso/stepflow/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// StartAPIServer registers the routes and blocks serving the API.
func StartAPIServer(e *echo.Echo) {
	e.Use(middleware.Recover())

	// Routes
	e.POST("/create", CreateMachine)
	e.POST("/delete", DeleteMachine)
	e.GET("/machine", GetMachines)
	e.POST("/invoke/:machine", InvokeMachine)
	e.GET("/poll/:execution", PollResult)
	e.GET("/status", GetServerStatus)

	// Start server
	portNumber := config.GetInt(config.API_PORT, 1323)
	e.HideBanner = true

	if err := e.Start(fmt.Sprintf(":%d", portNumber)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal("shutting down the server")
	}
}
