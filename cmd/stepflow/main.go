package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grussorusso/stepflow/internal/api"
	"github.com/grussorusso/stepflow/internal/cache"
	"github.com/grussorusso/stepflow/internal/config"
	"github.com/grussorusso/stepflow/internal/metrics"
	"github.com/labstack/echo/v4"
)

func cacheSetup() {
	cache.Size = config.GetInt(config.CACHE_SIZE, 100)

	d := config.GetInt(config.CACHE_CLEANUP, 60)
	cache.CleanupInterval = time.Duration(d) * time.Second

	d = config.GetInt(config.CACHE_ITEM_EXPIRATION, 60)
	cache.DefaultExp = time.Duration(d) * time.Second
}

func registerTerminationHandler(e *echo.Echo) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Printf("Received termination signal.")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
}

func main() {
	configFileName := flag.String("config", "", "configuration file path")
	flag.Parse()
	config.ReadConfiguration(*configFileName)

	cacheSetup()
	metrics.Init()

	e := echo.New()
	registerTerminationHandler(e)
	api.StartAPIServer(e)
}
