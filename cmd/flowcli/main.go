package main

import (
	"github.com/grussorusso/stepflow/internal/cli"
	"github.com/grussorusso/stepflow/internal/config"
)

func main() {
	config.ReadConfiguration("")

	// Set defaults
	cli.Server.Host = "127.0.0.1"
	cli.Server.Port = config.GetInt(config.API_PORT, 1323)

	cli.Init()
}
