package main

import (
	"github.com/mrlokans/identity/internal/config"
	"github.com/mrlokans/identity/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
)

func main() {
	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
