package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zero-tech/zchain-bridge/pkg/api"
	"github.com/zero-tech/zchain-bridge/pkg/app"
	"github.com/zero-tech/zchain-bridge/pkg/config"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var daemon app.Runner = api.NewServer(cfg)
	if err := daemon.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Bridge daemon exited with error: %v\n", err)
		os.Exit(1)
	}
}
