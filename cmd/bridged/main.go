// Package main is the entrypoint for the webview bridge daemon (binary name "bridged").
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/morezero/webview-bridge/internal/config"
	"github.com/morezero/webview-bridge/internal/server"
	"github.com/morezero/webview-bridge/pkg/db"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

const usage = `Usage: bridged [command]
       bridged serve     Start the bridge (NATS, HTTP, WebSocket).
       bridged migrate   Apply the storage schema to DATABASE_URL.
       bridged version   Print the build version.

Commands:
  serve     (default) Start the webview bridge host.
  migrate   Apply the storage-module schema only.
  version   Print version and exit.

Environment: COMMS_URL, DATABASE_URL (optional; enables persistent storage),
HTTP_PORT (default 8080), BRIDGE_FEATURES_FILE, APP_NAME, APP_VERSION, PLATFORM.
`

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 && args[0] != "" {
		cmd = args[0]
	}

	switch cmd {
	case "migrate":
		if err := runMigrate(); err != nil {
			log.Fatalf("bridged migrate: %v", err)
		}
		return
	case "version", "-v", "--version":
		fmt.Printf("bridged %s (%s)\n", version, runtime.Version())
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "serve", "":
		// serve (explicit or default)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q.\n%s", cmd, usage)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		log.Fatalf("bridged: %v", err)
	}
}

func runMigrate() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ValidateForDB(); err != nil {
		return err
	}
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	fmt.Println("Storage schema is ready.")
	return nil
}
