// Command validate-config checks dashboard YAML config files.
package main

import (
	"fmt"
	"os"

	"github.com/blockedby/sales-dashboard/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("No files to check.")
		os.Exit(0)
	}

	failed := false
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("❌ Failed to read %s: %v\n", path, err)
			failed = true
			continue
		}

		cfg, err := config.ParseYAML(data)
		if err != nil {
			fmt.Printf("❌ Invalid config in %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✅ %s is valid (port %d, source %s)\n", path, cfg.HTTPPort, source(cfg))
	}

	if failed {
		os.Exit(1)
	}
}

func source(cfg *config.Config) string {
	if cfg.DatabaseURL != "" {
		return "database"
	}
	return cfg.DataFile
}
