package main

import (
	"fmt"
	"os"

	"github.com/yukikurage/project-task-api/internal/config"
)

func main() {
	cfg := config.Load()

	if err := NewRootCommand(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
