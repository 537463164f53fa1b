// ABOUTME: This file is the service entry point
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andrewvu270/MindForge-sub000/bootstrap"
)

func main() {
	if err := bootstrap.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "content-hub failed: %v\n", err)
		os.Exit(1)
	}
}
