package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/audiofolio/folio-server/internal/importer"
	"github.com/audiofolio/folio-server/internal/scanner"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: scan-test <library-path>")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	d := scanner.NewDiscoverer(scanner.NewFileProbe(logger), logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	discoveries, err := d.Discover(ctx, os.Args[1])
	if err != nil {
		logger.Error("discovery failed", "error", err)
		os.Exit(1)
	}

	for _, disc := range discoveries {
		guess := importer.ExtractMetadata(disc.AssetPath)
		title, author := guess.Title, guess.Author
		if disc.Embedded != nil {
			if disc.Embedded.Title != "" {
				title = disc.Embedded.Title
			}
			if disc.Embedded.Author != "" {
				author = disc.Embedded.Author
			}
		}
		fmt.Printf("%s\n", disc.AssetPath)
		fmt.Printf("  title=%q author=%q files=%d\n", title, author, len(disc.MediaFiles))
	}

	fmt.Printf("\n=== Discovery Complete ===\n")
	fmt.Printf("Duration: %s\n", time.Since(start))
	fmt.Printf("Found: %d\n", len(discoveries))
}
