package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/peterkuimelis/swapduel/internal/catalog"
	"github.com/peterkuimelis/swapduel/internal/config"
	"github.com/peterkuimelis/swapduel/internal/web"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port to listen on")
	artDir := flag.String("art", "./card_art", "path to card art directory")
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cards, err := catalog.Load(cfg.Catalog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	srv := web.NewServer(cards, cfg, *artDir)
	addr := fmt.Sprintf(":%d", *port)
	log.Printf("swapduel web UI listening on http://localhost:%d", *port)
	if err := srv.ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
