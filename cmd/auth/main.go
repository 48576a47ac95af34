package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/aussiebroadwan/quill/internal/auth/app"
	"github.com/aussiebroadwan/quill/pkg/cryptox"
)

func main() {
	genSecret := flag.Bool("gen-secret", false,
		"print a random secret suitable for AUTH_ACCESS_SECRET, AUTH_REFRESH_SECRET or BOOTSTRAP_TOKEN and exit")
	flag.Parse()

	if *genSecret {
		secret, err := cryptox.GenerateToken(cryptox.TokenSize512)
		if err != nil {
			log.Fatalf("failed to generate secret: %v", err)
		}
		fmt.Println(secret)
		return
	}

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
