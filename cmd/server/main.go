package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/proofpay/internal/server"
	"github.com/dmitrijs2005/proofpay/internal/server/config"
)

// The proofpay API server. Configuration comes from defaults, an optional
// JSON file, and flags; see internal/server/config.
func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("failed to start proofpay server: %v", err)
		return
	}

	app.Run(ctx)

}
