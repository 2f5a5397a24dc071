package main

import (
	"context"
	"log"

	"github.com/Hashith00/tlschat/internal/client"
	"github.com/Hashith00/tlschat/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := client.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}

}
