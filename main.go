package main

import (
	"context"
	"time"

	"github.com/Rupali2507/MULE-HUNTER/internal/app"
)

const shutdownTimeout = 15 * time.Second

func main() {
	application := app.New()
	<-application.Start()

	// the budget starts at the signal, not at boot
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	application.Stop(ctx)
}
