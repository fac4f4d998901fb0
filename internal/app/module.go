package app

import (
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.transfer.enabled") {
		return
	}

	closer, err := transfer.New(transfer.Dependency{
		Config:    a.config,
		Router:    a.router,
		Goroutine: a.tasks,
		Context:   a.ctx,
		ID:        a.uuid,
		NumberID:  a.snowflake,
		Metrics:   a.metrics,
		Health:    a.health,
	})
	if err != nil {
		fatal("failed to init module transfer", err)
	}
	a.addCloser("Transfer", closer)
}
