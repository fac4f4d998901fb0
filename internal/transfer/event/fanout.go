package event

import (
	"context"
	"errors"

	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/entity"
)

type Publisher interface {
	Publish(ctx context.Context, event entity.TransactionEvent) error
}

// Fanout hands every event to each publisher. One full or closed bus does not
// stop delivery to the others.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event entity.TransactionEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
