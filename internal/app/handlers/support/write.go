package support

import (
	"context"

	"staykeeper/internal/app/outbox"
	"staykeeper/internal/app/uow"
	"staykeeper/internal/domain/shared/events"
)

// EventSource is satisfied by aggregates embedding events.EventRecorder.
type EventSource interface {
	PendingEvents() []events.DomainEvent
	ClearEvents()
}

// BeginWriteUnit reuses a unit of work from context (transaction middleware)
// or begins a managed one. The returned finish func commits on true, rolls
// back on false, and is nil when the unit is externally managed.
func BeginWriteUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(commit bool) error, error) {
	unit, ok := uow.FromContext(ctx)
	if ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	newUnit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := ctx
	if injector, ok := newUnit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, newUnit)
	finish := func(commit bool) error {
		if commit {
			return newUnit.Commit(execCtx)
		}
		return newUnit.Rollback(execCtx)
	}
	return newUnit, execCtx, finish, nil
}

// DrainEvents moves pending events from the aggregates into the outbox.
func DrainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, sources ...EventSource) error {
	for _, src := range sources {
		if src == nil {
			continue
		}
		pending := src.PendingEvents()
		src.ClearEvents()
		if err := outbox.RecordDomainEvents(ctx, box, encoder, pending); err != nil {
			return err
		}
	}
	return nil
}
