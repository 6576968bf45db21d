package middleware

import (
	"context"
	"sync"

	"staykeeper/internal/app/commands"
)

// SerializedCommand is implemented by commands that must run
// at-most-one-in-flight per aggregate. Payments, charges and checkout share a
// booking's ledger, so the read-outstanding-gate-commit sequence has to see a
// consistent snapshot.
type SerializedCommand interface {
	commands.Command
	SerializationKey() string
}

// KeyedLocks hands out one mutex per key.
type KeyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedLocks() *KeyedLocks {
	return &KeyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyedLocks) lockFor(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	return l
}

// Serialize holds the command's lock for the duration of the dispatch.
// Commands without a SerializationKey pass through untouched.
func Serialize(locks *KeyedLocks) CommandMiddleware {
	if locks == nil {
		panic("middleware: keyed locks required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			serial, ok := cmd.(SerializedCommand)
			if !ok || serial.SerializationKey() == "" {
				return nextFn(ctx, cmd)
			}
			l := locks.lockFor(serial.SerializationKey())
			l.Lock()
			defer l.Unlock()
			return nextFn(ctx, cmd)
		})
	}
}
