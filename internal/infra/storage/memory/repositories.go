package memory

import (
	"context"
	"errors"
	"sync"

	domainbooking "staykeeper/internal/domain/booking"
	domainledger "staykeeper/internal/domain/ledger"
	domainunit "staykeeper/internal/domain/unit"
)

// ErrConcurrentUpdate is returned when a save races another writer.
var ErrConcurrentUpdate = errors.New("memory: concurrent update detected")

// UnitRepository is an in-memory implementation for demo purposes.
type UnitRepository struct {
	mu    sync.RWMutex
	items map[domainunit.UnitID]*domainunit.Unit
}

// NewUnitRepository builds an empty repository.
func NewUnitRepository() *UnitRepository {
	return &UnitRepository{items: make(map[domainunit.UnitID]*domainunit.Unit)}
}

// ByID returns a unit or unit.ErrUnitNotFound.
func (r *UnitRepository) ByID(ctx context.Context, id domainunit.UnitID) (*domainunit.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domainunit.ErrUnitNotFound
	}
	cp := *u
	return &cp, nil
}

// Save stores/updates a unit entry.
func (r *UnitRepository) Save(ctx context.Context, u *domainunit.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

// BookingRepository keeps bookings in a map guarded by a read-write lock.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

// NewBookingRepository builds an empty repository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

// ByID returns a booking or booking.ErrBookingNotFound.
func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

// Save stores a booking, bumping its optimistic version the way the mongo
// repository does so behavior matches across storage modes.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[b.ID]; ok && existing.Version != b.Version {
		return ErrConcurrentUpdate
	}
	b.Version++
	cp := *b
	r.items[b.ID] = &cp
	return nil
}

// ListBlockingByUnit returns the unit's bookings whose status still holds dates.
func (r *BookingRepository) ListBlockingByUnit(ctx context.Context, id domainunit.UnitID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.UnitID != id || !b.Status.Blocking() {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

// FolioRepository keeps folios keyed by booking id.
type FolioRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainledger.Folio
}

// NewFolioRepository builds an empty repository.
func NewFolioRepository() *FolioRepository {
	return &FolioRepository{items: make(map[domainbooking.BookingID]*domainledger.Folio)}
}

// ByBooking returns a folio or ledger.ErrFolioNotFound.
func (r *FolioRepository) ByBooking(ctx context.Context, id domainbooking.BookingID) (*domainledger.Folio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.items[id]
	if !ok {
		return nil, domainledger.ErrFolioNotFound
	}
	cp := cloneFolio(f)
	return cp, nil
}

// Save stores a folio with the same version bump as the booking repository.
func (r *FolioRepository) Save(ctx context.Context, f *domainledger.Folio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[f.BookingID]; ok && existing.Version != f.Version {
		return ErrConcurrentUpdate
	}
	f.Version++
	r.items[f.BookingID] = cloneFolio(f)
	return nil
}

func cloneFolio(f *domainledger.Folio) *domainledger.Folio {
	cp := *f
	cp.Payments = append([]domainledger.Payment(nil), f.Payments...)
	cp.Charges = append([]domainledger.Charge(nil), f.Charges...)
	cp.Refunds = append([]domainledger.Refund(nil), f.Refunds...)
	return &cp
}
