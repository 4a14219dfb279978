package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"booking-service/internal/models"
)

// InMemoryStore keeps every table in maps. Transactions stage their writes
// and apply them atomically on commit; row locks are weighted semaphores so
// lock waits honour context cancellation.
type InMemoryStore struct {
	mutex sync.RWMutex
	seq   int64

	experiences     map[int64]*models.Experience
	experienceSlots map[int64]*models.ExperienceSlot
	artistSlots     map[int64]*models.ArtistSlot
	promoCodes      map[int64]*models.PromoCode
	customers       map[int64]*models.Customer
	suppliers       map[int64]*models.Supplier
	bookings        map[int64]*models.Booking
	payments        map[int64]*models.Payment

	locksMu  sync.Mutex
	rowLocks map[string]*semaphore.Weighted
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		experiences:     make(map[int64]*models.Experience),
		experienceSlots: make(map[int64]*models.ExperienceSlot),
		artistSlots:     make(map[int64]*models.ArtistSlot),
		promoCodes:      make(map[int64]*models.PromoCode),
		customers:       make(map[int64]*models.Customer),
		suppliers:       make(map[int64]*models.Supplier),
		bookings:        make(map[int64]*models.Booking),
		payments:        make(map[int64]*models.Payment),
		rowLocks:        make(map[string]*semaphore.Weighted),
	}
}

// assignID gives zero ids the next sequence value and keeps the sequence
// ahead of explicit ids. Caller holds s.mutex.
func (s *InMemoryStore) assignID(id *int64) {
	if *id == 0 {
		s.seq++
		*id = s.seq
		return
	}
	if *id > s.seq {
		s.seq = *id
	}
}

func (s *InMemoryStore) nextID() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var id int64
	s.assignID(&id)
	return id
}

func (s *InMemoryStore) AddExperience(e *models.Experience) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.assignID(&e.ID)
	c := *e
	s.experiences[e.ID] = &c
}

func (s *InMemoryStore) AddExperienceSlot(slot *models.ExperienceSlot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.assignID(&slot.ID)
	c := *slot
	c.Experience = nil
	s.experienceSlots[slot.ID] = &c
}

func (s *InMemoryStore) AddArtistSlot(slot *models.ArtistSlot) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.assignID(&slot.ID)
	c := *slot
	c.Artist = nil
	s.artistSlots[slot.ID] = &c
}

func (s *InMemoryStore) AddPromoCode(p *models.PromoCode) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.assignID(&p.ID)
	c := *p
	s.promoCodes[p.ID] = &c
}

func (s *InMemoryStore) AddCustomer(c *models.Customer) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.assignID(&c.ID)
	cc := *c
	s.customers[c.ID] = &cc
}

func (s *InMemoryStore) AddSupplier(sp *models.Supplier) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.assignID(&sp.ID)
	c := *sp
	s.suppliers[sp.ID] = &c
}

func (s *InMemoryStore) experienceSlotView(slot *models.ExperienceSlot) *models.ExperienceSlot {
	c := *slot
	if e, ok := s.experiences[c.ExperienceID]; ok {
		ec := *e
		c.Experience = &ec
	}
	return &c
}

func (s *InMemoryStore) artistSlotView(slot *models.ArtistSlot) *models.ArtistSlot {
	c := *slot
	if a, ok := s.suppliers[c.ArtistID]; ok {
		ac := *a
		c.Artist = &ac
	}
	return &c
}

func (s *InMemoryStore) GetExperienceSlot(ctx context.Context, id int64) (*models.ExperienceSlot, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	slot, ok := s.experienceSlots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.experienceSlotView(slot), nil
}

func (s *InMemoryStore) GetArtistSlot(ctx context.Context, id int64) (*models.ArtistSlot, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	slot, ok := s.artistSlots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.artistSlotView(slot), nil
}

// FindActivePromoCode matches codes case-insensitively, like the MySQL
// default collation does.
func (s *InMemoryStore) FindActivePromoCode(ctx context.Context, code string, at time.Time) (*models.PromoCode, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var found *models.PromoCode
	for _, p := range s.promoCodes {
		if !strings.EqualFold(p.Code, code) || !p.ActiveAt(at) {
			continue
		}
		if found == nil || p.ID < found.ID {
			found = p
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	c := *found
	return &c, nil
}

func (s *InMemoryStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b.Clone(), nil
}

func (s *InMemoryStore) ListPayments(ctx context.Context, bookingID int64) ([]*models.Payment, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	payments := make([]*models.Payment, 0)
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			payments = append(payments, p.Clone())
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID < payments[j].ID })
	return payments, nil
}

func (s *InMemoryStore) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cc := *c
	return &cc, nil
}

func (s *InMemoryStore) GetSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sp, ok := s.suppliers[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *sp
	return &c, nil
}

func (s *InMemoryStore) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

func (s *InMemoryStore) rowLock(key string) *semaphore.Weighted {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	sem, ok := s.rowLocks[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		s.rowLocks[key] = sem
	}
	return sem
}

// bookingUUIDTaken and transactionCodeTaken expect s.mutex to be held.
func (s *InMemoryStore) bookingUUIDTaken(uuid string, exceptID int64) bool {
	for id, b := range s.bookings {
		if id != exceptID && b.BookingUUID == uuid {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) transactionCodeTaken(code string, exceptID int64) bool {
	for id, p := range s.payments {
		if id != exceptID && p.TransactionCode == code {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx := &memoryTx{
		store:           s,
		held:            make(map[string]*semaphore.Weighted),
		bookings:        make(map[int64]*models.Booking),
		payments:        make(map[int64]*models.Payment),
		experienceSlots: make(map[int64]*models.ExperienceSlot),
		artistSlots:     make(map[int64]*models.ArtistSlot),
		artistVenues:    make(map[int64]models.Venue),
	}
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

type memoryTx struct {
	store *InMemoryStore
	held  map[string]*semaphore.Weighted

	bookings        map[int64]*models.Booking
	payments        map[int64]*models.Payment
	experienceSlots map[int64]*models.ExperienceSlot
	artistSlots     map[int64]*models.ArtistSlot
	// venue writes do not hold the slot lock, so only the venue columns are
	// merged onto the row at commit
	artistVenues map[int64]models.Venue
}

func (tx *memoryTx) lock(ctx context.Context, key string) error {
	if _, ok := tx.held[key]; ok {
		return nil
	}
	sem := tx.store.rowLock(key)
	if err := sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to lock %s: %w", key, err)
	}
	tx.held[key] = sem
	return nil
}

func (tx *memoryTx) release() {
	for key, sem := range tx.held {
		sem.Release(1)
		delete(tx.held, key)
	}
}

func (tx *memoryTx) commit() error {
	s := tx.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for id, b := range tx.bookings {
		if s.bookingUUIDTaken(b.BookingUUID, id) {
			return fmt.Errorf("%w: booking_uuid %s", ErrDuplicate, b.BookingUUID)
		}
	}
	for id, p := range tx.payments {
		if s.transactionCodeTaken(p.TransactionCode, id) {
			return fmt.Errorf("%w: transaction_code %s", ErrDuplicate, p.TransactionCode)
		}
	}

	for id, b := range tx.bookings {
		s.bookings[id] = b
	}
	for id, p := range tx.payments {
		s.payments[id] = p
	}
	for id, slot := range tx.experienceSlots {
		s.experienceSlots[id] = slot
	}
	for id, slot := range tx.artistSlots {
		s.artistSlots[id] = slot
	}
	for id, venue := range tx.artistVenues {
		current, ok := s.artistSlots[id]
		if !ok {
			continue
		}
		c := *current
		c.SetVenue(venue)
		s.artistSlots[id] = &c
	}
	return nil
}

func (tx *memoryTx) booking(id int64) (*models.Booking, bool) {
	if b, ok := tx.bookings[id]; ok {
		return b.Clone(), true
	}
	tx.store.mutex.RLock()
	defer tx.store.mutex.RUnlock()
	b, ok := tx.store.bookings[id]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

func (tx *memoryTx) payment(id int64) (*models.Payment, bool) {
	if p, ok := tx.payments[id]; ok {
		return p.Clone(), true
	}
	tx.store.mutex.RLock()
	defer tx.store.mutex.RUnlock()
	p, ok := tx.store.payments[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (tx *memoryTx) experienceSlot(id int64) (*models.ExperienceSlot, bool) {
	if slot, ok := tx.experienceSlots[id]; ok {
		c := *slot
		return &c, true
	}
	tx.store.mutex.RLock()
	defer tx.store.mutex.RUnlock()
	slot, ok := tx.store.experienceSlots[id]
	if !ok {
		return nil, false
	}
	c := *slot
	return &c, true
}

func (tx *memoryTx) artistSlot(id int64) (*models.ArtistSlot, bool) {
	slot, ok := tx.artistSlots[id]
	if !ok {
		tx.store.mutex.RLock()
		slot, ok = tx.store.artistSlots[id]
		tx.store.mutex.RUnlock()
		if !ok {
			return nil, false
		}
	}
	c := *slot
	if venue, staged := tx.artistVenues[id]; staged {
		c.SetVenue(venue)
	}
	return &c, true
}

func (tx *memoryTx) LockBooking(ctx context.Context, id int64) (*models.Booking, error) {
	if err := tx.lock(ctx, fmt.Sprintf("booking:%d", id)); err != nil {
		return nil, err
	}
	b, ok := tx.booking(id)
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (tx *memoryTx) LockExperienceSlot(ctx context.Context, id int64, guests int) (SlotLock, error) {
	if err := tx.lock(ctx, fmt.Sprintf("experience_slot:%d", id)); err != nil {
		return nil, err
	}
	slot, ok := tx.experienceSlot(id)
	if !ok || !slot.IsActive || slot.RemainingGuestLimit < guests {
		return nil, ErrNotFound
	}
	return &memorySlotLock{id: id, consume: func() error {
		current, _ := tx.experienceSlot(id)
		current.RemainingGuestLimit -= guests
		tx.experienceSlots[id] = current
		return nil
	}}, nil
}

func (tx *memoryTx) LockArtistSlot(ctx context.Context, id int64) (SlotLock, error) {
	if err := tx.lock(ctx, fmt.Sprintf("artist_slot:%d", id)); err != nil {
		return nil, err
	}
	slot, ok := tx.artistSlot(id)
	if !ok || !slot.IsActive || slot.IsBooked {
		return nil, ErrNotFound
	}
	return &memorySlotLock{id: id, consume: func() error {
		current, _ := tx.artistSlot(id)
		current.IsBooked = true
		tx.artistSlots[id] = current
		return nil
	}}, nil
}

func (tx *memoryTx) GetPendingPayment(ctx context.Context, bookingID int64) (*models.Payment, error) {
	candidates := make(map[int64]*models.Payment)
	tx.store.mutex.RLock()
	for id, p := range tx.store.payments {
		if p.BookingID == bookingID {
			candidates[id] = p
		}
	}
	tx.store.mutex.RUnlock()
	for id, p := range tx.payments {
		if p.BookingID == bookingID {
			candidates[id] = p
		}
	}

	var latest *models.Payment
	for _, p := range candidates {
		if p.Status != models.PaymentStatusPending {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = p
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest.Clone(), nil
}

func (tx *memoryTx) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx.store.mutex.RLock()
	taken := tx.store.bookingUUIDTaken(booking.BookingUUID, 0)
	tx.store.mutex.RUnlock()
	for _, b := range tx.bookings {
		if b.BookingUUID == booking.BookingUUID {
			taken = true
		}
	}
	if taken {
		return fmt.Errorf("%w: booking_uuid %s", ErrDuplicate, booking.BookingUUID)
	}

	booking.ID = tx.store.nextID()
	tx.bookings[booking.ID] = booking.Clone()
	return nil
}

func (tx *memoryTx) UpdateBooking(ctx context.Context, booking *models.Booking) error {
	if _, ok := tx.booking(booking.ID); !ok {
		return ErrNotFound
	}
	tx.bookings[booking.ID] = booking.Clone()
	return nil
}

func (tx *memoryTx) CreatePayment(ctx context.Context, payment *models.Payment) error {
	tx.store.mutex.RLock()
	taken := tx.store.transactionCodeTaken(payment.TransactionCode, 0)
	tx.store.mutex.RUnlock()
	for _, p := range tx.payments {
		if p.TransactionCode == payment.TransactionCode {
			taken = true
		}
	}
	if taken {
		return fmt.Errorf("%w: transaction_code %s", ErrDuplicate, payment.TransactionCode)
	}

	payment.ID = tx.store.nextID()
	tx.payments[payment.ID] = payment.Clone()
	return nil
}

func (tx *memoryTx) UpdatePayment(ctx context.Context, payment *models.Payment) error {
	if _, ok := tx.payment(payment.ID); !ok {
		return ErrNotFound
	}
	tx.payments[payment.ID] = payment.Clone()
	return nil
}

func (tx *memoryTx) UpdateArtistSlotVenue(ctx context.Context, slotID int64, venue models.Venue) error {
	if _, ok := tx.artistSlot(slotID); !ok {
		return ErrNotFound
	}
	tx.artistVenues[slotID] = venue
	return nil
}

type memorySlotLock struct {
	id       int64
	consumed bool
	consume  func() error
}

func (l *memorySlotLock) SlotID() int64 {
	return l.id
}

func (l *memorySlotLock) Consume(ctx context.Context) error {
	if l.consumed {
		return ErrLockConsumed
	}
	l.consumed = true
	return l.consume()
}
