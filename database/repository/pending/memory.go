package pendingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatbook/models"
)

// MemoryStore keeps pending bookings in process memory. Entries are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.PendingBooking
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]models.PendingBooking), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, customerID string) (*models.PendingBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.entries[customerID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *MemoryStore) Put(_ context.Context, customerID string, booking *models.PendingBooking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := *booking
	b.CustomerID = customerID
	b.UpdatedAt = s.now().UTC()
	s.entries[customerID] = b
	booking.CustomerID, booking.UpdatedAt = b.CustomerID, b.UpdatedAt
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, customerID)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.PendingBooking, error) {
	s.mu.RLock()
	out := make([]models.PendingBooking, 0, len(s.entries))
	for _, b := range s.entries {
		out = append(out, b)
	}
	s.mu.RUnlock()
	sortByUpdate(out)
	return out, nil
}

func sortByUpdate(bookings []models.PendingBooking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].UpdatedAt.Equal(bookings[j].UpdatedAt) {
			return bookings[i].CustomerID < bookings[j].CustomerID
		}
		return bookings[i].UpdatedAt.Before(bookings[j].UpdatedAt)
	})
}
