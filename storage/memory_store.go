package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"annonces-abidjan/models"
)

// MemoryStore keeps listings in process memory. It backs local demos and
// tests; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	listings []*models.Listing
	byID     map[int64]*models.Listing
	byURL    map[string]struct{}
}

// NewMemoryStore creates a store pre-filled with seed.
func NewMemoryStore(seed ...*models.Listing) *MemoryStore {
	s := &MemoryStore{
		byID:  make(map[int64]*models.Listing),
		byURL: make(map[string]struct{}),
	}
	_, _ = s.Save(context.Background(), seed)
	return s
}

func (s *MemoryStore) Save(_ context.Context, listings []*models.Listing) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, l := range listings {
		if _, dup := s.byID[l.ID]; dup {
			continue
		}
		if l.URL != "" {
			if _, dup := s.byURL[l.URL]; dup {
				continue
			}
			s.byURL[l.URL] = struct{}{}
		}
		cp := *l
		if cp.RetrievedAt.IsZero() {
			cp.RetrievedAt = time.Now()
		}
		s.listings = append(s.listings, &cp)
		s.byID[cp.ID] = &cp
		inserted++
	}
	return inserted, nil
}

func (s *MemoryStore) All(_ context.Context, f models.Filters) ([]*models.Listing, error) {
	return s.filter("", f), nil
}

func (s *MemoryStore) Today(_ context.Context, day time.Time, f models.Filters) ([]*models.Listing, error) {
	return s.filter(day.Format(models.DateLayout), f), nil
}

// filter walks the listings newest first and returns copies, so callers
// never alias stored records.
func (s *MemoryStore) filter(date string, f models.Filters) []*models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Listing, 0)
	for i := len(s.listings) - 1; i >= 0; i-- {
		l := s.listings[i]
		if date != "" && l.PublishedOn != date {
			continue
		}
		if !f.Match(l) {
			continue
		}
		cp := *l
		out = append(out, withDefaultImage(&cp))
	}
	return out
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return withDefaultImage(&cp), nil
}

func (s *MemoryStore) Neighborhoods(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, l := range s.listings {
		if l.Neighborhood == "" {
			continue
		}
		if _, ok := seen[l.Neighborhood]; ok {
			continue
		}
		seen[l.Neighborhood] = struct{}{}
		out = append(out, l.Neighborhood)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Statistics(_ context.Context, day time.Time) (models.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Summarize(s.listings, day), nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = nil
	s.byID = make(map[int64]*models.Listing)
	s.byURL = make(map[string]struct{})
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

var _ ListingStore = (*MemoryStore)(nil)

// DemoListings returns the demonstration dataset served when no database
// is configured. Publication dates are anchored on day so the "today"
// view is never empty.
func DemoListings(day time.Time) []*models.Listing {
	today := day.Format(models.DateLayout)
	yesterday := day.AddDate(0, 0, -1).Format(models.DateLayout)
	return []*models.Listing{
		{
			ID: 1, Title: "Appartement 3 pièces - Cocody",
			Description: "Bel appartement meublé dans un quartier calme",
			Price:       120000000, Type: models.TypeSale, Neighborhood: "Cocody",
			Surface: "85 m²", Bedrooms: 2, PublishedOn: today,
			Image: "https://via.placeholder.com/300x200/4CAF50/white?text=Appartement",
		},
		{
			ID: 2, Title: "Studio à louer - Plateau",
			Description: "Studio moderne avec climatisation",
			Price:       150000, Type: models.TypeRental, Neighborhood: "Plateau",
			Surface: "35 m²", Bedrooms: 1, PublishedOn: today,
			Image: "https://via.placeholder.com/300x200/2196F3/white?text=Studio",
		},
		{
			ID: 3, Title: "Villa 4 chambres - Marcory",
			Description: "Grande villa avec jardin et piscine",
			Price:       250000000, Type: models.TypeSale, Neighborhood: "Marcory",
			Surface: "200 m²", Bedrooms: 4, PublishedOn: yesterday,
			Image: "https://via.placeholder.com/300x200/FF9800/white?text=Villa",
		},
		{
			ID: 4, Title: "Terrain à Bingerville",
			Description: "Terrain plat de 500 m² près de la lagune",
			Price:       80000000, Type: models.TypeSale, Neighborhood: "Bingerville",
			Surface: "500 m²", Bedrooms: 0, PublishedOn: today,
			Image: "https://via.placeholder.com/300x200/9C27B0/white?text=Terrain",
		},
		{
			ID: 5, Title: "Duplex à louer - Yopougon",
			Description: "Duplex spacieux dans un quartier résidentiel",
			Price:       200000, Type: models.TypeRental, Neighborhood: "Yopougon",
			Surface: "120 m²", Bedrooms: 3, PublishedOn: today,
			Image: "https://via.placeholder.com/300x200/E91E63/white?text=Duplex",
		},
		{
			ID: 6, Title: "Appartement neuf - Rivera",
			Description: "Appartement neuf avec vue sur lagune",
			Price:       180000000, Type: models.TypeSale, Neighborhood: "Rivera",
			Surface: "100 m²", Bedrooms: 3, PublishedOn: today,
			Image: "https://via.placeholder.com/300x200/00BCD4/white?text=Neuf",
		},
	}
}
