// Package memory provides an in-process record store for development and tests.
// Records are lost when the process exits. It mirrors the Postgres repositories'
// semantics: unique usernames and emails, owner-bound updates and deletes, and
// domain.ErrResourceNotFound for missing rows.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

// Store holds all tables behind one lock.
type Store struct {
	mu       sync.RWMutex
	clock    func() time.Time
	users    map[int64]domain.User
	listings map[int64]domain.Listing
	media    map[int64]domain.MediaFile
	nextUser int64
	nextList int64
	nextFile int64
}

var (
	_ repository.UserRepository    = (*Users)(nil)
	_ repository.ListingRepository = (*Listings)(nil)
	_ repository.MediaRepository   = (*Media)(nil)
)

// New creates an empty store. A nil clock means time.Now.
func New(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{
		clock:    clock,
		users:    make(map[int64]domain.User),
		listings: make(map[int64]domain.Listing),
		media:    make(map[int64]domain.MediaFile),
	}
}

// Users returns the users table.
func (s *Store) Users() *Users { return &Users{s: s} }

// Listings returns the listings table.
func (s *Store) Listings() *Listings { return &Listings{s: s} }

// Media returns the media_files table.
func (s *Store) Media() *Media { return &Media{s: s} }

// DeleteUser removes a user and everything it owns, as the foreign keys would.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	for lid, l := range s.listings {
		if l.SellerID == id {
			delete(s.listings, lid)
		}
	}
	for mid, m := range s.media {
		if (m.UserID != nil && *m.UserID == id) || (m.ListingID != nil && s.listings[*m.ListingID].ID == 0) {
			delete(s.media, mid)
		}
	}
}

// Users implements repository.UserRepository.
type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, user *domain.User) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return &domain.DuplicateIdentityError{Field: "username"}
		}
		if existing.Email == user.Email {
			return &domain.DuplicateIdentityError{Field: "email"}
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt = s.clock()
	s.users[user.ID] = *user
	return nil
}

func (u *Users) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	return &user, nil
}

func (u *Users) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	for _, user := range u.s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, domain.ErrResourceNotFound
}

func (u *Users) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	var byEmail *domain.User
	for _, user := range u.s.users {
		if user.Username == username {
			return &user, nil
		}
		if user.Email == email && byEmail == nil {
			found := user
			byEmail = &found
		}
	}
	if byEmail != nil {
		return byEmail, nil
	}
	return nil, domain.ErrResourceNotFound
}

// Listings implements repository.ListingRepository.
type Listings struct{ s *Store }

func (l *Listings) Create(_ context.Context, sellerID int64, draft domain.ListingDraft) (*domain.Listing, error) {
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextList++
	listing := domain.NewListing(s.nextList, sellerID, draft, s.clock())
	s.listings[listing.ID] = *listing
	return listing, nil
}

func (l *Listings) FindByID(_ context.Context, id int64) (*domain.Listing, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	listing, ok := l.s.listings[id]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	return &listing, nil
}

func (l *Listings) List(_ context.Context, filter repository.ListingFilter) ([]domain.Listing, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()

	keyword := strings.ToLower(strings.TrimSpace(filter.Keyword))
	var matched []domain.Listing
	for _, listing := range l.s.listings {
		if filter.SellerID != nil && listing.SellerID != *filter.SellerID {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(listing.Title), keyword) &&
			!strings.Contains(strings.ToLower(listing.Description), keyword) {
			continue
		}
		matched = append(matched, listing)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (l *Listings) Update(_ context.Context, listing *domain.Listing, ownerID int64) error {
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.listings[listing.ID]
	if !ok || stored.SellerID != ownerID {
		return domain.ErrResourceNotFound
	}
	stored.Title = listing.Title
	stored.Description = listing.Description
	stored.Price = listing.Price
	stored.UpdatedAt = s.clock()
	s.listings[listing.ID] = stored
	listing.UpdatedAt = stored.UpdatedAt
	return nil
}

func (l *Listings) Delete(_ context.Context, id, ownerID int64) error {
	s := l.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.listings[id]
	if !ok || stored.SellerID != ownerID {
		return domain.ErrResourceNotFound
	}
	delete(s.listings, id)
	for mid, m := range s.media {
		if m.ListingID != nil && *m.ListingID == id {
			delete(s.media, mid)
		}
	}
	return nil
}

// Media implements repository.MediaRepository.
type Media struct{ s *Store }

func (m *Media) Create(_ context.Context, media *domain.MediaFile) error {
	s := m.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextFile++
	media.ID = s.nextFile
	media.UploadedAt = s.clock()
	s.media[media.ID] = *media
	return nil
}

func (m *Media) ListByListing(_ context.Context, listingID int64) ([]domain.MediaFile, error) {
	return m.filter(func(f domain.MediaFile) bool {
		return f.ListingID != nil && *f.ListingID == listingID
	}), nil
}

func (m *Media) ListByUser(_ context.Context, userID int64) ([]domain.MediaFile, error) {
	return m.filter(func(f domain.MediaFile) bool {
		return f.UserID != nil && *f.UserID == userID
	}), nil
}

func (m *Media) filter(keep func(domain.MediaFile) bool) []domain.MediaFile {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var result []domain.MediaFile
	for _, f := range m.s.media {
		if keep(f) {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
