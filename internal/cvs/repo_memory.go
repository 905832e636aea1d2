package cvs

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]CV // userId -> cvs
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]CV),
	}
}

// Create stores a new CV for its owner.
func (r *MemoryRepo) Create(ctx context.Context, cv CV) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(cv.UserID) == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[cv.UserID] = append(r.data[cv.UserID], cv)
	return nil
}

// GetByID returns the CV only when it belongs to userID.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (CV, error) {
	if err := ctx.Err(); err != nil {
		return CV{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cv := range r.data[userID] {
		if cv.ID == id {
			return cv, nil
		}
	}
	return CV{}, ErrNotFound
}

// ListByUser returns the user's CVs, most recently updated first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]CV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	stored := r.data[userID]
	r.mu.RUnlock()

	out := make([]CV, len(stored))
	copy(out, stored)
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out, nil
}

// Update replaces the stored CV matching id+owner.
func (r *MemoryRepo) Update(ctx context.Context, cv CV) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.data[cv.UserID]
	for i := range stored {
		if stored[i].ID == cv.ID {
			stored[i] = cv
			r.data[cv.UserID] = stored
			return nil
		}
	}
	return ErrNotFound
}

// Delete hard-deletes the CV matching id+owner.
func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.data[userID]
	for i := range stored {
		if stored[i].ID == id {
			r.data[userID] = append(stored[:i], stored[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
