package cvs

import (
	"context"
	"errors"
)

var (
	// ErrNotFound covers both a missing CV and one owned by someone else;
	// callers cannot tell the difference.
	ErrNotFound = errors.New("cv not found")

	// ErrInvalidInput indicates missing or malformed repository input.
	ErrInvalidInput = errors.New("invalid input")
)

// Repo defines persistence operations for CVs. Every read and write is
// filtered by the owning user.
type Repo interface {
	Create(ctx context.Context, cv CV) error
	GetByID(ctx context.Context, userID, id string) (CV, error)
	ListByUser(ctx context.Context, userID string) ([]CV, error)
	Update(ctx context.Context, cv CV) error
	Delete(ctx context.Context, userID, id string) error
}
