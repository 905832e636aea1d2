package cvs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cv-builder-backend/internal/shared/metrics"
)

// Input carries the client-editable fields of a CV. Identity fields and
// progress are always server-assigned.
type Input struct {
	Title        string       `json:"title"`
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Education    []Education  `json:"education"`
	Experience   []Experience `json:"experience"`
	Skills       []Skill      `json:"skills"`
	Projects     []Project    `json:"projects"`
}

// Patch is a partial update. Nil fields are left untouched; provided fields
// replace the stored section wholesale, matching the editor's save payloads.
type Patch struct {
	Title        *string       `json:"title"`
	PersonalInfo *PersonalInfo `json:"personalInfo"`
	Education    *[]Education  `json:"education"`
	Experience   *[]Experience `json:"experience"`
	Skills       *[]Skill      `json:"skills"`
	Projects     *[]Project    `json:"projects"`
}

// Service contains CV business logic. Progress is recomputed on every
// write; a client-sent value is never trusted.
type Service struct {
	Repo Repo
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// Create inserts a new CV owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in Input) (CV, error) {
	if strings.TrimSpace(userID) == "" {
		return CV{}, ErrInvalidInput
	}

	now := s.now().UTC()
	cv := CV{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        strings.TrimSpace(in.Title),
		PersonalInfo: in.PersonalInfo,
		Education:    in.Education,
		Experience:   in.Experience,
		Skills:       in.Skills,
		Projects:     in.Projects,
		LastUpdated:  now,
		CreatedAt:    now,
	}
	cv.emptySections()
	cv.Progress = Progress(cv)

	started := metrics.NowMillis()
	if err := s.Repo.Create(ctx, cv); err != nil {
		return CV{}, err
	}
	metrics.IncCVSaved()
	metrics.ObserveSaveDurationMs(metrics.NowMillis() - started)
	return cv, nil
}

// Get fetches one CV, scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, id string) (CV, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return CV{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, id)
}

// List returns the user's CVs, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]CV, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Update merges the patch into the stored CV. The stored id and owner are
// preserved regardless of what the patch carries, progress is recomputed,
// and lastUpdated is bumped.
func (s *Service) Update(ctx context.Context, userID, id string, patch Patch) (CV, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return CV{}, ErrInvalidInput
	}

	cv, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return CV{}, err
	}

	if patch.Title != nil {
		cv.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.PersonalInfo != nil {
		cv.PersonalInfo = *patch.PersonalInfo
	}
	if patch.Education != nil {
		cv.Education = *patch.Education
	}
	if patch.Experience != nil {
		cv.Experience = *patch.Experience
	}
	if patch.Skills != nil {
		cv.Skills = *patch.Skills
	}
	if patch.Projects != nil {
		cv.Projects = *patch.Projects
	}
	cv.emptySections()
	cv.Progress = Progress(cv)
	cv.LastUpdated = s.now().UTC()

	started := metrics.NowMillis()
	if err := s.Repo.Update(ctx, cv); err != nil {
		return CV{}, err
	}
	metrics.IncCVSaved()
	metrics.ObserveSaveDurationMs(metrics.NowMillis() - started)
	return cv, nil
}

// Delete removes the CV matching id+owner.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userID, id)
}
