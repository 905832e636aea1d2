package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cv-builder-backend/internal/cvs"
)

var (
	// ErrNoDraft means no CV has been loaded or created yet.
	ErrNoDraft = errors.New("no draft loaded")
	// ErrLoadInFlight means a load for this controller is already running.
	ErrLoadInFlight = errors.New("load already in flight")
	// ErrSaveInFlight means a save is already running; the caller's save
	// request is dropped, not queued.
	ErrSaveInFlight = errors.New("save already in flight")
	// ErrStaleLoad means the draft changed while the load was on the wire,
	// so the fetched copy was discarded.
	ErrStaleLoad = errors.New("stale load discarded")
)

// Controller holds one CV draft as a JSON document and mediates between
// local edits and the HTTP API. At most one load and one save are in
// flight at any time. All methods are safe for concurrent use.
type Controller struct {
	api API

	mu        sync.Mutex
	cv        map[string]any
	lastSaved string
	loading   bool
	saving    bool
	version   uint64
}

// NewController constructs a Controller around an API client.
func NewController(api API) *Controller {
	return &Controller{api: api}
}

// Load fetches the CV and adopts it as the draft. A load arriving while
// another is in flight returns ErrLoadInFlight without touching the
// network. If the draft was mutated or saved while the fetch was on the
// wire, the fetched copy is discarded and ErrStaleLoad is returned.
func (c *Controller) Load(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrLoadInFlight
	}
	c.loading = true
	started := c.version
	c.mu.Unlock()

	doc, err := c.api.GetCV(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		return err
	}
	if c.version != started {
		return ErrStaleLoad
	}
	c.cv = doc
	c.lastSaved = canonical(doc)
	return nil
}

// Create asks the server to insert a new CV and adopts the returned copy
// as the draft.
func (c *Controller) Create(ctx context.Context, doc map[string]any) error {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInFlight
	}
	c.saving = true
	c.mu.Unlock()

	saved, err := c.api.CreateCV(ctx, doc)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	if err != nil {
		return err
	}
	c.adopt(saved)
	return nil
}

// MutateField sets one field of the draft in place. The path uses dots
// for object keys and decimal indices for list entries, for example
// "personalInfo.fullName" or "education.0.degree".
func (c *Controller) MutateField(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cv == nil {
		return ErrNoDraft
	}
	if err := setPath(c.cv, path, value); err != nil {
		return err
	}
	c.version++
	return nil
}

// Save merges patch into the draft and persists the result. A nil patch
// saves the draft as-is. If the merged document equals the last saved
// snapshot the network call is skipped entirely. A save arriving while
// another is in flight is dropped with ErrSaveInFlight; on transport
// failure the draft keeps the unsaved edits so the caller can retry.
func (c *Controller) Save(ctx context.Context, patch map[string]any) error {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInFlight
	}
	if c.cv == nil {
		c.mu.Unlock()
		return ErrNoDraft
	}

	merged := copyDoc(c.cv)
	for key, value := range patch {
		merged[key] = value
	}
	if canonical(merged) == c.lastSaved {
		c.cv = merged
		c.mu.Unlock()
		return nil
	}

	id, _ := merged["id"].(string)
	if id == "" {
		c.mu.Unlock()
		return ErrNoDraft
	}
	c.saving = true
	c.mu.Unlock()

	saved, err := c.api.UpdateCV(ctx, id, merged)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.saving = false
	if err != nil {
		return err
	}
	c.adopt(saved)
	return nil
}

// Draft returns a deep copy of the current draft, or nil when nothing is
// loaded.
func (c *Controller) Draft() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cv == nil {
		return nil
	}
	return copyDoc(c.cv)
}

// Dirty reports whether the draft differs from the last saved snapshot.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cv == nil {
		return false
	}
	return canonical(c.cv) != c.lastSaved
}

// Progress computes the completion percentage of the current draft
// without a round trip. Returns 0 when nothing is loaded.
func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cv == nil {
		return 0
	}
	return cvs.ComputeProgress(c.cv)
}

// adopt replaces the draft with the server copy. Caller holds c.mu.
func (c *Controller) adopt(saved map[string]any) {
	c.cv = saved
	c.lastSaved = canonical(saved)
	c.version++
}

// canonical renders a document to a comparable form. encoding/json sorts
// map keys, so equal documents yield equal strings.
func canonical(doc map[string]any) string {
	payload, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return string(payload)
}

func copyDoc(doc map[string]any) map[string]any {
	payload, err := json.Marshal(doc)
	if err != nil {
		return map[string]any{}
	}
	var out map[string]any
	if err := json.Unmarshal(payload, &out); err != nil {
		return map[string]any{}
	}
	return out
}

// setPath walks doc along a dotted path and sets the final segment.
func setPath(doc map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	if len(segments) == 0 || path == "" {
		return fmt.Errorf("empty field path")
	}

	var current any = doc
	for i, segment := range segments {
		last := i == len(segments)-1
		switch node := current.(type) {
		case map[string]any:
			if last {
				node[segment] = value
				return nil
			}
			next, ok := node[segment]
			if !ok {
				next = map[string]any{}
				node[segment] = next
			}
			current = next
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(node) {
				return fmt.Errorf("field path %q: bad list index %q", path, segment)
			}
			if last {
				node[index] = value
				return nil
			}
			current = node[index]
		default:
			return fmt.Errorf("field path %q: segment %q is not an object or list", path, segment)
		}
	}
	return nil
}
