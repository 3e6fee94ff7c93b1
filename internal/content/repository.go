package content

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"groundcms/internal/logging"
	"groundcms/internal/store"
)

// BlobDeleter removes an uploaded blob by its public URL. Deletion is
// best-effort at every call site: a blob failure never blocks the
// record operation that triggered it.
type BlobDeleter interface {
	Delete(ctx context.Context, url string) error
}

// ChangeRecorder appends one audit entry per content mutation.
// Implemented by the activity log.
type ChangeRecorder interface {
	RecordChange(ctx context.Context, action, details, section, itemID string) error
}

// Deps bundles the collaborators shared by all repositories.
// Blobs and Changes may be nil, disabling image cascade and auditing.
type Deps struct {
	Store   store.Store
	Blobs   BlobDeleter
	Changes ChangeRecorder
	Logger  logging.Logger
	Clock   Clock
	IDGen   IDGenerator
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.Clock == nil {
		d.Clock = RealClock{}
	}
	if d.IDGen == nil {
		d.IDGen = UUIDGenerator{}
	}
	return d
}

// Repository is the CRUD layer for one content collection. The whole
// collection lives as a single id-to-record map under one storage key,
// so each mutation reads the document, changes one entry and writes the
// document back atomically. A per-repository mutex serializes mutations
// within this process; concurrent writers in separate processes remain
// last-write-wins.
type Repository[T any] struct {
	deps    Deps
	key     string
	section string
	meta    func(*T) *Meta

	mu sync.Mutex
}

func newRepository[T any](deps Deps, key, section string, meta func(*T) *Meta) *Repository[T] {
	return &Repository[T]{
		deps:    deps.withDefaults(),
		key:     key,
		section: section,
		meta:    meta,
	}
}

// NewMachines creates the machine collection repository.
func NewMachines(deps Deps) *Repository[Machine] {
	return newRepository(deps, KeyMachines, SectionMachines, func(m *Machine) *Meta { return &m.Meta })
}

// NewServices creates the service collection repository.
func NewServices(deps Deps) *Repository[Service] {
	return newRepository(deps, KeyServices, SectionServices, func(s *Service) *Meta { return &s.Meta })
}

// NewProjects creates the project collection repository.
func NewProjects(deps Deps) *Repository[Project] {
	return newRepository(deps, KeyProjects, SectionProjects, func(p *Project) *Meta { return &p.Meta })
}

// Section returns the audit section tag for this repository.
func (r *Repository[T]) Section() string { return r.section }

// Meta exposes the embedded record metadata of rec.
func (r *Repository[T]) Meta(rec *T) *Meta { return r.meta(rec) }

func (r *Repository[T]) load(ctx context.Context) map[string]T {
	return store.GetJSON(ctx, r.deps.Store, r.key, map[string]T{})
}

func (r *Repository[T]) persist(ctx context.Context, records map[string]T) error {
	return store.SetJSON(ctx, r.deps.Store, r.key, records)
}

// recordChange appends an audit entry, best-effort. A failed audit
// write must not fail the content mutation it describes.
func (r *Repository[T]) recordChange(ctx context.Context, action, details, itemID string) {
	if r.deps.Changes == nil {
		return
	}
	if err := r.deps.Changes.RecordChange(ctx, action, details, r.section, itemID); err != nil {
		r.deps.Logger.Warn("recording change failed", "section", r.section, "action", action, "error", err)
	}
}

// List returns all records, newest first. Read failures degrade to an
// empty list rather than erroring.
func (r *Repository[T]) List(ctx context.Context) []T {
	records := r.load(ctx)

	out := make([]T, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		mi, mj := r.meta(&out[i]), r.meta(&out[j])
		if !mi.CreatedAt.Equal(mj.CreatedAt) {
			return mi.CreatedAt.After(mj.CreatedAt)
		}
		return mi.ID < mj.ID
	})
	return out
}

// GetByID returns the record with the given id. The second return value
// reports whether it exists; absence is not an error.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, bool) {
	records := r.load(ctx)
	rec, ok := records[id]
	if !ok {
		return nil, false
	}
	return &rec, true
}

// Create assigns a fresh id, stamps createdAt/updatedAt, persists the
// collection and appends one audit entry. The image URL, if any, is
// attached by a follow-up Update once the upload completes; creation
// and image attachment are deliberately two sequential writes.
func (r *Repository[T]) Create(ctx context.Context, rec *T) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)

	m := r.meta(rec)
	m.ID = r.deps.IDGen.New()
	now := r.deps.Clock.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	records[m.ID] = *rec
	if err := r.persist(ctx, records); err != nil {
		return nil, fmt.Errorf("creating %s record: %w", r.section, err)
	}

	r.deps.Logger.Info("record created", "section", r.section, "id", m.ID, "title", m.Title)
	r.recordChange(ctx, "create", fmt.Sprintf("Created %q", m.Title), m.ID)
	return rec, nil
}

// Update applies a partial mutation to the record with the given id.
// The apply callback sets exactly the fields the caller provided, which
// keeps "field omitted" distinguishable from "field cleared". ID and
// createdAt survive the callback untouched; updatedAt is refreshed.
// Returns found=false when the id is absent, which is not an error.
func (r *Repository[T]) Update(ctx context.Context, id string, apply func(*T)) (*T, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	rec, ok := records[id]
	if !ok {
		return nil, false, nil
	}

	m := r.meta(&rec)
	createdAt := m.CreatedAt

	apply(&rec)

	m = r.meta(&rec)
	m.ID = id
	m.CreatedAt = createdAt
	m.UpdatedAt = r.deps.Clock.Now().UTC()

	records[id] = rec
	if err := r.persist(ctx, records); err != nil {
		return nil, true, fmt.Errorf("updating %s record %s: %w", r.section, id, err)
	}

	r.deps.Logger.Info("record updated", "section", r.section, "id", id)
	r.recordChange(ctx, "update", fmt.Sprintf("Updated %q", m.Title), id)
	return &rec, true, nil
}

// SetImage attaches (or, with an empty url, detaches) the image URL of
// a record. This is the follow-up write after an upload completes.
func (r *Repository[T]) SetImage(ctx context.Context, id, url string) (*T, bool, error) {
	return r.Update(ctx, id, func(rec *T) {
		r.meta(rec).Image = url
	})
}

// Delete removes the record with the given id. If the record has an
// associated image, its blob is deleted first, best-effort: a blob
// failure is logged and the record deletion proceeds regardless.
// Returns false when the id is absent; the collection is left untouched
// and nothing is audited.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.load(ctx)
	rec, ok := records[id]
	if !ok {
		return false, nil
	}

	m := r.meta(&rec)
	if m.Image != "" && r.deps.Blobs != nil {
		if err := r.deps.Blobs.Delete(ctx, m.Image); err != nil {
			r.deps.Logger.Warn("deleting image blob failed", "section", r.section, "id", id, "url", m.Image, "error", err)
		}
	}

	delete(records, id)
	if err := r.persist(ctx, records); err != nil {
		return true, fmt.Errorf("deleting %s record %s: %w", r.section, id, err)
	}

	r.deps.Logger.Info("record deleted", "section", r.section, "id", id, "title", m.Title)
	r.recordChange(ctx, "delete", fmt.Sprintf("Deleted %q", m.Title), id)
	return true, nil
}
