package customization

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domain "github.com/turtacn/PrintShop-Customizer/internal/domain/customization"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/pricing"
	"github.com/turtacn/PrintShop-Customizer/internal/domain/render"
	"github.com/turtacn/PrintShop-Customizer/internal/testutil"
	"github.com/turtacn/PrintShop-Customizer/pkg/errors"
	"github.com/turtacn/PrintShop-Customizer/pkg/types/common"
)

// memRepo is an in-memory Repository with the same version semantics as the
// Postgres implementation.
type memRepo struct {
	mu      sync.Mutex
	catalog *domain.Catalog
	rows    map[domain.DesignID]domain.DesignRecord
	updates int
}

func newMemRepo(catalog *domain.Catalog) *memRepo {
	return &memRepo{catalog: catalog, rows: map[domain.DesignID]domain.DesignRecord{}}
}

func (r *memRepo) Create(_ context.Context, d *domain.Design) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[d.ID()]; ok {
		return errors.Conflict("design already exists")
	}
	d.SetVersion(1)
	r.rows[d.ID()] = d.Record()
	return nil
}

func (r *memRepo) Update(_ context.Context, d *domain.Design) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[d.ID()]
	if !ok {
		return errors.New(errors.ErrCodeDesignNotFound, "design not found")
	}
	if cur.Version != d.Version() {
		return errors.New(errors.ErrCodeDesignVersionConflict, "design was modified concurrently")
	}
	d.SetVersion(cur.Version + 1)
	r.rows[d.ID()] = d.Record()
	r.updates++
	return nil
}

func (r *memRepo) Get(_ context.Context, id domain.DesignID) (*domain.Design, error) {
	r.mu.Lock()
	rec, ok := r.rows[id]
	r.mu.Unlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeDesignNotFound, "design not found")
	}
	return domain.RehydrateDesign(r.catalog, rec)
}

func (r *memRepo) Delete(_ context.Context, id domain.DesignID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return errors.New(errors.ErrCodeDesignNotFound, "design not found")
	}
	delete(r.rows, id)
	return nil
}

// bump simulates a concurrent writer.
func (r *memRepo) bump(id domain.DesignID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.rows[id]
	rec.Version++
	r.rows[id] = rec
}

type memCache struct {
	mu   sync.Mutex
	recs map[domain.DesignID]domain.DesignRecord
	hits int
}

func newMemCache() *memCache { return &memCache{recs: map[domain.DesignID]domain.DesignRecord{}} }

func (c *memCache) Get(_ context.Context, id domain.DesignID) (domain.DesignRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.recs[id]
	if ok {
		c.hits++
	}
	return rec, ok, nil
}

func (c *memCache) Put(_ context.Context, rec domain.DesignRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.recs[rec.ID]; ok && cur.Version > rec.Version {
		return nil
	}
	c.recs[rec.ID] = rec
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id domain.DesignID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.recs, id)
	return nil
}

func (c *memCache) has(id domain.DesignID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.recs[id]
	return ok
}

type mockLocker struct{ mock.Mock }

func (m *mockLocker) AcquireDesign(ctx context.Context, id domain.DesignID) (func(), error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, events ...common.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type mockRequests struct{ mock.Mock }

func (m *mockRequests) Save(ctx context.Context, r pricing.QuoteRequest) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRequests) ListByDesign(ctx context.Context, id domain.DesignID) ([]pricing.QuoteRequest, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]pricing.QuoteRequest), args.Error(1)
}

// memLogoStore keeps uploads in memory and doubles as the loader's image
// source.
type memLogoStore struct {
	mu      sync.Mutex
	objects map[domain.ImageRef][]byte
	deleted []domain.DesignID
}

func newMemLogoStore() *memLogoStore {
	return &memLogoStore{objects: map[domain.ImageRef][]byte{}}
}

func (s *memLogoStore) Put(_ context.Context, design domain.DesignID, contentType string, data []byte) (domain.ImageRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := domain.ImageRef("logos/" + string(design) + "/" + string(rune('a'+len(s.objects))) + "." + contentType[len("image/"):])
	s.objects[ref] = data
	return ref, nil
}

func (s *memLogoStore) DeleteDesign(_ context.Context, design domain.DesignID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, design)
	return 1, nil
}

func (s *memLogoStore) Open(_ context.Context, ref domain.ImageRef) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[ref]
	if !ok {
		return nil, errors.New(errors.ErrCodeLogoNotFound, "logo image not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *memLogoStore) corrupt(ref domain.ImageRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[ref] = []byte("not an image")
}

// pngBytes encodes a w×h opaque image.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	svc       Service
	repo      *memRepo
	cache     *memCache
	logos     *memLogoStore
	requests  *mockRequests
	publisher *mockPublisher
	logger    *testutil.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog := domain.DefaultCatalog()
	policy, err := pricing.NewPolicy(50, "inr", map[domain.ProductType]pricing.Amount{
		domain.ProductTShirt:       150,
		domain.ProductHoodie:       420,
		domain.ProductBusinessCard: 2,
	})
	require.NoError(t, err)

	f := &fixture{
		repo:      newMemRepo(catalog),
		cache:     newMemCache(),
		logos:     newMemLogoStore(),
		requests:  &mockRequests{},
		publisher: &mockPublisher{},
		logger:    testutil.NewMockLogger(),
	}
	loader := render.NewLoader(f.logos, f.logger, render.WithLoadTimeout(time.Second))
	f.svc = NewService(catalog, f.repo, f.requests, policy, f.cache, nil, f.logos, loader, f.publisher, nil, f.logger, ServiceConfig{MaxLogoBytes: 64 << 10, MaxLogoDimension: 64})
	return f
}

// publishedTypes collects the event types of every Publish call.
func (f *fixture) publishedTypes() []string {
	var out []string
	for _, c := range f.publisher.Calls {
		if c.Method != "Publish" {
			continue
		}
		for _, ev := range c.Arguments.Get(1).([]common.DomainEvent) {
			out = append(out, ev.EventType())
		}
	}
	return out
}

func ptr[T any](v T) *T { return &v }

//Personal.AI order the ending
