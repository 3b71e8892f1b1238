package interceptor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/orgball2608/story-explorer/internal/repositories/responsecache"
	apperrors "github.com/orgball2608/story-explorer/pkg/errors"
	"github.com/orgball2608/story-explorer/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

// Installer precaches the app shell into the current generation and
// retires older generations.
type Installer struct {
	client     *http.Client
	store      responsecache.Repository
	generation string
	origin     *url.URL
	assets     []string
	workers    int
	logger     logger.Logger
}

type InstallerParams struct {
	Client     *http.Client
	Store      responsecache.Repository
	Generation string
	AppOrigin  string
	Assets     []string
	Workers    int
	Logger     logger.Logger
}

func NewInstaller(p InstallerParams) (*Installer, error) {
	origin, err := url.Parse(p.AppOrigin)
	if err != nil {
		return nil, fmt.Errorf("parse app origin %q: %w", p.AppOrigin, err)
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Installer{
		client:     client,
		store:      p.Store,
		generation: p.Generation,
		origin:     origin,
		assets:     p.Assets,
		workers:    workers,
		logger:     p.Logger.WithComponent("Installer"),
	}, nil
}

// AssetURL resolves an app-relative path against the app origin.
func (i *Installer) AssetURL(path string) *url.URL {
	return i.origin.ResolveReference(&url.URL{Path: path})
}

// Install fetches every core asset and stores them together. Any failed
// fetch or non-2xx answer aborts the install and stores nothing.
func (i *Installer) Install(ctx context.Context) error {
	pool, err := ants.NewPool(i.workers, ants.WithPreAlloc(true))
	if err != nil {
		return fmt.Errorf("failed to create install pool: %w", err)
	}
	defer pool.Release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		entries  = make([]domain.CachedResponse, len(i.assets))
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for idx, asset := range i.assets {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			entry, err := i.fetch(ctx, asset)
			if err != nil {
				fail(err)
				return
			}
			entries[idx] = entry
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to submit %s to install pool: %w", asset, err))
		}
	}
	wg.Wait()

	if firstErr != nil {
		return fmt.Errorf("install %s aborted: %w", i.generation, firstErr)
	}
	if err := i.store.Put(ctx, entries...); err != nil {
		return fmt.Errorf("install %s: %w", i.generation, err)
	}

	i.logger.Info("App shell cached", "generation", i.generation, "assets", len(entries))
	return nil
}

// Activate deletes every generation other than the current one.
func (i *Installer) Activate(ctx context.Context) (int64, error) {
	gens, err := i.store.Generations(ctx)
	if err != nil {
		return 0, fmt.Errorf("activate %s: %w", i.generation, err)
	}
	stale := slices.DeleteFunc(gens, func(g string) bool { return g == i.generation })
	if len(stale) == 0 {
		return 0, nil
	}

	removed, err := i.store.DeleteOtherGenerations(ctx, i.generation)
	if err != nil {
		return 0, fmt.Errorf("activate %s: %w", i.generation, err)
	}
	i.logger.Info("Old cache generations removed",
		"generation", i.generation, "retired", stale, "responses", removed)
	return removed, nil
}

func (i *Installer) fetch(ctx context.Context, asset string) (domain.CachedResponse, error) {
	u := i.AssetURL(asset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.CachedResponse{}, fmt.Errorf("create request for %s: %w", asset, err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return domain.CachedResponse{}, apperrors.NetworkFailure(err, "fetch "+asset)
	}
	entry, err := capture(req, resp, i.generation, time.Now())
	if err != nil {
		return domain.CachedResponse{}, err
	}
	if !entry.OK() {
		return domain.CachedResponse{}, fmt.Errorf("asset %s returned status %d", asset, entry.Status)
	}
	return entry, nil
}
