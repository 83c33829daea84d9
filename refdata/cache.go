// Package refdata keeps the last fetched copy of the backend's reference collections.
package refdata

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/models"
)

// FetchFailureMessage is the banner shown when a refresh fails
const FetchFailureMessage = "Kunde inte hämta data från servern"

// Source lists the four reference collections. *apiclient.Client implements it.
type Source interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListInstallers(ctx context.Context) ([]models.Installer, error)
	ListMaterials(ctx context.Context) ([]models.Material, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// Snapshot is one complete, consistent set of reference data.
// Snapshots are shared between readers and must be treated as read-only.
type Snapshot struct {
	Customers  []models.Customer  `json:"customers"`
	Installers []models.Installer `json:"installers"`
	Materials  []models.Material  `json:"materials"`
	Orders     []models.Order     `json:"orders"`
	FetchedAt  time.Time          `json:"fetched_at"`
}

// Loaded reports whether the snapshot came from a successful refresh
func (s *Snapshot) Loaded() bool {
	return !s.FetchedAt.IsZero()
}

// FetchError is returned by Refresh when any collection could not be fetched
type FetchError struct {
	Collection string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Collection, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Cache holds the current snapshot.
// Readers always see either the previous or the next complete snapshot.
type Cache struct {
	source  Source
	log     *logger.Logger
	now     func() time.Time
	current atomic.Pointer[Snapshot]
}

// New returns a cache holding an empty, not yet loaded snapshot
func New(source Source, log *logger.Logger) *Cache {
	c := &Cache{
		source: source,
		log:    log,
		now:    time.Now,
	}
	c.current.Store(&Snapshot{
		Customers:  []models.Customer{},
		Installers: []models.Installer{},
		Materials:  []models.Material{},
		Orders:     []models.Order{},
	})
	return c
}

// Snapshot returns the current snapshot; never nil
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Refresh fetches all four collections concurrently and swaps in the new snapshot only
// when every fetch succeeded. The first failure cancels the remaining fetches, leaves
// the visible snapshot as it was and is returned as a *FetchError.
//
// Overlapping refreshes are not serialized; the last one to complete successfully wins.
func (c *Cache) Refresh(ctx context.Context) error {
	next := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(fetch(gctx, "customers", c.source.ListCustomers, &next.Customers))
	g.Go(fetch(gctx, "installers", c.source.ListInstallers, &next.Installers))
	g.Go(fetch(gctx, "materials", c.source.ListMaterials, &next.Materials))
	g.Go(fetch(gctx, "orders", c.source.ListOrders, &next.Orders))

	if err := g.Wait(); err != nil {
		c.log.Warn(ctx, "refdata.refresh_failed", err)
		return err
	}

	next.FetchedAt = c.now()
	c.current.Store(next)

	c.log.Debug(c.log.WithFields(ctx, map[string]any{
		"customers":  len(next.Customers),
		"installers": len(next.Installers),
		"materials":  len(next.Materials),
		"orders":     len(next.Orders),
	}), "refdata.refreshed")
	return nil
}

// fetch runs list and stores its result in dst; a nil result becomes an empty slice
func fetch[T any](ctx context.Context, collection string, list func(context.Context) ([]T, error), dst *[]T) func() error {
	return func() error {
		items, err := list(ctx)
		if err != nil {
			return &FetchError{Collection: collection, Err: err}
		}
		if items == nil {
			items = []T{}
		}
		*dst = items
		return nil
	}
}
