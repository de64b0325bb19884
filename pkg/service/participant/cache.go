package participant

import (
	"context"
	"sync/atomic"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tasklens/pkg/domain/interfaces"
	"golang.org/x/sync/singleflight"
)

// Cache holds the current Directory and rebuilds it from the repository on first use
// or after Invalidate. Concurrent first builds are collapsed into one store read.
type Cache struct {
	repo    interfaces.ParticipantRepository
	current atomic.Pointer[Directory]
	group   singleflight.Group
}

// NewCache creates an empty cache over repo
func NewCache(repo interfaces.ParticipantRepository) *Cache {
	return &Cache{repo: repo}
}

// Get returns the current directory, building it when absent
func (c *Cache) Get(ctx context.Context) (*Directory, error) {
	if d := c.current.Load(); d != nil {
		return d, nil
	}

	v, err, _ := c.group.Do("directory", func() (any, error) {
		if d := c.current.Load(); d != nil {
			return d, nil
		}
		participants, err := c.repo.GetAll(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load participants")
		}
		d := NewDirectory(participants)
		c.current.Store(d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Directory), nil
}

// Invalidate drops the snapshot so that the next Get rebuilds it
func (c *Cache) Invalidate() {
	c.current.Store(nil)
}
