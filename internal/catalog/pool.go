package catalog

import (
    "context"
    "math/rand"

    "github.com/moviematch/matchroom/internal/model"
)

// PageSize is the number of titles per provider page and therefore per
// pool block.
const PageSize = 20

// Pool is the deterministic, effectively-infinite shared title sequence
// for one room.  For a fixed (seed, media) the title at every logical
// index is identical across calls, processes and time: index i lives in
// block i/PageSize, each block maps to one provider page, and the order
// within a block is a seeded permutation of that page.  Nothing is
// persisted; any slice is cheap to recompute.
//
// With media "all", blocks alternate between movie and tv pages so both
// kinds interleave without the provider needing a combined query.
type Pool struct {
    provider Provider
    seed     int64
    media    model.MediaType
}

// NewPool returns the pool for one room's seed and media filter.
func NewPool(provider Provider, seed int64, media model.MediaType) *Pool {
    return &Pool{provider: provider, seed: seed, media: media}
}

// blockSource maps a block index to the provider (media, page) pair that
// backs it.
func (p *Pool) blockSource(block int) (model.MediaType, int) {
    if p.media == model.MediaAll {
        if block%2 == 0 {
            return model.MediaMovie, block/2 + 1
        }
        return model.MediaTV, block/2 + 1
    }
    return p.media, block + 1
}

// Block returns the titles of one block in pool order.  A block may hold
// fewer than PageSize titles when the provider page is short; an empty
// block means the catalog is exhausted in that direction.
func (p *Pool) Block(ctx context.Context, block int) ([]model.Title, error) {
    media, page := p.blockSource(block)
    titles, err := p.provider.FetchPage(ctx, media, page)
    if err != nil {
        return nil, err
    }
    if len(titles) == 0 {
        return nil, nil
    }
    // The permutation depends only on (seed, block, page length), all of
    // which are stable for a consistent provider, so the order is too.
    rng := rand.New(rand.NewSource(p.seed ^ (int64(block)+1)*0x9E3779B9))
    perm := rng.Perm(len(titles))
    out := make([]model.Title, len(titles))
    for i, j := range perm {
        out[i] = titles[j]
    }
    return out, nil
}
