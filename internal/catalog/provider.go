package catalog

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "net/url"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/moviematch/matchroom/internal/config"
    "github.com/moviematch/matchroom/internal/model"
)

// Provider fetches one page of titles from the external content catalog.
// Pages are 1-based and must be ranked consistently across calls for the
// same (mediaType, page) query; the pool's determinism depends on it.
type Provider interface {
    FetchPage(ctx context.Context, media model.MediaType, page int) ([]model.Title, error)
}

// HTTPProvider talks to a TMDB-style discover API ranked by popularity.
type HTTPProvider struct {
    baseURL string
    apiKey  string
    client  *http.Client
}

// NewHTTPProvider builds a provider against the given base URL.  The API
// key may be empty for providers that do not require one.
func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &HTTPProvider{
        baseURL: baseURL,
        apiKey:  apiKey,
        client:  &http.Client{Timeout: timeout},
    }
}

// discoverResult mirrors the provider's page envelope.
type discoverResult struct {
    Page    int `json:"page"`
    Results []struct {
        ID           int64   `json:"id"`
        Title        string  `json:"title"`      // movies
        Name         string  `json:"name"`       // tv
        PosterPath   string  `json:"poster_path"`
        Overview     string  `json:"overview"`
        ReleaseDate  string  `json:"release_date"`   // movies
        FirstAirDate string  `json:"first_air_date"` // tv
        VoteAverage  float64 `json:"vote_average"`
    } `json:"results"`
}

// FetchPage requests one page of popularity-ranked titles.  MediaAll is
// not a valid concrete query; the pool resolves it before calling here.
func (p *HTTPProvider) FetchPage(ctx context.Context, media model.MediaType, page int) ([]model.Title, error) {
    if media != model.MediaMovie && media != model.MediaTV {
        return nil, fmt.Errorf("catalog: media type %q is not fetchable", media)
    }
    if page < 1 {
        return nil, fmt.Errorf("catalog: page must be >= 1, got %d", page)
    }
    u, err := url.Parse(fmt.Sprintf("%s/discover/%s", p.baseURL, media))
    if err != nil {
        return nil, fmt.Errorf("catalog: bad base url: %w", err)
    }
    q := u.Query()
    q.Set("page", fmt.Sprint(page))
    q.Set("sort_by", "popularity.desc")
    if p.apiKey != "" {
        q.Set("api_key", p.apiKey)
    }
    u.RawQuery = q.Encode()

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
    if err != nil {
        return nil, err
    }
    resp, err := p.client.Do(req)
    if err != nil {
        return nil, fmt.Errorf("catalog: fetch page %d: %w", page, err)
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return nil, fmt.Errorf("catalog: fetch page %d: unexpected status %d", page, resp.StatusCode)
    }
    var body discoverResult
    if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
        return nil, fmt.Errorf("catalog: decode page %d: %w", page, err)
    }

    titles := make([]model.Title, 0, len(body.Results))
    for _, r := range body.Results {
        name := r.Title
        if name == "" {
            name = r.Name
        }
        date := r.ReleaseDate
        if date == "" {
            date = r.FirstAirDate
        }
        year := 0
        if len(date) >= 4 {
            if t, err := time.Parse("2006-01-02", date); err == nil {
                year = t.Year()
            }
        }
        titles = append(titles, model.Title{
            ID:         r.ID,
            Name:       name,
            MediaType:  media,
            PosterPath: r.PosterPath,
            Overview:   r.Overview,
            Year:       year,
            VoteAvg:    r.VoteAverage,
            RatingTier: model.RatingTierFor(r.VoteAverage),
        })
    }
    return titles, nil
}

// CachedProvider layers a Redis page cache and a bounded in-process cache
// in front of another provider.  Redis misses fall through to the process
// cache, then to the network; Redis errors degrade to the inner provider
// so a cache outage never breaks queue building.
type CachedProvider struct {
    inner   Provider
    rdb     *redis.Client // may be nil
    local   *BoundedCache
    ttl     time.Duration
    prefix  string
    enabled bool
}

// NewCachedProvider wraps inner with caching per cfg.  rdb may be nil.
func NewCachedProvider(inner Provider, rdb *redis.Client, cfg config.CatalogCacheConfig) *CachedProvider {
    return &CachedProvider{
        inner:   inner,
        rdb:     rdb,
        local:   NewBoundedCache(cfg.BoundedCapacity),
        ttl:     cfg.PageTTL,
        prefix:  cfg.Prefix,
        enabled: cfg.Enabled,
    }
}

func (p *CachedProvider) key(media model.MediaType, page int) string {
    return fmt.Sprintf("%s:page:%s:%d", p.prefix, media, page)
}

// FetchPage serves from cache when possible and populates both cache
// layers on a miss.
func (p *CachedProvider) FetchPage(ctx context.Context, media model.MediaType, page int) ([]model.Title, error) {
    if !p.enabled {
        return p.inner.FetchPage(ctx, media, page)
    }
    key := p.key(media, page)
    if titles, ok := p.local.Get(key); ok {
        return titles, nil
    }
    if p.rdb != nil {
        raw, err := p.rdb.Get(ctx, key).Bytes()
        if err == nil {
            var titles []model.Title
            if jsonErr := json.Unmarshal(raw, &titles); jsonErr == nil {
                p.local.Put(key, titles)
                return titles, nil
            }
        } else if err != redis.Nil {
            log.Printf("catalog: redis get %s: %v", key, err)
        }
    }
    titles, err := p.inner.FetchPage(ctx, media, page)
    if err != nil {
        return nil, err
    }
    p.local.Put(key, titles)
    if p.rdb != nil {
        if raw, err := json.Marshal(titles); err == nil {
            if err := p.rdb.Set(ctx, key, raw, p.ttl).Err(); err != nil {
                log.Printf("catalog: redis set %s: %v", key, err)
            }
        }
    }
    return titles, nil
}
