package model

// MediaType enumerates the kinds of titles in the catalog.  MediaAll is
// only valid as a filter value, never on a concrete title or swipe.
type MediaType string

const (
    MediaAll   MediaType = "all"
    MediaMovie MediaType = "movie"
    MediaTV    MediaType = "tv"
)

// ParseMediaType validates a media type received at the API boundary.
// Concrete types only; use ParseMediaFilter where "all" is acceptable.
func ParseMediaType(s string) (MediaType, bool) {
    switch MediaType(s) {
    case MediaMovie, MediaTV:
        return MediaType(s), true
    }
    return "", false
}

// ParseMediaFilter validates a media type filter, which additionally
// admits "all".  The empty string defaults to MediaAll.
func ParseMediaFilter(s string) (MediaType, bool) {
    if s == "" {
        return MediaAll, true
    }
    switch MediaType(s) {
    case MediaAll, MediaMovie, MediaTV:
        return MediaType(s), true
    }
    return "", false
}

// Title is a catalog entry as served to clients in a queue slice.  The
// fields mirror what the content provider returns; RatingTier is derived
// from the provider's vote average at fetch time.
type Title struct {
    ID         int64     `json:"id"`          // provider title identifier
    Name       string    `json:"name"`        // display title
    MediaType  MediaType `json:"media_type"`  // movie or tv
    PosterPath string    `json:"poster_path"` // provider poster path, may be empty
    Overview   string    `json:"overview"`    // short synopsis
    Year       int       `json:"year"`        // release year, 0 when unknown
    VoteAvg    float64   `json:"vote_average"`
    RatingTier int       `json:"rating_tier"` // 1..3, see RatingTierFor
}

// RatingTierFor maps a provider vote average (0..10) onto the coarse
// three-tier scale used by deck settings filtering.
func RatingTierFor(voteAvg float64) int {
    switch {
    case voteAvg >= 7.5:
        return 3
    case voteAvg >= 6.0:
        return 2
    default:
        return 1
    }
}
