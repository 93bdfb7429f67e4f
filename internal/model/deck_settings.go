package model

import "time"

// DeckSettings holds a user's personalization for queue building.  Guests
// and users who never saved settings get DefaultDeckSettings.
//
// Fields:
//  UserID      – owning user identifier.
//  ShowWatched – include titles the user already marked as watched.
//  MinRating   – minimum rating tier (1..3), nil for no filter.
//  MediaType   – restrict the pool to movies, tv or all.
//  UpdatedAt   – timestamp of last update.
type DeckSettings struct {
    UserID      string    // deck_settings.user_id
    ShowWatched bool      // deck_settings.show_watched
    MinRating   *int      // deck_settings.min_rating (nullable)
    MediaType   MediaType // deck_settings.media_type
    UpdatedAt   time.Time // deck_settings.updated_at
}

// DefaultDeckSettings returns the settings applied to guests and to users
// without a saved row: everything visible, no rating floor, all media.
func DefaultDeckSettings(userID string) DeckSettings {
    return DeckSettings{
        UserID:      userID,
        ShowWatched: true,
        MediaType:   MediaAll,
    }
}

// ValidMinRating reports whether v is an acceptable rating tier.
func ValidMinRating(v int) bool { return v >= 1 && v <= 3 }
