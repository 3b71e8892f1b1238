package domain

import "time"

// Story is a remote-originated record. It is never mutated locally.
type Story struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FavoriteEntry is a story the user favorited. FavoritedAt is the local
// favorite time, not the story creation time.
type FavoriteEntry struct {
	Story
	FavoritedAt time.Time `json:"favoritedAt"`
}

// CachedStory is one row of the last-known-good story snapshot.
type CachedStory struct {
	Story
	Timestamp time.Time `json:"timestamp"`
}

func StoriesOf(cached []CachedStory) []Story {
	out := make([]Story, 0, len(cached))
	for _, c := range cached {
		out = append(out, c.Story)
	}
	return out
}
