package model

import "encoding/json"

// Entry type discriminators as reported by the flat extraction listing.
const (
	EntryTypeURL      = "url"
	EntryTypePlaylist = "playlist"
)

// RawListing is the top-level payload returned by a flat channel extraction.
type RawListing struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Entries []RawEntry `json:"entries"`
}

// RawEntry is a single item of a flat extraction listing. Entries typed
// "playlist" (a channel's uploads/shorts/streams pseudo-playlists) carry
// their children in Entries; entries typed "url" reference a video directly.
type RawEntry struct {
	Type              string          `json:"_type"`
	ID                string          `json:"id"`
	URL               string          `json:"url"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	ViewCount         *int64          `json:"view_count"`
	Duration          *float64        `json:"duration"`
	Thumbnails        json.RawMessage `json:"thumbnails"`
	ReleaseTimestamp  *int64          `json:"release_timestamp"`
	ChannelIsVerified *bool           `json:"channel_is_verified"`
	LiveStatus        *string         `json:"live_status"`
	Entries           []RawEntry      `json:"entries,omitempty"`
}

// RawThumbnail is one thumbnail descriptor inside a raw entry.
type RawThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
