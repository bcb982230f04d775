package model

// VideoRecord represents one harvested video as persisted by the repositories.
// Optional fields are pointers so that every field is always present in the
// stored document, with null marking values the extractor did not report.
// Records are immutable once created; they are never updated in place.
type VideoRecord struct {
	ID                string   `json:"id"`
	URL               string   `json:"url"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	ViewCount         *int64   `json:"view_count"`
	Duration          *int64   `json:"duration"`
	Thumbnails        []string `json:"thumbnails"`
	ReleaseTimestamp  *int64   `json:"release_timestamp"`
	ChannelIsVerified *bool    `json:"channel_is_verified"`
	LiveStatus        *string  `json:"live_status"`
	ChannelID         string   `json:"channelId"`
	ChannelTitle      string   `json:"channelTitle"`
	UserEmail         string   `json:"userEmail"`
}

// ChannelRef identifies one subscribed channel during a harvest run.
// It is derived per subscription page item and never persisted on its own.
type ChannelRef struct {
	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`
	ChannelURL   string `json:"channel_url"`
}

// NewChannelRef builds a ChannelRef with the canonical channel URL.
func NewChannelRef(channelID, channelTitle string) ChannelRef {
	return ChannelRef{
		ChannelID:    channelID,
		ChannelTitle: channelTitle,
		ChannelURL:   "https://www.youtube.com/channel/" + channelID,
	}
}
