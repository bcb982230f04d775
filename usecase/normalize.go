package usecase

import (
	"encoding/json"

	"subharvest/domain/model"
)

// NormalizeEntry maps a raw listing entry into the canonical video record
// shape. It is total: entries missing optional fields still produce a record
// with every field present, using nil as the unknown sentinel. Channel and
// user fields are attached by the caller, which is the only place they are
// known.
func NormalizeEntry(entry model.RawEntry) model.VideoRecord {
	record := model.VideoRecord{
		ID:                entry.ID,
		URL:               entry.URL,
		Title:             entry.Title,
		Description:       entry.Description,
		ViewCount:         entry.ViewCount,
		Thumbnails:        flattenThumbnails(entry.Thumbnails),
		ReleaseTimestamp:  entry.ReleaseTimestamp,
		ChannelIsVerified: entry.ChannelIsVerified,
		LiveStatus:        entry.LiveStatus,
	}
	if entry.Duration != nil {
		seconds := int64(*entry.Duration)
		record.Duration = &seconds
	}
	return record
}

// flattenThumbnails projects thumbnail descriptors to their URL strings in
// order, dropping descriptors without one. Anything that is not a list of
// descriptors normalizes to an empty sequence.
func flattenThumbnails(raw json.RawMessage) []string {
	urls := []string{}
	if len(raw) == 0 {
		return urls
	}
	var descriptors []model.RawThumbnail
	if err := json.Unmarshal(raw, &descriptors); err != nil {
		return urls
	}
	for _, thumbnail := range descriptors {
		if thumbnail.URL != "" {
			urls = append(urls, thumbnail.URL)
		}
	}
	return urls
}
