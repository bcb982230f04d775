package repository

import (
	"context"

	"subharvest/domain/model"
)

// IChannelExtractor lists the videos of one channel in flat mode, consulting
// the listing cache first. The returned entries are already flattened: one
// level of playlist nesting is resolved and only "url"-typed entries remain.
type IChannelExtractor interface {
	Extract(ctx context.Context, channel model.ChannelRef) ([]model.RawEntry, error)
}

// ISubscriptionSource enumerates the authenticated user's subscriptions a
// page at a time and resolves the user's email address.
type ISubscriptionSource interface {
	// UserEmail returns the email address of the authenticated user.
	UserEmail(ctx context.Context) (string, error)
	// EachPage invokes fn for every subscription page in order, following
	// the provider's next-page cursor until it is absent. A transport or
	// authorization error aborts enumeration and is returned as-is; pages
	// already handed to fn are not revisited.
	EachPage(ctx context.Context, fn func(channels []model.ChannelRef) error) error
}
