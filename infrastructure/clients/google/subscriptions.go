package google

import (
	"context"
	"fmt"
	"net/http"

	"subharvest/domain/model"
	"subharvest/infrastructure/logger"

	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const subscriptionPageSize = 50

// SubscriptionClient enumerates the authenticated user's subscriptions and
// resolves the user's email address.
type SubscriptionClient struct {
	youtube  *youtube.Service
	userinfo *googleoauth2.Service
}

// NewSubscriptionClient builds the YouTube and userinfo services on top of
// the authenticated HTTP client. Extra options are mainly for tests
// (alternate endpoints).
func NewSubscriptionClient(ctx context.Context, httpClient *http.Client, extra ...option.ClientOption) (*SubscriptionClient, error) {
	opts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, extra...)

	youtubeService, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	userinfoService, err := googleoauth2.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create userinfo service: %w", err)
	}

	return &SubscriptionClient{
		youtube:  youtubeService,
		userinfo: userinfoService,
	}, nil
}

// UserEmail returns the authenticated user's email address, or "unknown"
// when the provider does not report one.
func (c *SubscriptionClient) UserEmail(ctx context.Context) (string, error) {
	info, err := c.userinfo.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get user info: %w", err)
	}
	if info.Email == "" {
		return "unknown", nil
	}
	return info.Email, nil
}

// EachPage fetches subscription pages of 50 items, following the provider's
// next-page cursor until absent, and hands each page's channel refs to fn.
func (c *SubscriptionClient) EachPage(ctx context.Context, fn func(channels []model.ChannelRef) error) error {
	pageToken := ""
	for {
		call := c.youtube.Subscriptions.List([]string{"snippet"}).
			Mine(true).
			MaxResults(subscriptionPageSize)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		response, err := call.Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("list subscriptions: %w", err)
		}

		logger.GetLogger().WithField("count", len(response.Items)).Info("Fetched subscription page")

		channels := make([]model.ChannelRef, 0, len(response.Items))
		for _, item := range response.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil {
				continue
			}
			channels = append(channels, model.NewChannelRef(item.Snippet.ResourceId.ChannelId, item.Snippet.Title))
		}

		if err := fn(channels); err != nil {
			return err
		}

		if response.NextPageToken == "" {
			return nil
		}
		pageToken = response.NextPageToken
	}
}
