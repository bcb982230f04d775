package usecase

import (
	"context"
	"fmt"

	"subharvest/domain/model"
	"subharvest/domain/repository"
	"subharvest/infrastructure/logger"
)

// IHarvestUseCase defines the interface for one harvest run.
type IHarvestUseCase interface {
	Run(ctx context.Context) error
}

// HarvestUseCase drives the pipeline: subscription pages in, extracted and
// normalized records out to the repository, one channel at a time. Failures
// of a single channel's extraction or save are contained here so the run
// keeps its progress on the remaining channels.
type HarvestUseCase struct {
	source    repository.ISubscriptionSource
	extractor repository.IChannelExtractor
	videoRepo repository.IVideoRepository
}

// NewHarvestUseCase creates a new harvest use case instance.
func NewHarvestUseCase(
	source repository.ISubscriptionSource,
	extractor repository.IChannelExtractor,
	videoRepo repository.IVideoRepository,
) IHarvestUseCase {
	return &HarvestUseCase{
		source:    source,
		extractor: extractor,
		videoRepo: videoRepo,
	}
}

// Run harvests every subscribed channel. A failing email lookup aborts the
// run before any extraction; a failing subscription page aborts enumeration
// but keeps everything already persisted.
func (u *HarvestUseCase) Run(ctx context.Context) error {
	userEmail, err := u.source.UserEmail(ctx)
	if err != nil {
		return fmt.Errorf("resolve user email: %w", err)
	}
	logger.GetLogger().WithField("userEmail", userEmail).Info("Starting subscription extraction")

	channelCount := 0
	err = u.source.EachPage(ctx, func(channels []model.ChannelRef) error {
		for _, channel := range channels {
			u.harvestChannel(ctx, channel, userEmail)
		}
		channelCount += len(channels)
		return nil
	})
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("channelsProcessed", channelCount).Error("Subscription enumeration aborted, keeping partial results")
		return fmt.Errorf("enumerate subscriptions: %w", err)
	}

	logger.GetLogger().WithField("channelsProcessed", channelCount).Info("Harvest completed")
	return nil
}

// harvestChannel extracts, normalizes and persists one channel's videos.
// Both extraction and persistence failures are logged and swallowed.
func (u *HarvestUseCase) harvestChannel(ctx context.Context, channel model.ChannelRef, userEmail string) {
	logger.GetLogger().WithField("channelTitle", channel.ChannelTitle).WithField("channelId", channel.ChannelID).Info("Extracting videos for channel")

	entries, err := u.extractor.Extract(ctx, channel)
	if err != nil {
		logger.GetLogger().WithField("channelUrl", channel.ChannelURL).WithField("error", err).Error("Error extracting videos, skipping channel")
		return
	}

	records := make([]model.VideoRecord, 0, len(entries))
	for _, entry := range entries {
		record := NormalizeEntry(entry)
		record.ChannelID = channel.ChannelID
		record.ChannelTitle = channel.ChannelTitle
		record.UserEmail = userEmail
		records = append(records, record)
	}

	logger.GetLogger().WithField("channelId", channel.ChannelID).WithField("videos", len(records)).Info("Extracted videos")

	if err := u.videoRepo.Save(ctx, records); err != nil {
		logger.GetLogger().WithField("channelId", channel.ChannelID).WithField("error", err).Error("Failed to save batch, continuing with next channel")
	}
}
