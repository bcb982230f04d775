package usecase

import (
	"context"
	"errors"
	"testing"

	"subharvest/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubscriptionSource struct {
	mock.Mock
	pages [][]model.ChannelRef
	// pageErr, when set, is returned after all pages were delivered.
	pageErr error
}

func (m *mockSubscriptionSource) UserEmail(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockSubscriptionSource) EachPage(ctx context.Context, fn func(channels []model.ChannelRef) error) error {
	m.Called(ctx)
	for _, page := range m.pages {
		if err := fn(page); err != nil {
			return err
		}
	}
	return m.pageErr
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, channel model.ChannelRef) ([]model.RawEntry, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RawEntry), args.Error(1)
}

type mockVideoRepository struct {
	mock.Mock
	saved [][]model.VideoRecord
}

func (m *mockVideoRepository) Save(ctx context.Context, batch []model.VideoRecord) error {
	m.saved = append(m.saved, batch)
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *mockVideoRepository) Search(ctx context.Context, query string, limit, offset int) ([]model.VideoRecord, error) {
	args := m.Called(ctx, query, limit, offset)
	return args.Get(0).([]model.VideoRecord), args.Error(1)
}

func (m *mockVideoRepository) GetTotalResults(ctx context.Context, query string) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

func urlEntry(id string) []model.RawEntry {
	return []model.RawEntry{{Type: model.EntryTypeURL, ID: id, URL: "https://www.youtube.com/watch?v=" + id}}
}

func TestHarvestUseCase_FailingChannelIsSkipped(t *testing.T) {
	channelA := model.NewChannelRef("UCa", "Channel A")
	channelB := model.NewChannelRef("UCb", "Channel B")
	channelC := model.NewChannelRef("UCc", "Channel C")

	source := &mockSubscriptionSource{pages: [][]model.ChannelRef{{channelA, channelB}, {channelC}}}
	source.On("UserEmail", mock.Anything).Return("user@example.com", nil)
	source.On("EachPage", mock.Anything).Return(nil)

	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, channelA).Return(urlEntry("a1"), nil)
	extractor.On("Extract", mock.Anything, channelB).Return(nil, errors.New("yt-dlp failed"))
	extractor.On("Extract", mock.Anything, channelC).Return(urlEntry("c1"), nil)

	videoRepo := &mockVideoRepository{}
	videoRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	err := NewHarvestUseCase(source, extractor, videoRepo).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, videoRepo.saved, 2)
	assert.Equal(t, "a1", videoRepo.saved[0][0].ID)
	assert.Equal(t, "c1", videoRepo.saved[1][0].ID)
	extractor.AssertNumberOfCalls(t, "Extract", 3)
}

func TestHarvestUseCase_RecordsCarryChannelAndUserContext(t *testing.T) {
	channel := model.NewChannelRef("UCa", "Channel A")
	source := &mockSubscriptionSource{pages: [][]model.ChannelRef{{channel}}}
	source.On("UserEmail", mock.Anything).Return("user@example.com", nil)
	source.On("EachPage", mock.Anything).Return(nil)

	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, channel).Return(urlEntry("a1"), nil)

	videoRepo := &mockVideoRepository{}
	videoRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, NewHarvestUseCase(source, extractor, videoRepo).Run(context.Background()))

	require.Len(t, videoRepo.saved, 1)
	require.Len(t, videoRepo.saved[0], 1)
	record := videoRepo.saved[0][0]
	assert.Equal(t, "UCa", record.ChannelID)
	assert.Equal(t, "Channel A", record.ChannelTitle)
	assert.Equal(t, "user@example.com", record.UserEmail)
}

func TestHarvestUseCase_SaveFailureDoesNotAbortRun(t *testing.T) {
	channelA := model.NewChannelRef("UCa", "Channel A")
	channelB := model.NewChannelRef("UCb", "Channel B")
	source := &mockSubscriptionSource{pages: [][]model.ChannelRef{{channelA, channelB}}}
	source.On("UserEmail", mock.Anything).Return("user@example.com", nil)
	source.On("EachPage", mock.Anything).Return(nil)

	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, channelA).Return(urlEntry("a1"), nil)
	extractor.On("Extract", mock.Anything, channelB).Return(urlEntry("b1"), nil)

	videoRepo := &mockVideoRepository{}
	videoRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	videoRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	err := NewHarvestUseCase(source, extractor, videoRepo).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, videoRepo.saved, 2)
}

func TestHarvestUseCase_EmailFailureIsFatal(t *testing.T) {
	source := &mockSubscriptionSource{}
	source.On("UserEmail", mock.Anything).Return("", errors.New("token revoked"))

	extractor := &mockExtractor{}
	videoRepo := &mockVideoRepository{}

	err := NewHarvestUseCase(source, extractor, videoRepo).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve user email")
	extractor.AssertNotCalled(t, "Extract")
	videoRepo.AssertNotCalled(t, "Save")
}

func TestHarvestUseCase_EnumerationFailureKeepsPartialResults(t *testing.T) {
	channelA := model.NewChannelRef("UCa", "Channel A")
	source := &mockSubscriptionSource{
		pages:   [][]model.ChannelRef{{channelA}},
		pageErr: errors.New("quota exceeded"),
	}
	source.On("UserEmail", mock.Anything).Return("user@example.com", nil)
	source.On("EachPage", mock.Anything).Return(nil)

	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, channelA).Return(urlEntry("a1"), nil)

	videoRepo := &mockVideoRepository{}
	videoRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	err := NewHarvestUseCase(source, extractor, videoRepo).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enumerate subscriptions")
	// The page that arrived before the failure was still harvested and saved.
	assert.Len(t, videoRepo.saved, 1)
}
