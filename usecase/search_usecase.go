package usecase

import (
	"context"
	"fmt"

	"subharvest/domain/dto"
	"subharvest/domain/repository"
)

// ISearchUseCase defines the interface for search operations.
type ISearchUseCase interface {
	Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error)
}

// SearchUseCase runs paginated text searches against whichever repository
// variant was selected at startup.
type SearchUseCase struct {
	videoRepo repository.IVideoRepository
}

// NewSearchUseCase creates a new search use case instance.
func NewSearchUseCase(videoRepo repository.IVideoRepository) ISearchUseCase {
	return &SearchUseCase{videoRepo: videoRepo}
}

// Search returns one page of matching records plus the total match count.
func (u *SearchUseCase) Search(ctx context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	if req == nil || req.Query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	results, err := u.videoRepo.Search(ctx, req.Query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", req.Query, err)
	}
	total, err := u.videoRepo.GetTotalResults(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("count results for %q: %w", req.Query, err)
	}

	return &dto.SearchResponse{
		Query: req.Query,
		PageInfo: dto.PageInfo{
			TotalResults:   total,
			Page:           page,
			ResultsPerPage: pageSize,
		},
		Results: results,
	}, nil
}
