package dto

import "subharvest/domain/model"

// SearchRequest carries the parameters of one search API call.
type SearchRequest struct {
	Query    string   `json:"query"`
	Fields   []string `json:"fields,omitempty"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// PageInfo describes the pagination state of a search response.
type PageInfo struct {
	TotalResults   int64 `json:"totalResults"`
	Page           int   `json:"page"`
	ResultsPerPage int   `json:"resultsPerPage"`
}

// SearchResponse is the envelope returned by the search API.
type SearchResponse struct {
	Query    string              `json:"query"`
	PageInfo PageInfo            `json:"pageInfo"`
	Results  []model.VideoRecord `json:"results"`
}
