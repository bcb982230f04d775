package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"subharvest/domain/model"
	"subharvest/infrastructure/logger"

	"github.com/google/go-querystring/query"
)

// SolrRepository persists video records as documents in a Solr core,
// relying on the engine's own id index for existence checks.
type SolrRepository struct {
	baseURL string
	client  *http.Client
}

// NewSolrRepository creates a repository for the core at baseURL, e.g.
// http://localhost:8983/solr/videos. A nil client falls back to a default
// client; timeouts are whatever the client defaults to.
func NewSolrRepository(baseURL string, client *http.Client) *SolrRepository {
	if client == nil {
		client = &http.Client{}
	}
	return &SolrRepository{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// solrSelectParams are the query parameters of a /select call.
type solrSelectParams struct {
	Query  string `url:"q"`
	Rows   int    `url:"rows"`
	Start  int    `url:"start"`
	Fields string `url:"fl,omitempty"`
	Format string `url:"wt"`
}

// solrSelectResponse is the subset of the /select response the repository
// reads.
type solrSelectResponse struct {
	Response struct {
		NumFound int64             `json:"numFound"`
		Docs     []json.RawMessage `json:"docs"`
	} `json:"response"`
}

// Save submits the records of the batch that have no document with the same
// id in the core, as a single auto-committed upsert. The existence check is
// one query per record; batches are bounded by one channel's video count, so
// the round trips stay acceptable.
func (r *SolrRepository) Save(ctx context.Context, batch []model.VideoRecord) error {
	fresh := make([]model.VideoRecord, 0, len(batch))
	for _, record := range batch {
		exists, err := r.exists(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("check existence of %s: %w", record.ID, err)
		}
		if !exists {
			fresh = append(fresh, record)
		}
	}

	if len(fresh) == 0 {
		logger.GetLogger().Info("No new records to index")
		return nil
	}

	body, err := json.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("encode update batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/update?commit=true", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("solr update: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(response.Body)
		return fmt.Errorf("solr update returned %d: %s", response.StatusCode, detail)
	}

	logger.GetLogger().WithField("indexed", len(fresh)).Info("Records indexed in Solr")
	return nil
}

// Search returns one page of matching documents for the free-text query.
func (r *SolrRepository) Search(ctx context.Context, q string, limit, offset int) ([]model.VideoRecord, error) {
	result, err := r.selectQuery(ctx, solrSelectParams{Query: q, Rows: limit, Start: offset, Format: "json"})
	if err != nil {
		return nil, err
	}
	records := make([]model.VideoRecord, 0, len(result.Response.Docs))
	for _, doc := range result.Response.Docs {
		var record model.VideoRecord
		if err := json.Unmarshal(doc, &record); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Skipping undecodable Solr document")
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// GetTotalResults returns the engine's total match count for the query.
func (r *SolrRepository) GetTotalResults(ctx context.Context, q string) (int64, error) {
	result, err := r.selectQuery(ctx, solrSelectParams{Query: q, Rows: 0, Format: "json"})
	if err != nil {
		return 0, err
	}
	return result.Response.NumFound, nil
}

// exists checks whether a document with the given id is already indexed.
func (r *SolrRepository) exists(ctx context.Context, id string) (bool, error) {
	result, err := r.selectQuery(ctx, solrSelectParams{
		Query:  "id:" + escapeQueryTerm(id),
		Rows:   0,
		Format: "json",
	})
	if err != nil {
		return false, err
	}
	return result.Response.NumFound > 0, nil
}

func (r *SolrRepository) selectQuery(ctx context.Context, params solrSelectParams) (*solrSelectResponse, error) {
	values, err := query.Values(params)
	if err != nil {
		return nil, fmt.Errorf("encode select params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/select?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}

	response, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("solr select: %w", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(response.Body)
		return nil, fmt.Errorf("solr select returned %d: %s", response.StatusCode, detail)
	}

	result := &solrSelectResponse{}
	if err := json.NewDecoder(response.Body).Decode(result); err != nil {
		return nil, fmt.Errorf("decode select response: %w", err)
	}
	return result, nil
}

// escapeQueryTerm wraps terms that would otherwise be parsed as query
// syntax. Video identifiers can start with "-", which Solr reads as a
// prohibit operator inside "id:<term>" queries.
func escapeQueryTerm(term string) string {
	if strings.HasPrefix(term, "-") {
		return `"` + term + `"`
	}
	return term
}
