package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"subharvest/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSolr fakes the /select and /update endpoints of a Solr core, keeping
// indexed documents in memory keyed by id.
type fakeSolr struct {
	t             *testing.T
	docs          map[string]model.VideoRecord
	selectQueries []string
	updates       int
}

func newFakeSolr(t *testing.T) (*fakeSolr, *httptest.Server) {
	f := &fakeSolr{t: t, docs: map[string]model.VideoRecord{}}
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeSolr) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/select"):
		f.handleSelect(w, r)
	case strings.HasSuffix(r.URL.Path, "/update"):
		f.handleUpdate(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeSolr) handleSelect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	f.selectQueries = append(f.selectQueries, q)

	matched := make([]model.VideoRecord, 0, len(f.docs))
	if id, ok := strings.CutPrefix(q, "id:"); ok {
		id = strings.Trim(id, `"`)
		if doc, found := f.docs[id]; found {
			matched = append(matched, doc)
		}
	} else {
		for _, doc := range f.docs {
			matched = append(matched, doc)
		}
	}

	docs := matched
	if r.URL.Query().Get("rows") == "0" {
		docs = nil
	}
	fmt.Fprintf(w, `{"response":{"numFound":%d,"docs":%s}}`, len(matched), mustMarshal(f.t, docs))
}

func (f *fakeSolr) handleUpdate(w http.ResponseWriter, r *http.Request) {
	f.updates++
	var batch []model.VideoRecord
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&batch))
	for _, doc := range batch {
		f.docs[doc.ID] = doc
	}
	fmt.Fprint(w, `{"responseHeader":{"status":0}}`)
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	if v == nil {
		return []byte("[]")
	}
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestSolrRepository_SaveSkipsIndexedRecords(t *testing.T) {
	solr, server := newFakeSolr(t)
	solr.docs["a"] = record("a", "Alpha")
	repo := NewSolrRepository(server.URL, server.Client())
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []model.VideoRecord{record("a", "Alpha"), record("b", "Beta")}))

	assert.Equal(t, 1, solr.updates)
	assert.Len(t, solr.docs, 2)
}

func TestSolrRepository_SaveWithNothingFreshSkipsUpdate(t *testing.T) {
	solr, server := newFakeSolr(t)
	solr.docs["a"] = record("a", "Alpha")
	repo := NewSolrRepository(server.URL, server.Client())

	require.NoError(t, repo.Save(context.Background(), []model.VideoRecord{record("a", "Alpha")}))

	assert.Zero(t, solr.updates)
}

func TestSolrRepository_SaveQuotesLeadingDashIDs(t *testing.T) {
	solr, server := newFakeSolr(t)
	repo := NewSolrRepository(server.URL, server.Client())

	require.NoError(t, repo.Save(context.Background(), []model.VideoRecord{record("-abc123", "Dashed")}))

	require.Len(t, solr.selectQueries, 1)
	assert.Equal(t, `id:"-abc123"`, solr.selectQueries[0])
	assert.Contains(t, solr.docs, "-abc123")
}

func TestSolrRepository_Search(t *testing.T) {
	solr, server := newFakeSolr(t)
	solr.docs["a"] = record("a", "Alpha")
	solr.docs["b"] = record("b", "Beta")
	repo := NewSolrRepository(server.URL, server.Client())

	records, err := repo.Search(context.Background(), "*:*", 10, 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSolrRepository_GetTotalResults(t *testing.T) {
	solr, server := newFakeSolr(t)
	solr.docs["a"] = record("a", "Alpha")
	solr.docs["b"] = record("b", "Beta")
	repo := NewSolrRepository(server.URL, server.Client())

	total, err := repo.GetTotalResults(context.Background(), "*:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestSolrRepository_SelectErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "core unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	repo := NewSolrRepository(server.URL, server.Client())

	_, err := repo.GetTotalResults(context.Background(), "*:*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestEscapeQueryTerm(t *testing.T) {
	assert.Equal(t, "abc", escapeQueryTerm("abc"))
	assert.Equal(t, `"-abc"`, escapeQueryTerm("-abc"))
}
