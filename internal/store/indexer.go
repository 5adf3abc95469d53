// internal/store/indexer.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"nomad-workers/internal/common/errors"
	"nomad-workers/internal/common/logger"
	"nomad-workers/internal/models"
)

// ContextIndexer mirrors derived contexts into Elasticsearch so the
// site can search by tag and insight. Indexing is best effort: the
// Postgres row is the source of truth, and the next refresh re-indexes
// the document anyway.
type ContextIndexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

// NewContextIndexer creates an indexer writing to the given index.
func NewContextIndexer(es *elasticsearch.Client, index string, log logger.Logger) *ContextIndexer {
	return &ContextIndexer{es: es, index: index, logger: log}
}

// contextDocument is the search-facing shape of a derived context.
type contextDocument struct {
	ContextType     string                 `json:"contextType"`
	ContextID       string                 `json:"contextId"`
	ContextData     map[string]interface{} `json:"contextData,omitempty"`
	Tags            []string               `json:"tags"`
	Insights        map[string]string      `json:"insights"`
	ModelVersion    string                 `json:"modelVersion"`
	LastGeneratedAt string                 `json:"lastGeneratedAt"`
}

// Index writes one context document, keyed "type:id" so re-indexing a
// refreshed context overwrites the previous document.
func (ix *ContextIndexer) Index(ctx context.Context, rec *models.AiContextRecord) error {
	doc := contextDocument{
		ContextType:     rec.ContextType,
		ContextID:       rec.ContextID,
		ContextData:     rec.ContextData,
		Tags:            emptyIfNilList(rec.AiTags),
		Insights:        emptyIfNilMap(rec.AiInsights),
		ModelVersion:    rec.AiModelVersion,
		LastGeneratedAt: rec.LastGeneratedAt.UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewValidationError("context document is not serializable: " + err.Error())
	}

	docID := fmt.Sprintf("%s:%s", rec.ContextType, rec.ContextID)
	res, err := ix.es.Index(
		ix.index,
		bytes.NewReader(body),
		ix.es.Index.WithDocumentID(docID),
		ix.es.Index.WithContext(ctx),
	)
	if err != nil {
		return errors.NewIndexWriteError(ix.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewIndexWriteError(ix.index, fmt.Errorf("index response: %s", res.Status()))
	}

	ix.logger.Debug("context indexed", map[string]interface{}{
		"docId": docID,
		"index": ix.index,
	})
	return nil
}
