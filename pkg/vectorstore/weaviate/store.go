package weaviate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/sam-evolv/property-assistant-sub010/pkg/rag/search"
)

// Store searches a Weaviate class whose objects carry corpus_id, title,
// content and source_type properties.
type Store struct {
	client    *weaviate.Client
	className string
}

var _ search.VectorStore = &Store{}

func NewStore(host, scheme, className string) (*Store, error) {
	if scheme == "" {
		scheme = "http"
	}
	host = strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://")

	client, err := weaviate.NewClient(weaviate.Config{Host: host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}
	return &Store{client: client, className: className}, nil
}

type chunkObject struct {
	CorpusID   string `json:"corpus_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceType string `json:"source_type"`
	Additional struct {
		ID        string  `json:"id"`
		Certainty float64 `json:"certainty"`
	} `json:"_additional"`
}

func (s *Store) SearchSimilar(ctx context.Context, vector []float32, corpusID string, k int) ([]search.VectorMatch, error) {
	where := filters.Where().
		WithPath([]string{"corpus_id"}).
		WithOperator(filters.Equal).
		WithValueString(corpusID)

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	// certainty is always [0,1], unlike distance
	fields := []graphql.Field{
		{Name: "corpus_id"},
		{Name: "title"},
		{Name: "content"},
		{Name: "source_type"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "id"},
			{Name: "certainty"},
		}},
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithWhere(where).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate search error: %s", result.Errors[0].Message)
	}

	objects, err := s.parse(result)
	if err != nil {
		return nil, err
	}

	matches := make([]search.VectorMatch, 0, len(objects))
	for _, o := range objects {
		matches = append(matches, search.VectorMatch{
			ID:         o.Additional.ID,
			Title:      o.Title,
			Content:    o.Content,
			CorpusID:   o.CorpusID,
			SourceType: o.SourceType,
			Similarity: o.Additional.Certainty,
		})
	}
	return matches, nil
}

func (s *Store) parse(resp *models.GraphQLResponse) ([]chunkObject, error) {
	respBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}

	var parsed struct {
		Get map[string][]chunkObject `json:"Get"`
	}
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal GraphQL response: %w", err)
	}
	return parsed.Get[s.className], nil
}
