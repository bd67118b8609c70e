// Package service holds the backends the chat core depends on: the
// Elasticsearch course store and the Postgres session store.
package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/coursechat/coursechat/internal/models"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"golang.org/x/sync/singleflight"
)

// VectorStore serves ranked course-content chunks and catalog metadata from
// two Elasticsearch indices: one holding content chunks, one holding a
// catalog document per course.
type VectorStore struct {
	client       *elasticsearch.Client
	chunksIndex  string
	catalogIndex string
	maxResults   int

	// Concurrent link lookups for the same course share one catalog fetch.
	sf singleflight.Group
}

// VectorStoreConfig carries connection and index settings.
type VectorStoreConfig struct {
	Scheme       string
	Host         string
	Port         int
	User         string
	Password     string
	VerifyCerts  bool
	MaxRetries   int
	ChunksIndex  string
	CatalogIndex string
	MaxResults   int
}

func NewVectorStore(cfg VectorStoreConfig) (*VectorStore, error) {
	esCfg := elasticsearch.Config{
		Addresses:  []string{fmt.Sprintf("%s://%s:%d", cfg.Scheme, cfg.Host, cfg.Port)},
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.User != "" {
		esCfg.Username = cfg.User
		esCfg.Password = cfg.Password
	}
	if !cfg.VerifyCerts {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402 - user explicitly disabled cert verification
			},
		}
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}
	return &VectorStore{
		client:       client,
		chunksIndex:  cfg.ChunksIndex,
		catalogIndex: cfg.CatalogIndex,
		maxResults:   cfg.MaxResults,
	}, nil
}

// TestConnection pings the cluster
func (s *VectorStore) TestConnection(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.Status())
	}
	return nil
}

// chunkDoc is the indexed form of one content chunk.
type chunkDoc struct {
	Content      string `json:"content"`
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number"`
	ChunkIndex   int    `json:"chunk_index"`
}

// Search returns ranked chunks for a query. A course filter is resolved
// against the catalog first; an unresolvable filter is reported through
// SearchResults.Error so the model can refine its call.
func (s *VectorStore) Search(ctx context.Context, query, courseName string, lessonNumber *int) (models.SearchResults, error) {
	resolved := ""
	if courseName != "" {
		var err error
		resolved, err = s.ResolveCourseName(ctx, courseName)
		if err != nil {
			return models.SearchResults{}, err
		}
		if resolved == "" {
			return models.SearchResults{
				Error: fmt.Sprintf("No course found matching '%s'", courseName),
			}, nil
		}
	}

	must := []map[string]interface{}{
		{"match": map[string]interface{}{"content": query}},
	}
	var filter []map[string]interface{}
	if resolved != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"course_title.keyword": resolved},
		})
	}
	if lessonNumber != nil {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"lesson_number": *lessonNumber},
		})
	}

	body := map[string]interface{}{
		"size": s.maxResults,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}

	raw, err := s.search(ctx, s.chunksIndex, body)
	if err != nil {
		return models.SearchResults{}, err
	}

	var out models.SearchResults
	for _, hit := range raw {
		var doc chunkDoc
		if err := json.Unmarshal(hit, &doc); err != nil {
			return models.SearchResults{}, fmt.Errorf("decode chunk: %w", err)
		}
		out.Chunks = append(out.Chunks, models.Chunk{
			Text:         doc.Content,
			CourseTitle:  doc.CourseTitle,
			LessonNumber: doc.LessonNumber,
			ChunkIndex:   doc.ChunkIndex,
		})
	}
	return out, nil
}

// ResolveCourseName maps a fuzzy name to the best-matching catalog title.
// Returns "" when nothing matches.
func (s *VectorStore) ResolveCourseName(ctx context.Context, name string) (string, error) {
	body := map[string]interface{}{
		"size": 1,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"title": map[string]interface{}{
					"query":     name,
					"fuzziness": "AUTO",
				},
			},
		},
	}
	raw, err := s.search(ctx, s.catalogIndex, body)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", nil
	}
	var meta models.CourseMetadata
	if err := json.Unmarshal(raw[0], &meta); err != nil {
		return "", fmt.Errorf("decode catalog entry: %w", err)
	}
	return meta.Title, nil
}

// GetCourseLink returns the course-level link, "" when none is recorded.
func (s *VectorStore) GetCourseLink(ctx context.Context, courseTitle string) (string, error) {
	meta, err := s.GetCourseMetadata(ctx, courseTitle)
	if err != nil {
		return "", err
	}
	return meta.Link, nil
}

// GetLessonLink returns the link of one lesson, "" when none is recorded.
func (s *VectorStore) GetLessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error) {
	meta, err := s.GetCourseMetadata(ctx, courseTitle)
	if err != nil {
		return "", err
	}
	for _, l := range meta.Lessons {
		if l.Number == lessonNumber {
			return l.Link, nil
		}
	}
	return "", nil
}

// GetCourseMetadata fetches the catalog record for an exact course title.
// Concurrent fetches for the same course are deduplicated via singleflight.
func (s *VectorStore) GetCourseMetadata(ctx context.Context, courseTitle string) (models.CourseMetadata, error) {
	v, err, _ := s.sf.Do(courseTitle, func() (interface{}, error) {
		body := map[string]interface{}{
			"size": 1,
			"query": map[string]interface{}{
				"term": map[string]interface{}{"title.keyword": courseTitle},
			},
		}
		raw, err := s.search(ctx, s.catalogIndex, body)
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("course %q not found in catalog", courseTitle)
		}
		var meta models.CourseMetadata
		if err := json.Unmarshal(raw[0], &meta); err != nil {
			return nil, fmt.Errorf("decode catalog entry: %w", err)
		}
		return meta, nil
	})
	if err != nil {
		return models.CourseMetadata{}, err
	}
	return v.(models.CourseMetadata), nil
}

// Analytics returns the catalog-wide course count and titles.
func (s *VectorStore) Analytics(ctx context.Context) (models.CourseStats, error) {
	body := map[string]interface{}{
		"size":    1000,
		"_source": []string{"title"},
		"query":   map[string]interface{}{"match_all": map[string]interface{}{}},
	}
	raw, err := s.search(ctx, s.catalogIndex, body)
	if err != nil {
		return models.CourseStats{}, err
	}

	stats := models.CourseStats{CourseTitles: []string{}}
	for _, hit := range raw {
		var meta models.CourseMetadata
		if err := json.Unmarshal(hit, &meta); err != nil {
			continue
		}
		stats.CourseTitles = append(stats.CourseTitles, meta.Title)
	}
	stats.TotalCourses = len(stats.CourseTitles)
	return stats, nil
}

// search runs one query and returns the raw _source of each hit in rank order.
func (s *VectorStore) search(ctx context.Context, index string, body map[string]interface{}) ([]json.RawMessage, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	}
	res, err := s.client.Search(opts...)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search %s: %s: %s", index, res.Status(), string(msg))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	sources := make([]json.RawMessage, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		sources = append(sources, h.Source)
	}
	return sources, nil
}
