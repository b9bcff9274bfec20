// Package redisindex projects issues into Redis for read-optimized access.
//
// Each issue becomes a hash at issue:{key}, with secondary sets per project
// and component for cheap faceting. Every write is also announced on the
// qhub:index:events stream so downstream consumers (cache warmers, external
// search engines) can follow along.
package redisindex

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qualityhub/qhub/internal/issue"
)

const (
	hashKeyPrefix      = "issue:"
	projectSetPrefix   = "project-issues:"
	componentSetPrefix = "component-issues:"
	eventStream        = "qhub:index:events"
	eventStreamMaxLen  = 10000
)

// Index implements search.Index on a Redis client.
type Index struct {
	client *redis.Client
}

// New wraps the given Redis client.
func New(client *redis.Client) *Index {
	return &Index{client: client}
}

// Open connects to Redis at url (redis://...) and verifies the connection.
func Open(ctx context.Context, url string) (*Index, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Index{client: client}, nil
}

// Document flattens an issue into the hash fields stored in Redis.
func Document(iss *issue.Issue) map[string]any {
	return map[string]any{
		"key":           iss.Key,
		"status":        string(iss.Status),
		"resolution":    iss.ResolutionValue(),
		"type":          string(iss.Type),
		"severity":      string(iss.Severity),
		"assignee":      iss.AssigneeLogin(),
		"tags":          issue.JoinTags(iss.Tags),
		"component_key": iss.ComponentKey,
		"project_key":   iss.ProjectKey,
		"rule_key":      iss.RuleKey,
		"updated_at":    iss.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Reindex implements search.Index. The hash write, the facet set updates and
// the stream event go out in one pipeline round trip.
func (ix *Index) Reindex(ctx context.Context, iss *issue.Issue) error {
	pipe := ix.client.TxPipeline()
	pipe.HSet(ctx, hashKeyPrefix+iss.Key, Document(iss))
	pipe.SAdd(ctx, projectSetPrefix+iss.ProjectKey, iss.Key)
	pipe.SAdd(ctx, componentSetPrefix+iss.ComponentKey, iss.Key)
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: eventStream,
		MaxLen: eventStreamMaxLen,
		Approx: true,
		Values: map[string]any{
			"op":        "reindex",
			"issue_key": iss.Key,
		},
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to reindex issue %s: %w", iss.Key, err)
	}
	return nil
}

// facetSetKeys returns the facet sets an indexed document is a member of,
// read from its stored projection. An empty or partial document (index
// drift) yields only the sets that can still be named.
func facetSetKeys(doc map[string]string) []string {
	var keys []string
	if p := doc["project_key"]; p != "" {
		keys = append(keys, projectSetPrefix+p)
	}
	if c := doc["component_key"]; c != "" {
		keys = append(keys, componentSetPrefix+c)
	}
	return keys
}

// Remove implements search.Index. The stored projection is read first so the
// issue can be dropped from its project and component facet sets, not just
// the hash.
func (ix *Index) Remove(ctx context.Context, issueKey string) error {
	doc, err := ix.client.HGetAll(ctx, hashKeyPrefix+issueKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read issue %s before removal: %w", issueKey, err)
	}

	pipe := ix.client.TxPipeline()
	pipe.Del(ctx, hashKeyPrefix+issueKey)
	for _, set := range facetSetKeys(doc) {
		pipe.SRem(ctx, set, issueKey)
	}
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: eventStream,
		MaxLen: eventStreamMaxLen,
		Approx: true,
		Values: map[string]any{
			"op":        "remove",
			"issue_key": issueKey,
		},
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove issue %s from index: %w", issueKey, err)
	}
	return nil
}

// Get reads back an indexed projection. Returns nil when absent.
func (ix *Index) Get(ctx context.Context, issueKey string) (map[string]string, error) {
	doc, err := ix.client.HGetAll(ctx, hashKeyPrefix+issueKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read indexed issue %s: %w", issueKey, err)
	}
	if len(doc) == 0 {
		return nil, nil
	}
	return doc, nil
}

// Close releases the Redis client.
func (ix *Index) Close() error {
	return ix.client.Close()
}
