// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package embed

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felix-ide/felix/pkg/felix/types"
)

// maxTextChars truncates text before it reaches a provider. Code
// tokenizes poorly (operators, punctuation become multiple tokens),
// so this stays well under any model's context window.
const maxTextChars = 2000

// HashLookup is the narrow read used to decide whether an entity's
// content changed since it was last embedded (spec.md §4.6 "unchanged
// content ⇒ skip re-embed"). *store.Store satisfies this.
type HashLookup interface {
	GetEmbeddingContentHash(ctx context.Context, entityID string, kind types.EntityKind) (string, bool, error)
}

// Request is one entity to embed.
type Request struct {
	EntityID    string
	EntityKind  types.EntityKind
	Text        string
	ContentHash string
}

// Result is the outcome of embedding one Request. Err is set on
// failure (after retries are exhausted for retryable errors, at once
// for the rest); Vector is nil in that case.
// Skipped is set when HashLookup found an unchanged contentHash.
type Result struct {
	EntityID    string
	EntityKind  types.EntityKind
	Vector      []float32
	ContentHash string
	Skipped     bool
	Truncated   bool
	Err         error
}

// Generator drives a Provider with retry/backoff and optional
// worker-pool concurrency, grounded on the teacher's
// EmbeddingGenerator but generalized from FunctionEntity/TypeEntity
// to any (entityId, entityKind) pair.
type Generator struct {
	provider Provider
	workers  int
	retry    RetryConfig
	logger   *slog.Logger
}

func NewGenerator(provider Provider, workers int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, workers: workers, retry: DefaultRetryConfig(), logger: logger}
}

func (g *Generator) SetRetryConfig(cfg RetryConfig) {
	g.retry = cfg.withDefaults()
}

// EmbedBatch embeds every request, skipping any whose ContentHash
// matches what hashes already has on record. hashes may be nil to
// force re-embedding everything.
func (g *Generator) EmbedBatch(ctx context.Context, hashes HashLookup, reqs []Request) ([]Result, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	results := make([]Result, len(reqs))

	pending := make([]int, 0, len(reqs))
	for i, r := range reqs {
		if skip, existingHash := g.shouldSkip(ctx, hashes, r); skip {
			recordSkipped()
			results[i] = Result{EntityID: r.EntityID, EntityKind: r.EntityKind, Skipped: true, ContentHash: existingHash}
			continue
		}
		pending = append(pending, i)
	}

	if g.workers <= 1 {
		for _, i := range pending {
			results[i] = g.embedOne(ctx, reqs[i])
		}
		return results, nil
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(g.workers)
	for _, i := range pending {
		i := i
		group.Go(func() error {
			results[i] = g.embedOne(gctx, reqs[i])
			return nil
		})
	}
	_ = group.Wait()

	errCount, truncCount := 0, 0
	for _, i := range pending {
		if results[i].Err != nil {
			errCount++
		}
		if results[i].Truncated {
			truncCount++
		}
	}
	if errCount > 0 || truncCount > 0 {
		g.logger.Info("embed.batch.summary", "total", len(pending), "errors", errCount, "truncated", truncCount, "workers", g.workers)
	}
	return results, nil
}

func (g *Generator) shouldSkip(ctx context.Context, hashes HashLookup, r Request) (bool, string) {
	if hashes == nil || r.ContentHash == "" {
		return false, ""
	}
	existing, ok, err := hashes.GetEmbeddingContentHash(ctx, r.EntityID, r.EntityKind)
	if err != nil || !ok {
		return false, ""
	}
	return existing == r.ContentHash, existing
}

func (g *Generator) embedOne(ctx context.Context, r Request) Result {
	text := r.Text
	truncated := false
	if len(text) > maxTextChars {
		text = text[:maxTextChars]
		truncated = true
	}

	start := time.Now()
	vector, err := g.embedWithRetry(ctx, r.EntityID, text)
	observeDuration(time.Since(start).Seconds())

	if err != nil {
		recordError()
		g.logger.Error("embed.failed", "entity_id", r.EntityID, "entity_kind", string(r.EntityKind), "text_len", len(r.Text), "error", err)
		return Result{EntityID: r.EntityID, EntityKind: r.EntityKind, Truncated: truncated, Err: err}
	}
	recordComputed()
	return Result{EntityID: r.EntityID, EntityKind: r.EntityKind, Vector: vector, ContentHash: r.ContentHash, Truncated: truncated}
}

func (g *Generator) embedWithRetry(ctx context.Context, entityID, text string) ([]float32, error) {
	retry := g.retry.withDefaults()
	var vector []float32
	var err error
	for attempt := 0; attempt < retry.MaxRetries; attempt++ {
		vector, err = g.provider.Embed(ctx, text)
		if err == nil {
			return vector, nil
		}
		if !isRetryableError(err) || attempt == retry.MaxRetries-1 {
			return nil, err
		}
		sleep := backoffWithJitter(retry.InitialBackoff, attempt, retry.Multiplier, retry.MaxBackoff)
		recordRetry()
		g.logger.Warn("embed.retry", "entity_id", entityID, "attempt", attempt+1, "sleep_ms", sleep.Milliseconds(), "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, err
}
