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
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felix-ide/felix/pkg/felix/types"
)

// countingProvider records how many times Embed was called and can be
// made to fail a fixed number of times before succeeding, or fail
// forever for a given text.
type countingProvider struct {
	calls      int32
	failTimes  int32 // Embed fails this many times, then succeeds
	failAlways map[string]bool
}

func (p *countingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.failAlways[text] {
		return nil, fmt.Errorf("permanent failure for %q", text)
	}
	if p.failTimes > 0 {
		p.failTimes--
		return nil, fmt.Errorf("connection refused")
	}
	return []float32{1, 2, 3}, nil
}

type fakeHashLookup struct {
	hashes map[string]string // entityID -> contentHash
}

func (f *fakeHashLookup) GetEmbeddingContentHash(_ context.Context, entityID string, _ types.EntityKind) (string, bool, error) {
	h, ok := f.hashes[entityID]
	return h, ok, nil
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Multiplier: 2.0}
}

func TestGenerator_EmbedBatchSequential(t *testing.T) {
	p := &countingProvider{}
	g := NewGenerator(p, 1, nil)
	reqs := []Request{
		{EntityID: "a", EntityKind: "component", Text: "func a() {}"},
		{EntityID: "b", EntityKind: "component", Text: "func b() {}"},
	}
	results, err := g.EmbedBatch(context.Background(), nil, reqs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, []float32{1, 2, 3}, r.Vector)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&p.calls))
}

func TestGenerator_EmbedBatchParallelMatchesSequentialCount(t *testing.T) {
	reqs := make([]Request, 50)
	for i := range reqs {
		reqs[i] = Request{EntityID: fmt.Sprintf("e%d", i), EntityKind: "component", Text: "x"}
	}

	p := &countingProvider{}
	g := NewGenerator(p, 8, nil)
	results, err := g.EmbedBatch(context.Background(), nil, reqs)
	require.NoError(t, err)
	require.Len(t, results, 50)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
	assert.Equal(t, int32(50), atomic.LoadInt32(&p.calls))
}

func TestGenerator_SkipsUnchangedContentHash(t *testing.T) {
	p := &countingProvider{}
	g := NewGenerator(p, 1, nil)
	hashes := &fakeHashLookup{hashes: map[string]string{"a": "hash1"}}

	reqs := []Request{
		{EntityID: "a", EntityKind: "component", Text: "func a() {}", ContentHash: "hash1"},
		{EntityID: "b", EntityKind: "component", Text: "func b() {}", ContentHash: "hash2"},
	}
	results, err := g.EmbedBatch(context.Background(), hashes, reqs)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Skipped)
	assert.False(t, results[1].Skipped)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.calls), "only the changed entity should reach the provider")
}

func TestGenerator_ChangedContentHashReEmbeds(t *testing.T) {
	p := &countingProvider{}
	g := NewGenerator(p, 1, nil)
	hashes := &fakeHashLookup{hashes: map[string]string{"a": "old-hash"}}

	reqs := []Request{{EntityID: "a", EntityKind: "component", Text: "func a() {}", ContentHash: "new-hash"}}
	results, err := g.EmbedBatch(context.Background(), hashes, reqs)
	require.NoError(t, err)
	assert.False(t, results[0].Skipped)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.calls))
}

func TestGenerator_RetriesRetryableErrorsThenSucceeds(t *testing.T) {
	p := &countingProvider{failTimes: 2}
	g := NewGenerator(p, 1, nil)
	g.SetRetryConfig(fastRetry())

	results, err := g.EmbedBatch(context.Background(), nil, []Request{{EntityID: "a", Text: "x"}})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&p.calls))
}

func TestGenerator_NonRetryableErrorFailsImmediately(t *testing.T) {
	p := &countingProvider{failAlways: map[string]bool{"bad text": true}}
	g := NewGenerator(p, 1, nil)
	g.SetRetryConfig(fastRetry())

	results, err := g.EmbedBatch(context.Background(), nil, []Request{{EntityID: "a", Text: "bad text"}})
	require.NoError(t, err)
	require.Error(t, results[0].Err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.calls), "a non-retryable error should not be retried")
}

func TestGenerator_TruncatesLongText(t *testing.T) {
	p := &countingProvider{}
	g := NewGenerator(p, 1, nil)
	longText := make([]byte, maxTextChars+500)
	for i := range longText {
		longText[i] = 'x'
	}
	results, err := g.EmbedBatch(context.Background(), nil, []Request{{EntityID: "a", Text: string(longText)}})
	require.NoError(t, err)
	assert.True(t, results[0].Truncated)
}

func TestGenerator_EmptyBatchReturnsNil(t *testing.T) {
	g := NewGenerator(&countingProvider{}, 1, nil)
	results, err := g.EmbedBatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}
