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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_DeterministicAndUnitNorm(t *testing.T) {
	p := NewMockProvider(nil)
	v1, err := p.Embed(context.Background(), "func main() {}")
	require.NoError(t, err)
	v2, err := p.Embed(context.Background(), "func main() {}")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, Dimension)

	var normSq float64
	for _, f := range v1 {
		normSq += float64(f) * float64(f)
	}
	assert.InDelta(t, 1.0, normSq, 1e-3)
}

func TestMockProvider_DifferentTextDifferentVector(t *testing.T) {
	p := NewMockProvider(nil)
	v1, _ := p.Embed(context.Background(), "a")
	v2, _ := p.Embed(context.Background(), "b")
	assert.NotEqual(t, v1, v2)
}

func TestNewProvider_UnknownNameErrors(t *testing.T) {
	_, err := NewProvider("unknown-vendor", nil)
	assert.Error(t, err)
}

func TestNewProvider_MockIsDimAdjusted(t *testing.T) {
	p, err := NewProvider("mock", nil)
	require.NoError(t, err)
	v, err := p.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, v, Dimension)
}

func TestAdjustDim_PadsShortVector(t *testing.T) {
	v := adjustDim([]float32{1, 2, 3})
	assert.Len(t, v, Dimension)
	assert.Equal(t, float32(1), v[0])
	assert.Equal(t, float32(0), v[Dimension-1])
}

func TestAdjustDim_TruncatesLongVector(t *testing.T) {
	long := make([]float32, Dimension+10)
	v := adjustDim(long)
	assert.Len(t, v, Dimension)
}

func TestOllamaProvider_ParsesEmbeddingResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		_ = json.NewEncoder(w).Encode(ollamaResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	p := newOllamaProvider(srv.URL, "nomic-embed-text", nil)
	v, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, v, 3)
}

func TestOllamaProvider_ErrorResponseSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ollamaErrorResponse{Error: "model not found"})
	}))
	defer srv.Close()

	p := newOllamaProvider(srv.URL, "nomic-embed-text", nil)
	_, err := p.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestOpenAIProvider_ParsesEmbeddingResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(openAIResponse{Data: []struct {
			Embedding []float64 `json:"embedding"`
		}{{Embedding: []float64{0.5, 0.5}}}})
	}))
	defer srv.Close()

	p := newOpenAIProvider("test-key", srv.URL, "text-embedding-3-small", nil)
	v, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, v, 2)
}

func TestLlamaCppProvider_ParsesNestedEmbeddingArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]llamaCppResponse{{Embedding: [][]float64{{0.1, 0.2, 0.3, 0.4}}}})
	}))
	defer srv.Close()

	p := newLlamaCppProvider(srv.URL, nil)
	v, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, v, 4)
}
