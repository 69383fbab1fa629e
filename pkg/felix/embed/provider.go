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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Dimension is the fixed embedding width the graph store's HNSW index
// is built with (pkg/felix/store's felix_embedding table). Providers
// that emit a different width are padded or truncated to it by
// dimAdjust before a vector leaves this package.
const Dimension = 1536

// Provider generates embeddings for code or prose text.
type Provider interface {
	// Embed returns the embedding vector for text. Providers return
	// their native width; the NewProvider wrapper fits it to Dimension.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewProvider builds a Provider from a recognized name, mirroring the
// collaborator boundary spec.md §6 draws for the embedding backend.
// Supported: "mock", "nomic", "ollama", "openai", "llamacpp"/"qodo".
func NewProvider(name string, logger *slog.Logger) (Provider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch name {
	case "mock":
		return &dimAdjusted{inner: NewMockProvider(logger)}, nil

	case "nomic":
		apiKey := os.Getenv("NOMIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("embed: NOMIC_API_KEY is required for the nomic provider")
		}
		baseURL := envOr("NOMIC_API_BASE", "https://api-atlas.nomic.ai/v1")
		model := envOr("NOMIC_MODEL", "nomic-embed-text-v1.5")
		return &dimAdjusted{inner: newNomicProvider(apiKey, baseURL, model, logger)}, nil

	case "ollama", "local_model":
		baseURL := envOr("OLLAMA_BASE_URL", "http://localhost:11434")
		model := envOr("OLLAMA_EMBED_MODEL", "nomic-embed-text")
		return &dimAdjusted{inner: newOllamaProvider(baseURL, model, logger)}, nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("embed: OPENAI_API_KEY is required for the openai provider")
		}
		baseURL := envOr("OPENAI_API_BASE", "https://api.openai.com/v1")
		model := envOr("OPENAI_EMBED_MODEL", "text-embedding-3-small")
		return &dimAdjusted{inner: newOpenAIProvider(apiKey, baseURL, model, logger)}, nil

	case "llamacpp", "qodo":
		baseURL := envOr("LLAMACPP_EMBED_URL", "http://localhost:8090")
		return &dimAdjusted{inner: newLlamaCppProvider(baseURL, logger)}, nil

	default:
		return nil, fmt.Errorf("embed: unknown provider %q (supported: mock, nomic, ollama, openai, llamacpp, qodo)", name)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// dimAdjusted wraps a Provider whose native dimension may not match
// Dimension, padding short vectors with zeros and truncating long
// ones so every embedding the package hands back fits the store's
// fixed-width HNSW column regardless of model.
type dimAdjusted struct {
	inner Provider
}

func (d *dimAdjusted) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := d.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return adjustDim(v), nil
}

func adjustDim(v []float32) []float32 {
	switch {
	case len(v) == Dimension:
		return v
	case len(v) > Dimension:
		return v[:Dimension]
	default:
		out := make([]float32, Dimension)
		copy(out, v)
		return out
	}
}

// MockProvider generates deterministic embeddings for tests, hashed
// from the input text rather than produced by a real model.
type MockProvider struct {
	logger *slog.Logger
}

func NewMockProvider(logger *slog.Logger) *MockProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockProvider{logger: logger}
}

func (m *MockProvider) Embed(_ context.Context, text string) ([]float32, error) {
	hash := djb2(text)
	v := make([]float32, Dimension)
	for i := range v {
		val := float32((hash+uint64(i)*7919)%10000) / 10000.0
		v[i] = val*2.0 - 1.0
	}
	return NormalizeFloat32(v), nil
}

func djb2(s string) uint64 {
	var hash uint64 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint64(c)
	}
	return hash
}

// =============================================================================
// NOMIC
// =============================================================================

type nomicProvider struct {
	apiKey, baseURL, model string
	httpClient             *http.Client
	logger                 *slog.Logger
}

func newNomicProvider(apiKey, baseURL, model string, logger *slog.Logger) *nomicProvider {
	return &nomicProvider{apiKey: apiKey, baseURL: baseURL, model: model,
		httpClient: &http.Client{Timeout: 60 * time.Second}, logger: logger}
}

type nomicRequest struct {
	Texts    []string `json:"texts"`
	Model    string   `json:"model"`
	TaskType string   `json:"task_type,omitempty"`
}

type nomicResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

type nomicErrorResponse struct {
	Detail string `json:"detail"`
}

func (n *nomicProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(nomicRequest{Texts: []string{text}, Model: n.model, TaskType: "search_document"})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal nomic request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/embedding/text", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build nomic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: nomic request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embed: read nomic response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp nomicErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Detail != "" {
			return nil, fmt.Errorf("embed: nomic error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return nil, fmt.Errorf("embed: nomic error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed nomicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("embed: parse nomic response: %w", err)
	}
	if len(parsed.Embeddings) == 0 {
		return nil, fmt.Errorf("embed: nomic returned no embeddings")
	}
	return NormalizeFloat32(float64to32(parsed.Embeddings[0])), nil
}

// =============================================================================
// OLLAMA
// =============================================================================

type ollamaProvider struct {
	baseURL, model string
	httpClient     *http.Client
	logger         *slog.Logger
}

func newOllamaProvider(baseURL, model string, logger *slog.Logger) *ollamaProvider {
	return &ollamaProvider{baseURL: baseURL, model: model,
		httpClient: &http.Client{Timeout: 120 * time.Second}, logger: logger}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

type ollamaErrorResponse struct {
	Error string `json:"error"`
}

func isNomicModel(model string) bool { return strings.Contains(strings.ToLower(model), "nomic") }

func (o *ollamaProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	prompt := text
	if isNomicModel(o.model) {
		prompt = "search_document: " + text
	}
	body, err := json.Marshal(ollamaRequest{Model: o.model, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal ollama request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: ollama request (is it running at %s?): %w", o.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embed: read ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp ollamaErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("embed: ollama error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("embed: ollama error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed ollamaResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("embed: parse ollama response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("embed: ollama returned an empty embedding")
	}
	return NormalizeFloat32(float64to32(parsed.Embedding)), nil
}

// =============================================================================
// OPENAI-COMPATIBLE
// =============================================================================

type openAIProvider struct {
	apiKey, baseURL, model string
	httpClient             *http.Client
	logger                 *slog.Logger
}

func newOpenAIProvider(apiKey, baseURL, model string, logger *slog.Logger) *openAIProvider {
	return &openAIProvider{apiKey: apiKey, baseURL: baseURL, model: model,
		httpClient: &http.Client{Timeout: 60 * time.Second}, logger: logger}
}

type openAIRequest struct {
	Input          string `json:"input"`
	Model          string `json:"model"`
	EncodingFormat string `json:"encoding_format,omitempty"`
}

type openAIResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

type openAIErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *openAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(openAIRequest{Input: text, Model: o.model, EncodingFormat: "float"})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal openai request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: openai request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embed: read openai response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var errResp openAIErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("embed: openai error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("embed: openai error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("embed: parse openai response: %w", err)
	}
	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embed: openai returned an empty embedding")
	}
	return NormalizeFloat32(float64to32(parsed.Data[0].Embedding)), nil
}

// =============================================================================
// LLAMA.CPP (Qodo-Embed-1)
// =============================================================================

type llamaCppProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func newLlamaCppProvider(baseURL string, logger *slog.Logger) *llamaCppProvider {
	return &llamaCppProvider{baseURL: baseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second}, logger: logger}
}

type llamaCppRequest struct {
	Content string `json:"content"`
}

type llamaCppResponse struct {
	Embedding [][]float64 `json:"embedding"`
}

func (l *llamaCppProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(llamaCppRequest{Content: text})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal llama.cpp request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/embedding", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build llama.cpp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: llama.cpp request (is llama-server running at %s?): %w", l.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embed: read llama.cpp response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: llama.cpp error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed []llamaCppResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("embed: parse llama.cpp response: %w", err)
	}
	if len(parsed) == 0 || len(parsed[0].Embedding) == 0 || len(parsed[0].Embedding[0]) == 0 {
		return nil, fmt.Errorf("embed: llama.cpp returned an empty embedding")
	}
	return NormalizeFloat32(float64to32(parsed[0].Embedding[0])), nil
}

func float64to32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
