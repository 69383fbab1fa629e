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
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// VectorShapeError reports a vector pair/length that similarity math
// cannot operate on: empty vectors or mismatched lengths.
type VectorShapeError struct {
	LenA, LenB int
}

func (e *VectorShapeError) Error() string {
	return fmt.Sprintf("embed: vector shape mismatch (len a=%d, len b=%d)", e.LenA, e.LenB)
}

func checkShape(a, b []float64) error {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return &VectorShapeError{LenA: len(a), LenB: len(b)}
	}
	return nil
}

// Cosine returns the cosine similarity of a and b, clamped to [-1, 1]
// to absorb floating-point drift. A zero-norm vector yields 0 rather
// than NaN.
func Cosine(a, b []float64) (float64, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	dot := floats.Dot(a, b)
	cos := dot / (normA * normB)
	switch {
	case cos > 1:
		return 1, nil
	case cos < -1:
		return -1, nil
	default:
		return cos, nil
	}
}

// Euclidean returns the L2 distance between a and b.
func Euclidean(a, b []float64) (float64, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	diff := make([]float64, len(a))
	copy(diff, a)
	floats.Sub(diff, b)
	return floats.Norm(diff, 2), nil
}

// Normalize returns v scaled to unit L2 norm. A zero vector is
// returned unchanged rather than dividing by zero.
func Normalize(v []float64) []float64 {
	norm := floats.Norm(v, 2)
	if norm == 0 {
		out := make([]float64, len(v))
		copy(out, v)
		return out
	}
	out := make([]float64, len(v))
	copy(out, v)
	floats.Scale(1/norm, out)
	return out
}

// CosineFloat32/EuclideanFloat32/NormalizeFloat32 adapt the float64
// math above to the []float32 vectors types.Embedding and the
// HNSW-backed store traffic in, since CozoDB's vector column and the
// provider HTTP APIs both settle on float32/float64 boundaries that
// don't line up package-wide.

func CosineFloat32(a, b []float32) (float64, error) {
	return Cosine(toFloat64(a), toFloat64(b))
}

func EuclideanFloat32(a, b []float32) (float64, error) {
	return Euclidean(toFloat64(a), toFloat64(b))
}

func NormalizeFloat32(v []float32) []float32 {
	out := Normalize(toFloat64(v))
	return toFloat32(out)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
