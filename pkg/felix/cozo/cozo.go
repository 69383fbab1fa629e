// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cozo is a CGO binding to the CozoDB embedded Datalog engine's
// C API, giving the graph store (pkg/felix/store) ordered transactional
// writes, secondary indexes, and recursive Datalog queries without a
// separate server process.
package cozo

/*
#include <stdlib.h>
#include <string.h>
#include "cozo_c.h"

#cgo LDFLAGS: -L${SRCDIR}/../../lib -lcozo_c -lstdc++ -lm
#cgo windows LDFLAGS: -lbcrypt -lwsock32 -lws2_32 -lshlwapi -lrpcrt4
#cgo darwin LDFLAGS: -framework Security
*/
import "C"

import (
	"encoding/json"
	"errors"
	"fmt"
	"unsafe"
)

// DB is an open CozoDB database instance.
type DB struct {
	id     C.int32_t
	closed bool
}

// NamedRows is the result of a query: column headers plus data rows.
type NamedRows struct {
	Headers []string
	Rows    [][]any
}

// Open opens a CozoDB database. engine is "mem", "sqlite", or
// "rocksdb"; path is ignored for "mem". options carries engine-specific
// tuning and may be nil.
func Open(engine, path string, options map[string]any) (*DB, error) {
	cEngine := C.CString(engine)
	defer C.free(unsafe.Pointer(cEngine))

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	optionsJSON := "{}"
	if len(options) > 0 {
		optBytes, err := json.Marshal(options)
		if err != nil {
			return nil, fmt.Errorf("cozo: marshal options: %w", err)
		}
		optionsJSON = string(optBytes)
	}
	cOptions := C.CString(optionsJSON)
	defer C.free(unsafe.Pointer(cOptions))

	var dbID C.int32_t
	errPtr := C.cozo_open_db(cEngine, cPath, cOptions, &dbID)
	if errPtr != nil {
		errMsg := C.GoString(errPtr)
		C.cozo_free_str(errPtr)
		return nil, errors.New(errMsg)
	}
	return &DB{id: dbID}, nil
}

// Run executes a CozoScript query, allowing writes.
func (db *DB) Run(script string, params map[string]any) (NamedRows, error) {
	return db.runQuery(script, params, false)
}

// RunReadOnly executes a CozoScript query with immutable_query=true;
// write operations inside script fail.
func (db *DB) RunReadOnly(script string, params map[string]any) (NamedRows, error) {
	return db.runQuery(script, params, true)
}

func (db *DB) runQuery(script string, params map[string]any, immutable bool) (NamedRows, error) {
	if db.closed {
		return NamedRows{}, errors.New("cozo: database is closed")
	}

	cScript := C.CString(script)
	defer C.free(unsafe.Pointer(cScript))

	paramsJSON := "{}"
	if len(params) > 0 {
		paramBytes, err := json.Marshal(params)
		if err != nil {
			return NamedRows{}, fmt.Errorf("cozo: marshal params: %w", err)
		}
		paramsJSON = string(paramBytes)
	}
	cParams := C.CString(paramsJSON)
	defer C.free(unsafe.Pointer(cParams))

	resultPtr := C.cozo_run_query(db.id, cScript, cParams, C.bool(immutable))
	if resultPtr == nil {
		return NamedRows{}, errors.New("cozo: cozo_run_query returned null")
	}

	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)
	return parseResult(resultJSON)
}

// Close closes the database connection.
func (db *DB) Close() bool {
	if db.closed {
		return false
	}
	db.closed = true
	return bool(C.cozo_close_db(db.id))
}

func parseResult(jsonStr string) (NamedRows, error) {
	var result struct {
		OK      bool     `json:"ok"`
		Headers []string `json:"headers"`
		Rows    [][]any  `json:"rows"`
		Message string   `json:"message"`
		Display string   `json:"display"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return NamedRows{}, fmt.Errorf("cozo: parse result: %w", err)
	}
	if !result.OK {
		errMsg := result.Message
		if errMsg == "" {
			errMsg = result.Display
		}
		if errMsg == "" {
			errMsg = "cozo: query failed"
		}
		return NamedRows{}, errors.New(errMsg)
	}
	return NamedRows{Headers: result.Headers, Rows: result.Rows}, nil
}

// Backup writes a database snapshot to outPath.
func (db *DB) Backup(outPath string) error {
	if db.closed {
		return errors.New("cozo: database is closed")
	}
	cPath := C.CString(outPath)
	defer C.free(unsafe.Pointer(cPath))

	resultPtr := C.cozo_backup(db.id, cPath)
	if resultPtr == nil {
		return errors.New("cozo: cozo_backup returned null")
	}
	return decodeOKMessage(resultPtr)
}

// Restore restores the database from a backup file at inPath.
func (db *DB) Restore(inPath string) error {
	if db.closed {
		return errors.New("cozo: database is closed")
	}
	cPath := C.CString(inPath)
	defer C.free(unsafe.Pointer(cPath))

	resultPtr := C.cozo_restore(db.id, cPath)
	if resultPtr == nil {
		return errors.New("cozo: cozo_restore returned null")
	}
	return decodeOKMessage(resultPtr)
}

func decodeOKMessage(resultPtr *C.char) error {
	resultJSON := C.GoString(resultPtr)
	C.cozo_free_str(resultPtr)

	var result struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return fmt.Errorf("cozo: parse result: %w", err)
	}
	if !result.OK {
		return errors.New(result.Message)
	}
	return nil
}
