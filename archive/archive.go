// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package archive persists the final graph snapshot of each recording
// session in an embedded BadgerDB, so past sessions survive restarts and can
// be inspected after the in-memory graph is cleared.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/thirdlayer/actiongraph/datatypes"
)

const (
	refPrefix   = "ref/"
	graphPrefix = "graph/"
)

// Config holds the BadgerDB settings.
type Config struct {
	// Path is the directory for the database files. Ignored when InMemory.
	Path string
	// InMemory disables disk persistence; used by tests.
	InMemory bool
}

// Archive is a session snapshot archive. Safe for concurrent use (Badger
// transactions provide isolation).
type Archive struct {
	db *badger.DB
}

// Open opens or creates the archive.
func Open(cfg Config) (*Archive, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open the session archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close releases the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Save stores the final snapshot of a session under its id, replacing any
// previous snapshot for the same session.
func (a *Archive) Save(sessionID string, snap datatypes.GraphSnapshot) error {
	if sessionID == "" {
		return errors.New("empty session id")
	}

	ref := datatypes.SessionRef{
		SessionID:   sessionID,
		GeneratedAt: snap.GeneratedAt,
		Nodes:       len(snap.Nodes),
		Edges:       len(snap.Edges),
	}
	refData, err := json.Marshal(ref)
	if err != nil {
		return err
	}
	snapData, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	err = a.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(refPrefix+sessionID), refData); err != nil {
			return err
		}
		return txn.Set([]byte(graphPrefix+sessionID), snapData)
	})
	if err != nil {
		return fmt.Errorf("failed to archive session %s: %w", sessionID, err)
	}
	return nil
}

// List returns all archived sessions, newest first.
func (a *Archive) List() ([]datatypes.SessionRef, error) {
	var refs []datatypes.SessionRef
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(refPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var ref datatypes.SessionRef
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ref)
			}); err != nil {
				return err
			}
			refs = append(refs, ref)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list archived sessions: %w", err)
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].GeneratedAt > refs[j].GeneratedAt
	})
	return refs, nil
}

// Get loads one archived snapshot. The bool is false when the session is
// unknown.
func (a *Archive) Get(sessionID string) (datatypes.GraphSnapshot, bool, error) {
	var snap datatypes.GraphSnapshot
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(graphPrefix + sessionID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return datatypes.GraphSnapshot{}, false, nil
	}
	if err != nil {
		return datatypes.GraphSnapshot{}, false, fmt.Errorf("failed to load archived session %s: %w", sessionID, err)
	}
	return snap, true, nil
}
