// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package state

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/goccy/go-json"
)

// Reserved bookmark keys.
const (
	KeyVersion                = "version"
	KeyJobID                  = "JobID"
	KeyBatchIDs               = "BatchIDs"
	KeyJobHighestBookmarkSeen = "JobHighestBookmarkSeen"
)

// Bookmark holds the checkpoint values of one stream.
type Bookmark map[string]any

// State is the checkpoint document for all streams.
type State struct {
	mu            sync.RWMutex
	bookmarks     map[string]Bookmark
	currentStream string
}

// document is the JSON form of State.
type document struct {
	Bookmarks     map[string]Bookmark `json:"bookmarks"`
	CurrentStream *string             `json:"current_stream"`
}

// New returns an empty state.
func New() *State {
	return &State{bookmarks: make(map[string]Bookmark)}
}

// Load decodes a state document. Empty input yields an empty state.
func Load(r io.Reader) (*State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a state document from path.
func LoadFile(path string) (*State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Parse decodes a state document from data.
func Parse(data []byte) (*State, error) {
	s := New()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	for id, bm := range doc.Bookmarks {
		if bm == nil {
			bm = Bookmark{}
		}
		s.bookmarks[id] = bm
	}
	if doc.CurrentStream != nil {
		s.currentStream = *doc.CurrentStream
	}
	return s, nil
}

// MarshalJSON encodes the state document. An unset current stream is null.
func (s *State) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := document{Bookmarks: make(map[string]Bookmark, len(s.bookmarks))}
	for id, bm := range s.bookmarks {
		doc.Bookmarks[id] = bm
	}
	if s.currentStream != "" {
		cs := s.currentStream
		doc.CurrentStream = &cs
	}
	return json.Marshal(doc)
}

// Clone returns a deep copy of the top two levels of the state.
func (s *State) Clone() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &State{bookmarks: make(map[string]Bookmark, len(s.bookmarks)), currentStream: s.currentStream}
	for id, bm := range s.bookmarks {
		cp := make(Bookmark, len(bm))
		for k, v := range bm {
			cp[k] = v
		}
		out.bookmarks[id] = cp
	}
	return out
}

// Get returns the value stored under key for stream.
func (s *State) Get(stream, key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bm, ok := s.bookmarks[stream]
	if !ok {
		return nil, false
	}
	v, ok := bm[key]
	return v, ok
}

// GetString returns the value under key if it is a non-empty string.
func (s *State) GetString(stream, key string) (string, bool) {
	v, ok := s.Get(stream, key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok && str != ""
}

// Set stores value under key for stream. A nil value is stored as null.
func (s *State) Set(stream, key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(stream, key, value)
}

func (s *State) setLocked(stream, key string, value any) {
	bm, ok := s.bookmarks[stream]
	if !ok {
		bm = Bookmark{}
		s.bookmarks[stream] = bm
	}
	bm[key] = value
}

// Delete removes key from stream and returns the removed value.
func (s *State) Delete(stream, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bm, ok := s.bookmarks[stream]
	if !ok {
		return nil, false
	}
	v, ok := bm[key]
	delete(bm, key)
	return v, ok
}

// HasBookmark reports whether any entry exists for stream.
func (s *State) HasBookmark(stream string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bookmarks[stream]
	return ok
}

// Streams returns the stream ids that have bookmarks, sorted.
func (s *State) Streams() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.bookmarks))
	for id := range s.bookmarks {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// CurrentStream returns the stream being synced when the state was written.
func (s *State) CurrentStream() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentStream
}

// SetCurrentStream marks stream as in progress. Empty clears the marker.
func (s *State) SetCurrentStream(stream string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStream = stream
}
