// Ledgerline - Accounting Report Extraction Connector
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ledgerline

package state

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Replication methods.
const (
	Incremental = "INCREMENTAL"
	FullTable   = "FULL_TABLE"
)

// Stream is the part of a stream descriptor the state manager needs.
type Stream struct {
	ID             string
	ReplicationKey string // empty for full-table streams
}

// Method returns the replication method implied by the replication key.
func (s Stream) Method() string {
	if s.ReplicationKey == "" {
		return FullTable
	}
	return Incremental
}

// bookmarkLayouts are accepted replication key formats, most specific first.
var bookmarkLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseBookmarkTime parses a replication key value. Values without a zone
// are taken as UTC.
func ParseBookmarkTime(value string) (time.Time, error) {
	for _, layout := range bookmarkLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bookmark %q is not a timestamp", value)
}

// ResolveStartDate returns the stream's bookmark when it has a replication
// key and a stored value, and defaultStart otherwise.
func (s *State) ResolveStartDate(st Stream, defaultStart time.Time) (time.Time, error) {
	if st.ReplicationKey == "" {
		return defaultStart, nil
	}
	raw, ok := s.GetString(st.ID, st.ReplicationKey)
	if !ok {
		return defaultStart, nil
	}
	t, err := ParseBookmarkTime(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("stream %s: %w", st.ID, err)
	}
	return t, nil
}

// RecordProgress advances the replication key bookmark of stream to value.
// Values after syncStart are ignored, as are values not later than the
// stored bookmark. It reports whether the bookmark moved. The original
// string is stored so the upstream zone offset is preserved.
func (s *State) RecordProgress(stream, key, value string, syncStart time.Time) (bool, error) {
	if key == "" || value == "" {
		return false, nil
	}
	candidate, err := ParseBookmarkTime(value)
	if err != nil {
		return false, err
	}
	if candidate.After(syncStart) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if bm, ok := s.bookmarks[stream]; ok {
		if current, ok := bm[key].(string); ok && current != "" {
			if prev, err := ParseBookmarkTime(current); err == nil && !candidate.After(prev) {
				return false, nil
			}
		}
	}
	s.setLocked(stream, key, value)
	return true, nil
}

// Version returns the stored version of stream, if any.
func (s *State) Version(stream string) (int64, bool) {
	v, ok := s.Get(stream, KeyVersion)
	if !ok || v == nil {
		return 0, false
	}
	return toInt64(v)
}

// StreamVersion returns the version to stamp on records of st. Incremental
// streams reuse a stored version; full-table streams always get a new one.
func (s *State) StreamVersion(st Stream, now time.Time) int64 {
	if st.ReplicationKey != "" {
		if v, ok := s.Version(st.ID); ok {
			return v
		}
	}
	return now.UnixMilli()
}

// BeginStream applies the version protocol at stream start. It reports
// whether ACTIVATE_VERSION must be emitted before data: incremental streams
// always announce their version, full-table streams only when no version is
// stored.
func (s *State) BeginStream(st Stream, version int64) bool {
	if _, ok := s.Version(st.ID); ok && st.ReplicationKey == "" {
		return false
	}
	s.Set(st.ID, KeyVersion, version)
	return true
}

// FinishFullTable clears the version of a full-table stream after all of its
// records were emitted, so the next run starts a new snapshot.
func (s *State) FinishFullTable(stream string) {
	s.Set(stream, KeyVersion, nil)
}

// BuildState returns the subset of raw that applies to streams: job markers,
// versions and replication key values of incremental streams, and a null
// version for full-table streams that had none.
func BuildState(raw *State, streams []Stream) *State {
	out := New()
	if raw == nil {
		raw = New()
	}
	for _, st := range streams {
		if jobID, ok := raw.Get(st.ID, KeyJobID); ok && !isEmpty(jobID) {
			batches, _ := raw.Get(st.ID, KeyBatchIDs)
			highest, _ := raw.Get(st.ID, KeyJobHighestBookmarkSeen)
			out.Set(st.ID, KeyJobID, jobID)
			out.Set(st.ID, KeyBatchIDs, batches)
			out.Set(st.ID, KeyJobHighestBookmarkSeen, highest)
		}

		version, hasVersion := raw.Get(st.ID, KeyVersion)
		hasVersion = hasVersion && version != nil

		switch st.Method() {
		case Incremental:
			if hasVersion {
				out.Set(st.ID, KeyVersion, version)
			}
			if v, ok := raw.Get(st.ID, st.ReplicationKey); ok && v != nil {
				out.Set(st.ID, st.ReplicationKey, v)
			}
		case FullTable:
			if !hasVersion {
				out.Set(st.ID, KeyVersion, nil)
			}
		}
	}
	out.SetCurrentStream(raw.CurrentStream())
	return out
}

// ResolveJob clears an interrupted job's markers from stream. When a job was
// present, the replication key becomes the highest bookmark the job saw, or
// keeps its existing value when the job saw none. It reports whether a job
// was found.
func (s *State) ResolveJob(st Stream) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bm, ok := s.bookmarks[st.ID]
	if !ok || isEmpty(bm[KeyJobID]) {
		return false
	}
	highest := bm[KeyJobHighestBookmarkSeen]
	delete(bm, KeyJobID)
	delete(bm, KeyBatchIDs)
	delete(bm, KeyJobHighestBookmarkSeen)

	if st.ReplicationKey == "" {
		return true
	}
	existing := bm[st.ReplicationKey]
	if !isEmpty(highest) {
		bm[st.ReplicationKey] = highest
	} else {
		bm[st.ReplicationKey] = existing
	}
	return true
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
		if f, err := x.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if n, err := strconv.ParseInt(x, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}
