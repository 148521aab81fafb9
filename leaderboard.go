/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	leaderboardSize  = 10
	maxNameLength    = 24
	placeholderName  = "Player"
	leaderboardDate  = "2006-01-02 15:04:05"
	leaderboardPerms = 0o644
)

// LeaderboardEntry is one persisted result. Date is stored pre-formatted.
type LeaderboardEntry struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Date  string  `json:"date"`
}

// LeaderboardStore keeps one ranked file per difficulty mode.
type LeaderboardStore struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

func newLeaderboardStore(fs afero.Fs, dir string) *LeaderboardStore {
	return &LeaderboardStore{
		fs:  fs,
		dir: dir,
		now: time.Now,
	}
}

func (s *LeaderboardStore) path(mode Mode) string {
	return filepath.Join(s.dir, "leaderboard-"+string(mode)+".json")
}

// rankEntries sorts by score descending. Equal scores keep their existing
// relative order, so an earlier submission always ranks above a later one.
func rankEntries(entries []LeaderboardEntry) {
	slices.SortStableFunc(entries, func(a, b LeaderboardEntry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
}

// decodeLeaderboard accepts only a JSON array of objects carrying a string
// name and a numeric score. Anything else is reported as not ok.
func decodeLeaderboard(data []byte) ([]LeaderboardEntry, bool) {
	if !gjson.ValidBytes(data) {
		return nil, false
	}

	res := gjson.ParseBytes(data)
	if !res.IsArray() {
		return nil, false
	}

	entries := make([]LeaderboardEntry, 0, leaderboardSize)
	ok := true
	res.ForEach(func(_, v gjson.Result) bool {
		name, score, date := v.Get("name"), v.Get("score"), v.Get("date")
		if !v.IsObject() || name.Type != gjson.String || score.Type != gjson.Number {
			ok = false
			return false
		}
		if date.Exists() && date.Type != gjson.String {
			ok = false
			return false
		}

		entries = append(entries, LeaderboardEntry{
			Name:  name.Str,
			Score: score.Float(),
			Date:  date.Str,
		})
		return true
	})
	if !ok {
		return nil, false
	}

	return entries, true
}

func encodeLeaderboard(entries []LeaderboardEntry) ([]byte, error) {
	out := []byte(`[]`)

	for _, e := range entries {
		row := []byte(`{}`)

		var err error
		if row, err = sjson.SetBytes(row, "name", e.Name); err != nil {
			return nil, err
		}
		if row, err = sjson.SetBytes(row, "score", e.Score); err != nil {
			return nil, err
		}
		if row, err = sjson.SetBytes(row, "date", e.Date); err != nil {
			return nil, err
		}
		if out, err = sjson.SetRawBytes(out, "-1", row); err != nil {
			return nil, err
		}
	}

	return pretty.Pretty(out), nil
}

// Load returns the ranked entries for mode. A missing, unreadable or
// malformed file yields an empty list.
func (s *LeaderboardStore) Load(mode Mode) []LeaderboardEntry {
	data, err := afero.ReadFile(s.fs, s.path(mode))
	if err != nil {
		return []LeaderboardEntry{}
	}

	entries, ok := decodeLeaderboard(data)
	if !ok {
		errorf("LEADERBOARD: Ignoring malformed %s", s.path(mode))
		return []LeaderboardEntry{}
	}

	rankEntries(entries)

	return entries
}

// qualifies reports whether score earns a place on the ranked list as it
// stands before the score is inserted.
func qualifies(ranked []LeaderboardEntry, score float64) bool {
	if len(ranked) < leaderboardSize {
		return true
	}

	return score > ranked[leaderboardSize-1].Score
}

// Submit inserts a result, keeps the top ten and persists them. A failed
// write is logged and the in-memory ranking is still returned.
func (s *LeaderboardStore) Submit(mode Mode, name string, score float64) (bool, []LeaderboardEntry) {
	entries := s.Load(mode)

	qualified := qualifies(entries, score)

	if strings.TrimSpace(name) == "" {
		name = placeholderName
	}

	entries = append(entries, LeaderboardEntry{
		Name:  name,
		Score: score,
		Date:  s.now().Format(leaderboardDate),
	})
	rankEntries(entries)
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}

	if err := s.save(mode, entries); err != nil {
		errorf("LEADERBOARD: Failed to save %s: %v", s.path(mode), err)
	}

	return qualified, entries
}

// save writes to a temporary file in the target directory and renames it over
// the previous file, so a partial write never replaces a good leaderboard.
func (s *LeaderboardStore) save(mode Mode, entries []LeaderboardEntry) error {
	data, err := encodeLeaderboard(entries)
	if err != nil {
		return fmt.Errorf("encoding leaderboard: %w", err)
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating leaderboard dir: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, ".leaderboard-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := s.fs.Chmod(tmpName, leaderboardPerms); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := s.fs.Rename(tmpName, s.path(mode)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", s.path(mode), err)
	}

	return nil
}
