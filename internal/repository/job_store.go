package repository

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/fadilmartias/job-board/internal/model"
)

var (
	ErrJobNotFound       = errors.New("job not found")
	ErrWebIndexExhausted = errors.New("could not allocate a free web index")
)

const maxSaveAttempts = 10

// JobStore persists rendered postings keyed by (category, web index).
type JobStore interface {
	// Save allocates a fresh web index, stores the posting and fills in
	// WebIndex and CreatedAt. An existing posting is never overwritten.
	Save(ctx context.Context, posting *model.JobPosting) error
	Get(ctx context.Context, category, webIndex string) (*model.JobPosting, error)
	// List returns every posting of category in no particular order. An
	// unknown category yields an empty list.
	List(ctx context.Context, category string) ([]model.JobEntry, error)
	// Latest returns at most n postings, newest first. A negative n returns
	// all of them.
	Latest(ctx context.Context, category string, n int) ([]model.JobEntry, error)
}

// newWebIndex returns a random 8 digit identifier.
var newWebIndex = func() string {
	return strconv.Itoa(10_000_000 + rand.IntN(90_000_000))
}

func validWebIndex(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validCategory(s string) bool {
	return s != "" && s != "." && s != ".." && filepath.Base(s) == s
}

func sortNewestFirst(entries []model.JobEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

func newest(entries []model.JobEntry, n int) []model.JobEntry {
	sortNewestFirst(entries)
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
