package mono

import (
	"context"
	"sort"

	"github.com/versioio/versio/internal/sizer"
)

// KeyedFile is one (conventional-commit kind, file path) pair touched
// by a non-guess PR — the `versio files` command's output, grounded on
// mono.rs's pr_keyed_files.
type KeyedFile struct {
	Kind string
	File string
}

// KeyedFiles lists every file touched by every discovered PR that
// isn't a best-guess association, tagged with the commit's
// conventional-commit kind. Each (kind, file) pair is listed once, even
// when several PRs (pr_zero included) cover the same commit.
func (m *Mono) KeyedFiles(ctx context.Context) ([]KeyedFile, error) {
	ch, err := m.Changes(ctx)
	if err != nil {
		return nil, err
	}

	numbers := make([]int, 0, len(ch.Groups))
	for n := range ch.Groups {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var out []KeyedFile
	seen := map[KeyedFile]bool{}
	for _, n := range numbers {
		pr := ch.Groups[n]
		if pr.BestGuess || pr.HeadOid == "" {
			continue
		}
		commits, err := m.Vcs.CommitsBetween(ctx, pr.BaseOid, pr.HeadOid)
		if err != nil {
			return nil, err
		}
		for _, c := range commits {
			if pr.IsExcluded(c.Oid) {
				continue
			}
			parsed := sizer.ParseConventional(c)
			kind := parsed.Kind
			for _, f := range c.Files {
				kf := KeyedFile{Kind: kind, File: f}
				if seen[kf] {
					continue
				}
				seen[kf] = true
				out = append(out, kf)
			}
		}
	}
	return out, nil
}
