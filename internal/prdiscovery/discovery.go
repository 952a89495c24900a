package prdiscovery

import (
	"context"
	"time"

	"github.com/versioio/versio/internal/changes"
)

// RangeChecker is the slice of the VCS port PR discovery needs for
// squash-merge detection and span boundary filtering.
type RangeChecker interface {
	IsAncestor(ctx context.Context, ancestor, descendant changes.Oid) (bool, error)
}

// Discoverer runs spec.md §4.4's span work-queue algorithm.
type Discoverer struct {
	Api PrApi
	Vcs RangeChecker
}

// Discover builds a Changes value for the range (base, head]. A nil Api
// degrades gracefully to {commits: ∅, groups: {pr_zero}} per spec.md
// §4.4's failure-mode contract.
func (d *Discoverer) Discover(ctx context.Context, base, head changes.Oid) (*changes.Changes, error) {
	result := changes.NewChanges()
	discoverOrder := 0

	prZero := changes.NewFullPr(0, "", base, head, "", time.Time{}, discoverOrder)
	discoverOrder++
	result.Groups[0] = prZero

	if d.Api == nil {
		return result, nil
	}

	queue := []changes.Span{{Base: base, Head: head, Pr: prZero}}
	visited := map[changes.Oid]bool{}

	for len(queue) > 0 {
		span := queue[0]
		queue = queue[1:]

		nodes, err := d.Api.CommitsSince(ctx, span.Base, span.Head)
		if err != nil {
			return nil, err
		}

		for _, node := range nodes {
			// Step 4: drop commits already behind this span's own base,
			// preventing double-counting when base has moved.
			if node.Oid != span.Base {
				behind, err := d.Vcs.IsAncestor(ctx, node.Oid, span.Base)
				if err != nil {
					return nil, err
				}
				if behind {
					continue
				}
			}

			if visited[node.Oid] {
				continue
			}
			visited[node.Oid] = true

			excludedByAny, err := d.associate(ctx, &queue, result, &discoverOrder, node)
			if err != nil {
				return nil, err
			}
			if !excludedByAny {
				result.Commits[node.Oid] = true
			}
		}
	}

	return result, nil
}

// associate processes one commit's PR associations: creating FullPr
// groups on first sight, enqueuing their spans, and performing
// squash-merge exclusion. It reports whether the commit was excluded by
// at least one of its associated PRs.
func (d *Discoverer) associate(ctx context.Context, queue *[]changes.Span, result *changes.Changes, discoverOrder *int, node CommitNode) (bool, error) {
	excludedByAny := false

	for _, apr := range node.AssociatedPrs {
		if apr.State != "MERGED" && apr.State != "OPEN" {
			continue
		}

		pr, exists := result.Groups[apr.Number]
		if !exists {
			pr = changes.NewFullPr(apr.Number, apr.Title, apr.BaseRefOid, apr.HeadRefOid, apr.HeadRefName, apr.ClosedAt, *discoverOrder)
			pr.BestGuess = apr.BestGuess
			pr.URL = apr.URL
			*discoverOrder++
			result.Groups[apr.Number] = pr
			if !pr.BestGuess {
				*queue = append(*queue, changes.Span{Base: pr.BaseOid, Head: pr.HeadOid, Pr: pr})
			}
		}

		if pr.BestGuess {
			appendCommitOnce(pr, toCommitInfo(node))
			continue
		}

		inRange, err := d.Vcs.IsAncestor(ctx, node.Oid, pr.HeadOid)
		if err != nil {
			return false, err
		}
		baseIsAncestor := true
		if pr.BaseOid != "" && pr.BaseOid != node.Oid {
			baseIsAncestor, err = d.Vcs.IsAncestor(ctx, pr.BaseOid, node.Oid)
			if err != nil {
				return false, err
			}
		}

		if inRange && baseIsAncestor {
			appendCommitOnce(pr, toCommitInfo(node))
		} else {
			pr.Exclude(node.Oid)
			excludedByAny = true
		}
	}

	return excludedByAny, nil
}

func appendCommitOnce(pr *changes.FullPr, c changes.CommitInfo) {
	for _, existing := range pr.Commits {
		if existing.Oid == c.Oid {
			return
		}
	}
	pr.Commits = append(pr.Commits, c)
}

func toCommitInfo(node CommitNode) changes.CommitInfo {
	return changes.CommitInfo{
		Oid:       node.Oid,
		Summary:   node.Summary,
		Message:   node.Message,
		Files:     node.Files,
		Included:  true,
		URL:       node.URL,
		Timestamp: node.Timestamp,
	}
}
