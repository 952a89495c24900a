// Package prdiscovery implements spec.md §4.4's PR-discovery algorithm
// over a narrow PrApi port, plus a GitHub GraphQL v4 implementation.
package prdiscovery

import (
	"context"
	"time"

	"github.com/versioio/versio/internal/changes"
)

// AssociatedPr is one pull-request association a hosting service
// reports for a commit.
type AssociatedPr struct {
	Number      int
	State       string // "MERGED" or "OPEN"; others are ignored
	Title       string
	URL         string
	HeadRefName string
	BaseRefOid  changes.Oid
	HeadRefOid  changes.Oid
	ClosedAt    time.Time
	BestGuess   bool // true when the PR has no resolvable head (force-pushed/deleted branch)
}

// CommitNode is one commit as reported by the hosting service, carrying
// its PR associations and parent oids (spec.md §6's GraphQL shape).
type CommitNode struct {
	Oid            changes.Oid
	Summary        string
	Message        string
	Timestamp      time.Time
	Files          []string
	URL            string
	AssociatedPrs  []AssociatedPr
	Parents        []changes.Oid
}

// PrApi is the port PR discovery consumes from a hosting service.
type PrApi interface {
	// CommitsSince returns up to 100 commits reachable from head since
	// the commit time of base, each annotated with its PR associations.
	CommitsSince(ctx context.Context, base, head changes.Oid) ([]CommitNode, error)
}
