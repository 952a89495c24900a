package prdiscovery

import (
	"context"
	"time"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/verr"
)

// GithubApi implements PrApi against GitHub's GraphQL v4 API, issuing
// the associatedPullRequests/parents query spec.md §6 describes. Each
// call fetches the first 100 commits only; later pages are not
// requested.
type GithubApi struct {
	Owner string
	Repo  string
	Ref   string // branch name the commit history is walked from

	client *githubv4.Client
}

// NewGithubApi builds a GithubApi authenticated with a personal access
// token.
func NewGithubApi(ctx context.Context, owner, repo, ref, token string) *GithubApi {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, src)
	return &GithubApi{Owner: owner, Repo: repo, Ref: ref, client: githubv4.NewClient(httpClient)}
}

type associatedPrNode struct {
	Number      githubv4.Int
	State       githubv4.PullRequestState
	Title       githubv4.String
	Url         githubv4.String
	HeadRefName githubv4.String
	BaseRefOid  githubv4.String
	HeadRefOid  githubv4.String
	ClosedAt    githubv4.DateTime
}

type commitHistoryQuery struct {
	Repository struct {
		Object struct {
			Commit struct {
				History struct {
					Nodes []struct {
						Oid           githubv4.String
						Message       githubv4.String
						CommittedDate githubv4.DateTime
						Url           githubv4.String
						Parents       struct {
							Nodes []struct {
								Oid githubv4.String
							}
						} `graphql:"parents(first: 10)"`
						AssociatedPullRequests struct {
							Nodes []associatedPrNode
						} `graphql:"associatedPullRequests(first: 10)"`
					}
					PageInfo struct {
						HasNextPage bool
						EndCursor   githubv4.String
					}
				} `graphql:"history(first: 100, since: $since)"`
			} `graphql:"... on Commit"`
		} `graphql:"object(expression: $headExpr)"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}

// CommitsSince implements PrApi.
func (g *GithubApi) CommitsSince(ctx context.Context, base, head changes.Oid) ([]CommitNode, error) {
	var sinceTime time.Time
	if base != "" {
		baseTime, err := g.commitTime(ctx, base)
		if err != nil {
			return nil, err
		}
		sinceTime = baseTime
	}

	var q commitHistoryQuery
	vars := map[string]interface{}{
		"owner":    githubv4.String(g.Owner),
		"repo":     githubv4.String(g.Repo),
		"headExpr": githubv4.String(string(head)),
		"since":    githubv4.GitTimestamp{Time: sinceTime},
	}
	if err := g.client.Query(ctx, &q, vars); err != nil {
		return nil, verr.Wrap(verr.PrApiFailure, err, "querying commit history for %s..%s", base, head)
	}

	var out []CommitNode
	for _, n := range q.Repository.Object.Commit.History.Nodes {
		node := CommitNode{
			Oid:       changes.Oid(n.Oid),
			Message:   string(n.Message),
			Timestamp: n.CommittedDate.Time,
			URL:       string(n.Url),
		}
		if idx := indexOfNewline(string(n.Message)); idx >= 0 {
			node.Summary = string(n.Message)[:idx]
		} else {
			node.Summary = string(n.Message)
		}
		for _, p := range n.Parents.Nodes {
			node.Parents = append(node.Parents, changes.Oid(p.Oid))
		}
		for _, apr := range n.AssociatedPullRequests.Nodes {
			node.AssociatedPrs = append(node.AssociatedPrs, AssociatedPr{
				Number:      int(apr.Number),
				State:       string(apr.State),
				Title:       string(apr.Title),
				URL:         string(apr.Url),
				HeadRefName: string(apr.HeadRefName),
				BaseRefOid:  changes.Oid(apr.BaseRefOid),
				HeadRefOid:  changes.Oid(apr.HeadRefOid),
				ClosedAt:    apr.ClosedAt.Time,
				BestGuess:   apr.HeadRefOid == "",
			})
		}
		out = append(out, node)
	}
	return out, nil
}

func indexOfNewline(s string) int {
	for i, r := range s {
		if r == '\n' {
			return i
		}
	}
	return -1
}

type commitTimeQuery struct {
	Repository struct {
		Object struct {
			Commit struct {
				CommittedDate githubv4.DateTime
			} `graphql:"... on Commit"`
		} `graphql:"object(oid: $oid)"`
	} `graphql:"repository(owner: $owner, name: $repo)"`
}

func (g *GithubApi) commitTime(ctx context.Context, oid changes.Oid) (time.Time, error) {
	var q commitTimeQuery
	vars := map[string]interface{}{
		"owner": githubv4.String(g.Owner),
		"repo":  githubv4.String(g.Repo),
		"oid":   githubv4.GitObjectID(oid),
	}
	if err := g.client.Query(ctx, &q, vars); err != nil {
		return time.Time{}, verr.Wrap(verr.PrApiFailure, err, "resolving commit time for %s", oid)
	}
	return q.Repository.Object.Commit.CommittedDate.Time, nil
}
