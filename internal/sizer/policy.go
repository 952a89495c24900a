package sizer

import (
	"path"

	"github.com/versioio/versio/internal/changes"
	"github.com/versioio/versio/internal/verr"
)

type ruleKey struct {
	Kind  string
	Scope string
}

// Policy is a project's SizePolicy: an overlay table over the Angular
// preset, keyed by (type, scope), most-specific wins, plus a set of
// glob patterns that force a commit to Fail.
type Policy struct {
	UseAngular bool
	Rules      map[ruleKey]Size
	Fail       []string
}

// NewPolicy returns an empty policy with Angular defaults enabled.
func NewPolicy() Policy {
	return Policy{UseAngular: true, Rules: map[ruleKey]Size{}}
}

// SetRule records an overlay rule for (kind, scope). An empty scope
// matches any commit of that kind not covered by a more specific rule.
func (p *Policy) SetRule(kind, scope string, size Size) {
	if p.Rules == nil {
		p.Rules = map[ruleKey]Size{}
	}
	p.Rules[ruleKey{Kind: kind, Scope: scope}] = size
}

// Of computes the Size of a single commit under this policy: fail
// patterns first, then the scope-specific overlay rule, then the
// type-only overlay rule, then the Angular preset, defaulting to None.
func (p Policy) Of(c changes.CommitInfo) (Size, error) {
	c = ParseConventional(c)

	for _, pattern := range p.Fail {
		matched, err := path.Match(pattern, c.Summary)
		if err != nil {
			return Empty, verr.Wrap(verr.ConfigInvalid, err, "invalid fail pattern %q", pattern)
		}
		if matched {
			return Fail, nil
		}
	}

	if c.Scope != "" {
		if size, ok := p.Rules[ruleKey{Kind: c.Kind, Scope: c.Scope}]; ok {
			return size, nil
		}
	}
	if size, ok := p.Rules[ruleKey{Kind: c.Kind}]; ok {
		return size, nil
	}
	if p.UseAngular {
		return AngularSize(c), nil
	}
	return None, nil
}

// Scopes returns the distinct non-empty scopes referenced by this
// policy's overlay rules, for CheckLabels-style label validation.
func (p Policy) Scopes() []string {
	seen := map[string]bool{}
	var scopes []string
	for key := range p.Rules {
		if key.Scope == "" || seen[key.Scope] {
			continue
		}
		seen[key.Scope] = true
		scopes = append(scopes, key.Scope)
	}
	return scopes
}

// OfPr computes the size of a PR as the max size over its included
// commits that are relevant to a project (callers pre-filter commits
// by project root/labels before calling this).
func (p Policy) OfPr(commits []changes.CommitInfo) (Size, error) {
	size := Empty
	for _, c := range commits {
		s, err := p.Of(c)
		if err != nil {
			return Empty, err
		}
		if s == Fail {
			return Fail, nil
		}
		size = Max(size, s)
	}
	return size, nil
}
