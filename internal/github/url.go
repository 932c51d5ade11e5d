package github

import (
	"regexp"
	"strings"
)

var (
	// github.com/owner/repo anywhere in the string, ignoring any suffix
	hostedPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/?#]+)`)
	// bare owner/repo
	shortPattern = regexp.MustCompile(`^([^/\s]+)/([^/\s]+)$`)
)

// RepoRef identifies a repository on GitHub.
type RepoRef struct {
	Owner string
	Repo  string
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Repo
}

// ParseRepoURL accepts https://github.com/owner/repo (with optional .git,
// path, query or fragment) and owner/repo. The second return is false for
// anything else.
func ParseRepoURL(raw string) (RepoRef, bool) {
	raw = strings.TrimSpace(raw)
	for _, p := range []*regexp.Regexp{hostedPattern, shortPattern} {
		m := p.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		ref := RepoRef{Owner: m[1], Repo: strings.TrimSuffix(m[2], ".git")}
		if ref.Owner == "" || ref.Repo == "" {
			return RepoRef{}, false
		}
		return ref, true
	}
	return RepoRef{}, false
}
