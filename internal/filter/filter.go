package filter

import (
	"strings"

	"github.com/ALT-F4-LLC/tracker/internal/model"
)

// MatchesSearch reports whether term occurs in the issue's title or
// description, ignoring case. An empty term matches everything.
func MatchesSearch(issue model.Issue, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	return strings.Contains(strings.ToLower(issue.Title), needle) ||
		strings.Contains(strings.ToLower(issue.Description), needle)
}

// Search returns the issues matching term, preserving order.
func Search(list []model.Issue, term string) []model.Issue {
	if term == "" {
		return list
	}
	out := make([]model.Issue, 0, len(list))
	for _, i := range list {
		if MatchesSearch(i, term) {
			out = append(out, i)
		}
	}
	return out
}

// ToStatusSet converts a slice of statuses to a set for O(1) membership
// checks. A nil result means no restriction.
func ToStatusSet(ss []model.Status) map[model.Status]struct{} {
	if len(ss) == 0 {
		return nil
	}
	set := make(map[model.Status]struct{}, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

// HasStatus reports whether the issue's status is in the set. A nil set
// matches every issue.
func HasStatus(issue model.Issue, set map[model.Status]struct{}) bool {
	if set == nil {
		return true
	}
	_, ok := set[issue.Status]
	return ok
}
