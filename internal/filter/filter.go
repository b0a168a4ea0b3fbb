// Package filter derives the visible job list from the catalog, the search
// box, the selected tags and (optionally) the profile skills.
//
// Matching rules:
//
//	search : empty, or a case-insensitive substring of company, position
//	         or any skill
//	tags   : every tag must equal (ignoring case) the role, the level or
//	         one of the skills; tags are AND-combined
//
// A job is shown when it passes both. Apply is pure: it keeps no state and
// never reorders its input.
package filter

import (
	"strings"

	"jobmate/listings-service/internal/listing"
)

// Result is the filtered view plus the counters shown above the list.
type Result struct {
	Jobs       []listing.Job `json:"jobs"`
	MatchCount int           `json:"matchCount"`
	TotalCount int           `json:"totalCount"`
}

// Apply filters jobs by st. profileSkills join the tag set only when
// st.UseProfileSkills is set.
func Apply(jobs []listing.Job, st State, profileSkills []string) Result {
	term := strings.ToLower(strings.TrimSpace(st.SearchText))
	tags := st.Combined(profileSkills)

	out := make([]listing.Job, 0, len(jobs))
	for _, j := range jobs {
		if MatchesSearch(j, term) && matchesTags(j, tags) {
			out = append(out, j)
		}
	}
	return Result{Jobs: out, MatchCount: len(out), TotalCount: len(jobs)}
}

// MatchesSearch reports whether term (lower-cased, trimmed) is empty or
// occurs in the job's company, position or one of its skills.
func MatchesSearch(j listing.Job, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(j.Company), term) ||
		strings.Contains(strings.ToLower(j.Position), term) {
		return true
	}
	for _, s := range j.Skills {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// MatchesTags reports whether the job carries every tag. Tags compare
// with strings.EqualFold, the same rule State uses to deduplicate them.
func MatchesTags(j listing.Job, tags []string) bool {
	return matchesTags(j, tags)
}

func matchesTags(j listing.Job, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	have := j.Tags()
	for _, t := range tags {
		if !containsFold(have, strings.TrimSpace(t)) {
			return false
		}
	}
	return true
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), v) {
			return true
		}
	}
	return false
}
