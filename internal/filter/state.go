package filter

import "strings"

// State is the transient filter input. It is never persisted.
type State struct {
	SearchText       string   `json:"searchText"`
	Tags             []string `json:"tags"`
	UseProfileSkills bool     `json:"useProfileSkills"`
}

// AddTag selects tag. Blank tags and tags already selected (ignoring case)
// are ignored; the return value reports whether the selection changed.
func (s *State) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || indexFold(s.Tags, tag) >= 0 {
		return false
	}
	s.Tags = append(s.Tags, tag)
	return true
}

// RemoveTag deselects tag, ignoring case.
func (s *State) RemoveTag(tag string) bool {
	idx := indexFold(s.Tags, strings.TrimSpace(tag))
	if idx < 0 {
		return false
	}
	s.Tags = append(s.Tags[:idx:idx], s.Tags[idx+1:]...)
	return true
}

// Clear resets the search text and the selected tags. Whether profile
// skills are applied is a preference and survives.
func (s *State) Clear() {
	s.SearchText = ""
	s.Tags = nil
}

// Combined returns the selected tags plus, when enabled, profileSkills,
// deduplicated ignoring case. Blank entries are dropped.
func (s State) Combined(profileSkills []string) []string {
	out := make([]string, 0, len(s.Tags)+len(profileSkills))
	add := func(tags []string) {
		for _, t := range tags {
			t = strings.TrimSpace(t)
			if t != "" && indexFold(out, t) < 0 {
				out = append(out, t)
			}
		}
	}
	add(s.Tags)
	if s.UseProfileSkills {
		add(profileSkills)
	}
	return out
}

// Clone returns a copy that shares no memory with s.
func (s State) Clone() State {
	s.Tags = append([]string{}, s.Tags...)
	return s
}

func indexFold(list []string, v string) int {
	for i, s := range list {
		if strings.EqualFold(s, v) {
			return i
		}
	}
	return -1
}
