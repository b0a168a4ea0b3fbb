// Package listing owns the job catalog and the favorite set.
package listing

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// placeholderLogoBase renders company initials when a posting has no logo.
const placeholderLogoBase = "https://api.dicebear.com/8.x/initials/svg?seed="

// Job is one posting in the catalog. JSON and YAML keys match the baseline
// catalog file so it can be decoded without a mapping step.
type Job struct {
	ID          int      `json:"id" yaml:"id"`
	Company     string   `json:"company" yaml:"company"`
	Logo        string   `json:"logo,omitempty" yaml:"logo,omitempty"`
	IsNew       bool     `json:"new" yaml:"new"`
	IsFeatured  bool     `json:"featured" yaml:"featured"`
	Position    string   `json:"position" yaml:"position"`
	Role        string   `json:"role" yaml:"role"`
	Level       string   `json:"level" yaml:"level"`
	PostedAt    string   `json:"postedAt" yaml:"postedAt"`
	Contract    string   `json:"contract" yaml:"contract"`
	Location    string   `json:"location" yaml:"location"`
	Skills      []string `json:"skills" yaml:"skills"`
	Description string   `json:"description" yaml:"description"`
}

// LogoURL returns Logo, or a deterministic placeholder derived from Company.
func (j Job) LogoURL() string {
	if strings.TrimSpace(j.Logo) != "" {
		return j.Logo
	}
	return PlaceholderLogo(j.Company)
}

// Tags returns role, level and skills in display order.
func (j Job) Tags() []string {
	tags := make([]string, 0, len(j.Skills)+2)
	if j.Role != "" {
		tags = append(tags, j.Role)
	}
	if j.Level != "" {
		tags = append(tags, j.Level)
	}
	return append(tags, j.Skills...)
}

// clone deep-copies the skills slice so snapshots never alias store state.
func (j Job) clone() Job {
	if j.Skills != nil {
		j.Skills = append([]string(nil), j.Skills...)
	}
	return j
}

// PlaceholderLogo returns the initials avatar URL for company.
func PlaceholderLogo(company string) string {
	return placeholderLogoBase + url.QueryEscape(strings.TrimSpace(company))
}

// JobFields is the editable part of a Job: everything but the ID.
type JobFields struct {
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Contract    string   `json:"contract"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Logo        string   `json:"logo"`
	Role        string   `json:"role"`
	Level       string   `json:"level"`
	Skills      []string `json:"skills"`
	PostedAt    string   `json:"postedAt"`
	IsNew       bool     `json:"new"`
	IsFeatured  bool     `json:"featured"`
}

// UnmarshalJSON accepts skills either as a JSON array or as the comma
// separated string the edit form produces ("Go, SQL, Docker").
func (f *JobFields) UnmarshalJSON(data []byte) error {
	type plain JobFields
	aux := struct {
		*plain
		Skills json.RawMessage `json:"skills"`
	}{plain: (*plain)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := strings.TrimSpace(string(aux.Skills))
	switch {
	case raw == "" || raw == "null":
		f.Skills = nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(aux.Skills, &s); err != nil {
			return err
		}
		f.Skills = SplitSkills(s)
	default:
		var skills []string
		if err := json.Unmarshal(aux.Skills, &skills); err != nil {
			return fmt.Errorf("skills must be an array or a comma separated string: %w", err)
		}
		f.Skills = skills
	}
	return nil
}

// toJob trims every text field and drops blank skills.
func (f JobFields) toJob(id int) Job {
	return Job{
		ID:          id,
		Company:     strings.TrimSpace(f.Company),
		Logo:        strings.TrimSpace(f.Logo),
		IsNew:       f.IsNew,
		IsFeatured:  f.IsFeatured,
		Position:    strings.TrimSpace(f.Position),
		Role:        strings.TrimSpace(f.Role),
		Level:       strings.TrimSpace(f.Level),
		PostedAt:    strings.TrimSpace(f.PostedAt),
		Contract:    strings.TrimSpace(f.Contract),
		Location:    strings.TrimSpace(f.Location),
		Skills:      cleanSkills(f.Skills),
		Description: strings.TrimSpace(f.Description),
	}
}

// SplitSkills parses the comma separated form the edit form uses
// ("Go, SQL, Docker").
func SplitSkills(s string) []string {
	return cleanSkills(strings.Split(s, ","))
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
