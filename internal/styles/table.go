// Package styles maps the paragraph and character style class names of a
// layout export to semantic roles. The mapping is a keyword table evaluated
// in priority order and may be replaced by a YAML file.
package styles

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Role string

const (
	RoleTitle        Role = "title"
	RoleChapeau      Role = "chapeau"
	RoleBody         Role = "body"
	RoleAuthor       Role = "author"
	RoleCategory     Role = "category"
	RoleSubheading   Role = "subheading"
	RoleStreamer     Role = "streamer"
	RoleSidebar      Role = "sidebar"
	RoleCaption      Role = "caption"
	RoleCoverTitle   Role = "cover-title"
	RoleCoverChapeau Role = "cover-chapeau"
	RoleIntroVerse   Role = "intro-verse"
	RoleAuthorBio    Role = "author-bio"
)

// Roles lists every known role.
var Roles = []Role{
	RoleTitle, RoleChapeau, RoleBody, RoleAuthor, RoleCategory,
	RoleSubheading, RoleStreamer, RoleSidebar, RoleCaption,
	RoleCoverTitle, RoleCoverChapeau, RoleIntroVerse, RoleAuthorBio,
}

var ErrUnknownRole = errors.New("unknown style role")

// Rule assigns a role to every class name containing one of its keywords.
type Rule struct {
	Role     Role     `yaml:"role"`
	Keywords []string `yaml:"keywords"`
}

// Table is an ordered rule list. Earlier rules win.
type Table struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultTable returns the vocabulary of the Dutch magazine templates.
//
// The more specific roles come first: "Cover titel" must not end up as a
// title and "Auteur bio" must not end up as an author line.
func DefaultTable() Table {
	return Table{Rules: []Rule{
		{Role: RoleCoverTitle, Keywords: []string{"cover titel", "cover title", "omslag titel", "covertitel"}},
		{Role: RoleCoverChapeau, Keywords: []string{"cover chapeau", "omslag chapeau", "coverchapeau", "cover intro"}},
		{Role: RoleAuthorBio, Keywords: []string{"auteur bio", "auteursbio", "author bio", "bio auteur", "auteurinfo", "over de auteur"}},
		{Role: RoleIntroVerse, Keywords: []string{"introtekst vers", "intro vers", "bijbeltekst", "intro verse", "tekstvers"}},
		{Role: RoleCaption, Keywords: []string{"onderschrift", "bijschrift", "caption", "fotobijschrift"}},
		{Role: RoleSidebar, Keywords: []string{"kader", "sidebar", "box"}},
		{Role: RoleStreamer, Keywords: []string{"streamer", "quote", "citaat", "pull quote"}},
		{Role: RoleSubheading, Keywords: []string{"tussenkop", "subkop", "subheading", "tussentitel", "subtitle"}},
		{Role: RoleChapeau, Keywords: []string{"chapeau", "intro", "lead", "standfirst"}},
		{Role: RoleAuthor, Keywords: []string{"auteur", "author", "door", "byline"}},
		{Role: RoleCategory, Keywords: []string{"rubriek", "category", "categorie", "rubriekskop"}},
		{Role: RoleTitle, Keywords: []string{"titel", "title", "kop", "headline"}},
		{Role: RoleBody, Keywords: []string{"broodtekst", "platte tekst", "body", "tekst", "plattetekst", "basic paragraph", "standaard"}},
	}}
}

// LoadTable reads a rule table from a YAML file:
//
//	rules:
//	  - role: title
//	    keywords: [titel, kop]
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read style table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML rule table.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("failed to parse style table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Validate rejects unknown roles and lowercases keywords.
func (t *Table) Validate() error {
	if len(t.Rules) == 0 {
		return errors.New("style table has no rules")
	}
	for i, r := range t.Rules {
		if !isKnownRole(r.Role) {
			return fmt.Errorf("%w: %q", ErrUnknownRole, r.Role)
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		t.Rules[i].Keywords = kws
	}
	return nil
}

func isKnownRole(r Role) bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}
