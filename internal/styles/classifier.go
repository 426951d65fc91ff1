package styles

import (
	"sort"
	"strings"
	"unicode"
)

// Class names the export tool generates for local formatting. They carry
// no semantic meaning and are never classified.
var overridePrefixes = []string{"paraoverride", "charoverride", "_idgen", "idgen"}

// StyleAnalysis is the role assignment for one edition's class names.
type StyleAnalysis struct {
	Roles        map[Role][]string
	Unclassified []string

	byClass map[string]Role
}

// RoleOf returns the role of a class name.
func (a StyleAnalysis) RoleOf(class string) (Role, bool) {
	r, ok := a.byClass[class]
	return r, ok
}

// Classes returns the class names assigned to role.
func (a StyleAnalysis) Classes(role Role) []string {
	return a.Roles[role]
}

type Classifier struct {
	table Table
}

func NewClassifier(table Table) *Classifier {
	return &Classifier{table: table}
}

// Classify assigns each distinct class name to the first role whose
// keywords it contains.
func (c *Classifier) Classify(classNames []string) StyleAnalysis {
	analysis := StyleAnalysis{
		Roles:   make(map[Role][]string),
		byClass: make(map[string]Role),
	}

	names := uniqueSorted(classNames)
	for _, name := range names {
		if isOverrideClass(name) {
			continue
		}
		normalized := NormalizeClassName(name)
		role, ok := c.match(normalized)
		if !ok {
			analysis.Unclassified = append(analysis.Unclassified, name)
			continue
		}
		analysis.Roles[role] = append(analysis.Roles[role], name)
		analysis.byClass[name] = role
	}

	return analysis
}

func (c *Classifier) match(normalized string) (Role, bool) {
	compact := strings.ReplaceAll(normalized, " ", "")
	for _, rule := range c.table.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) || strings.Contains(compact, strings.ReplaceAll(kw, " ", "")) {
				return rule.Role, true
			}
		}
	}
	return "", false
}

// NormalizeClassName lowercases a class name, turns "_" and "-" into
// spaces and drops the numeric suffix the export adds to style variants.
//
//	"Broodtekst_2"     -> "broodtekst"
//	"Auteur-bio--1"    -> "auteur bio"
//	"Tussenkop-Vet"    -> "tussenkop vet"
func NormalizeClassName(name string) string {
	s := strings.ToLower(name)
	s = strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, s)
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsDigit(r) || unicode.IsSpace(r)
	})
	return strings.Join(strings.Fields(s), " ")
}

func isOverrideClass(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range overridePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func uniqueSorted(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
