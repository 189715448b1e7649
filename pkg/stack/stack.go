// Package stack discovers the analytics stack from declarative
// services/<id>/service.yaml descriptors at the stack root.
package stack

import (
	"sort"
	"strings"
	"time"
)

// Category display names, keyed by descriptor category.
var categoryNames = map[string]string{
	"database":      "Databases",
	"cache":         "Cache",
	"search":        "Search & Analytics",
	"notebook":      "Notebooks",
	"visualization": "Visualization",
	"orchestration": "Orchestration",
	"other":         "Other",
}

// categoryOrder fixes the display order; "other" always renders last.
var categoryOrder = []string{"database", "cache", "search", "notebook", "visualization", "orchestration"}

// DefaultStartupTime applies when a descriptor omits startup_time.
const DefaultStartupTime = 30 * time.Second

// Healthcheck describes how to probe a running service.
type Healthcheck struct {
	Type     string   `validate:"required,oneof=http exec redis"`
	Endpoint string   `validate:"omitempty,url"`
	Command  []string
	Timeout  time.Duration
}

// Service is a fully resolved stack member: one services/<id>/ directory
// with its descriptor parsed, env placeholders expanded and defaults applied.
type Service struct {
	ID          string `validate:"required"`
	Name        string `validate:"required"`
	Category    string
	Port        int `validate:"omitempty,min=1,max=65535"`
	URL         string
	Credentials string
	DependsOn   []string
	StartupTime time.Duration
	Description string
	Healthcheck *Healthcheck

	// Dir is the absolute path of the service directory.
	Dir string

	// Warnings collects non-fatal descriptor problems (unknown category,
	// dangling depends_on, unparseable port). Surfaced by list/start.
	Warnings []string
}

// CategoryName returns the display name for the service's category.
func (s *Service) CategoryName() string {
	if name, ok := categoryNames[s.Category]; ok {
		return name
	}
	return titleCase(s.Category)
}

// DisplayCategory returns the bucket the service is grouped under. Unknown
// categories collapse into "other" rather than fragmenting the listing.
func (s *Service) DisplayCategory() string {
	for _, cat := range categoryOrder {
		if s.Category == cat {
			return cat
		}
	}
	return "other"
}

// Stack is the set of discovered services.
type Stack struct {
	Root     string
	Services map[string]*Service
}

// IDs returns all service ids, sorted.
func (s *Stack) IDs() []string {
	ids := make([]string, 0, len(s.Services))
	for id := range s.Services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Lookup returns the service with the given id.
func (s *Stack) Lookup(id string) (*Service, bool) {
	svc, ok := s.Services[id]
	return svc, ok
}

// Unknown returns the subset of ids that do not name a discovered service.
func (s *Stack) Unknown(ids []string) []string {
	var missing []string
	for _, id := range ids {
		if _, ok := s.Services[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// CategoryGroup is one display bucket of services.
type CategoryGroup struct {
	ID       string
	Name     string
	Services []*Service
}

// ByCategory groups services into display order, name-sorted within each
// group. Empty groups are omitted.
func (s *Stack) ByCategory() []CategoryGroup {
	buckets := make(map[string][]*Service)
	for _, svc := range s.Services {
		cat := svc.DisplayCategory()
		buckets[cat] = append(buckets[cat], svc)
	}

	order := append(append([]string{}, categoryOrder...), "other")

	var groups []CategoryGroup
	for _, cat := range order {
		members := buckets[cat]
		if len(members) == 0 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
		groups = append(groups, CategoryGroup{ID: cat, Name: categoryNames[cat], Services: members})
	}
	return groups
}

// Warnings returns every descriptor warning across the given ids (all
// services when ids is empty), prefixed with the owning service id.
func (s *Stack) Warnings(ids []string) []string {
	if len(ids) == 0 {
		ids = s.IDs()
	}

	var out []string
	for _, id := range ids {
		svc, ok := s.Services[id]
		if !ok {
			continue
		}
		for _, w := range svc.Warnings {
			out = append(out, id+": "+w)
		}
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
