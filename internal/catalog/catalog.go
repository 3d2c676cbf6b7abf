// Package catalog holds the static Oracle HCM endpoint allow-list.
//
// The catalog is the single source of truth for what the agent is permitted
// to call: every planned request is matched against it and narrowed to the
// declared method, path template, and query parameter allow-list.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultVersion is the HCM REST API version forced into every planned path.
const DefaultVersion = "11.13.18.05"

// Entry is one permitted (method, path template, query params) tuple.
//
// Path templates contain a {version} placeholder and may carry trailing
// placeholders such as {GUID}. QueryParams is an allow-list; empty means the
// endpoint accepts no query parameters at all.
type Entry struct {
	Method         string   `json:"method" yaml:"method"`
	Path           string   `json:"path" yaml:"path"`
	Description    string   `json:"description" yaml:"description"`
	QueryParams    []string `json:"queryParams" yaml:"queryParams"`
	ResponseFields []string `json:"responseFields,omitempty" yaml:"responseFields,omitempty"`
}

// Operation pairs an entry with its group and operation name so matches can
// be reported meaningfully.
type Operation struct {
	Group string
	Name  string
	Entry Entry
}

// Catalog is an immutable set of permitted endpoints with a configured
// version. Construct via Default or Load; never mutate after construction.
type Catalog struct {
	version string
	groups  map[string]map[string]Entry
	// ordered holds operations sorted longest-literal-prefix first so
	// matching is deterministic regardless of map iteration order.
	ordered []Operation
}

// versionSegment matches the version token between the fixed "resources/"
// segment and the next slash, e.g. "/resources/latest/" or
// "/resources/11.13.18.05/".
var versionSegment = regexp.MustCompile(`/resources/[^/]+/`)

// New builds a catalog from grouped entries. The version defaults to
// DefaultVersion when blank.
func New(version string, groups map[string]map[string]Entry) *Catalog {
	if version == "" {
		version = DefaultVersion
	}

	c := &Catalog{version: version, groups: groups}

	for group, entries := range groups {
		names := make([]string, 0, len(entries))
		for name := range entries {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c.ordered = append(c.ordered, Operation{Group: group, Name: name, Entry: entries[name]})
		}
	}

	// Longest literal prefix wins; remaining ties fall back to group then
	// operation name so a collection resource never shadows its singleton
	// sub-resource by accident.
	sort.SliceStable(c.ordered, func(i, j int) bool {
		pi := c.literalPrefix(c.ordered[i].Entry.Path)
		pj := c.literalPrefix(c.ordered[j].Entry.Path)
		if len(pi) != len(pj) {
			return len(pi) > len(pj)
		}
		if c.ordered[i].Group != c.ordered[j].Group {
			return c.ordered[i].Group < c.ordered[j].Group
		}
		return c.ordered[i].Name < c.ordered[j].Name
	})

	return c
}

// Default returns the built-in catalog: the user account endpoints the
// product ships with.
func Default() *Catalog {
	return New(DefaultVersion, map[string]map[string]Entry{
		"Users": {
			"listUserAccounts": {
				Method:      "GET",
				Path:        "/hcmRestApi/resources/{version}/userAccounts",
				Description: "List user accounts.",
				QueryParams: []string{},
				ResponseFields: []string{
					"UserId", "Username", "SuspendedFlag", "PersonId",
					"PersonNumber", "GUID", "CreationDate", "LastUpdateDate",
				},
			},
			"getUserAccountByGUID": {
				Method:      "GET",
				Path:        "/hcmRestApi/resources/{version}/userAccounts/{GUID}",
				Description: "Get a user account by GUID.",
				QueryParams: []string{},
				ResponseFields: []string{
					"UserId", "Username", "SuspendedFlag", "PersonId",
					"PersonNumber", "GUID", "CreationDate", "LastUpdateDate",
				},
			},
		},
	})
}

// Load reads a catalog override from a YAML file keyed group -> operation ->
// entry, with an optional top-level "version".
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var doc struct {
		Version   string                      `yaml:"version"`
		Endpoints map[string]map[string]Entry `yaml:"endpoints"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	if len(doc.Endpoints) == 0 {
		return nil, fmt.Errorf("catalog file %s declares no endpoints", path)
	}

	return New(doc.Version, doc.Endpoints), nil
}

// Version returns the configured API version.
func (c *Catalog) Version() string {
	return c.version
}

// Operations returns the catalog's operations in deterministic match order.
func (c *Catalog) Operations() []Operation {
	out := make([]Operation, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// MarshalJSON serializes the grouped entries. The serialized form is embedded
// verbatim into the planner prompt.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.groups)
}

// ForceVersion rewrites any version segment in path to the configured
// version. A path without a "/resources/<token>/" segment is returned
// untouched.
func (c *Catalog) ForceVersion(path string) string {
	return versionSegment.ReplaceAllString(path, "/resources/"+c.version+"/")
}

// RenderPath fills {version} and any extra placeholders in a template.
func (c *Catalog) RenderPath(template string, pathParams map[string]string) string {
	path := strings.ReplaceAll(template, "{version}", c.version)
	for key, value := range pathParams {
		path = strings.ReplaceAll(path, "{"+key+"}", value)
	}
	return path
}

// literalPrefix returns the template's path up to its first placeholder,
// with {version} already substituted.
func (c *Catalog) literalPrefix(template string) string {
	resolved := strings.ReplaceAll(template, "{version}", c.version)
	if idx := strings.IndexByte(resolved, '{'); idx >= 0 {
		return resolved[:idx]
	}
	return resolved
}

// Match returns the operation whose template matches path, comparing literal
// segments only (the version segment is normalized first; trailing
// placeholders are ignored). Longest literal prefix wins, ties break by
// declaration order, so a singleton sub-resource template is preferred over
// its parent collection.
func (c *Catalog) Match(path string) (Operation, bool) {
	normalized := c.ForceVersion(path)
	for _, op := range c.ordered {
		if strings.HasPrefix(normalized, c.literalPrefix(op.Entry.Path)) {
			return op, true
		}
	}
	return Operation{}, false
}
