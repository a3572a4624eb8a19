package skills

import (
	"io"
	"strings"
)

// DomainMap maps a job domain to its ordered required-skill list.
// Domains keep the position of their first appearance in the source.
type DomainMap struct {
	names    []string
	required map[string][]string
}

// NewDomainMap returns an empty map
func NewDomainMap() *DomainMap {
	return &DomainMap{required: make(map[string][]string)}
}

// Set stores the required skills for domain. A repeated domain replaces the
// earlier list but keeps its original position.
func (m *DomainMap) Set(domain string, required []string) {
	if _, ok := m.required[domain]; !ok {
		m.names = append(m.names, domain)
	}
	m.required[domain] = required
}

// Names returns the domains in source order
func (m *DomainMap) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Required returns a copy of the required-skill list for domain
func (m *DomainMap) Required(domain string) ([]string, bool) {
	if m == nil {
		return nil, false
	}
	list, ok := m.required[domain]
	if !ok {
		return nil, false
	}
	out := make([]string, len(list))
	copy(out, list)
	return out, true
}

// Len returns the number of domains
func (m *DomainMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// ParseDomainMap reads lines of the form "Domain: skill1, skill2".
// Lines without a colon are skipped. A line with nothing before the colon
// is stored under the empty domain name. Skill segments are kept
// one-for-one, duplicates included.
func ParseDomainMap(r io.Reader) (*DomainMap, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	m := NewDomainMap()
	for _, line := range lines {
		domain, list, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		domain = strings.TrimSpace(domain)

		segments := strings.Split(list, ",")
		required := make([]string, len(segments))
		for i, segment := range segments {
			required[i] = Normalize(segment)
		}
		m.Set(domain, required)
	}
	return m, nil
}

// LoadDomainMap reads the domain requirement file at path
func LoadDomainMap(path string) (*DomainMap, error) {
	f, err := openResource(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	m, err := ParseDomainMap(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return m, nil
}
