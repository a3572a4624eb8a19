package skills

import (
	"skillmatch/internal/errors"
)

// Resource names used in warnings
const (
	ResourceSkills  = "skills"
	ResourceDomains = "domains"
)

// Paths locates the two dictionary files
type Paths struct {
	Skills  string
	Domains string
}

// Warning describes a dictionary that could not be loaded
type Warning struct {
	Resource string `json:"resource"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Catalog bundles the loaded dictionaries with any load warnings
type Catalog struct {
	Skills   *SkillSet
	Domains  *DomainMap
	Warnings []Warning
}

// LoadCatalog loads both dictionaries. A failed load leaves that dictionary
// empty and records a warning; it never returns an error.
func LoadCatalog(paths Paths, logger *errors.Logger) *Catalog {
	c := &Catalog{}

	set, err := LoadSkillSet(paths.Skills)
	if err != nil {
		c.warn(ResourceSkills, "Skills file is missing", err, logger)
		set = NewSkillSet()
	}
	c.Skills = set

	domains, err := LoadDomainMap(paths.Domains)
	if err != nil {
		c.warn(ResourceDomains, "Job Description file is missing", err, logger)
		domains = NewDomainMap()
	}
	c.Domains = domains

	if logger != nil {
		logger.Info("Dictionaries loaded",
			"skills", c.Skills.Len(),
			"domains", c.Domains.Len(),
			"warnings", len(c.Warnings))
	}
	return c
}

func (c *Catalog) warn(resource, missingMessage string, err error, logger *errors.Logger) {
	code := errors.CodeOf(err)
	message := missingMessage
	if code != errors.ErrCodeResourceMissing {
		code = errors.ErrCodeResourceMalformed
		switch resource {
		case ResourceSkills:
			message = "Skills file could not be read"
		default:
			message = "Job Description file could not be read"
		}
	}

	c.Warnings = append(c.Warnings, Warning{Resource: resource, Code: code, Message: message})
	if logger != nil {
		logger.LogError(err, "Dictionary unavailable, continuing with empty data", "resource", resource)
	}
}

// Required returns the required skills for domain, or an UNKNOWN_DOMAIN error
func (c *Catalog) Required(domain string) ([]string, error) {
	required, ok := c.Domains.Required(domain)
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeUnknownDomain, "unknown job domain: "+domain, nil).
			WithContext("domain", domain)
	}
	return required, nil
}
