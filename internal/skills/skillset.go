// Package skills loads the skill dictionary and the domain requirement
// table. Both are read once at startup and never modified afterwards.
package skills

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"skillmatch/internal/errors"
)

// SkillSet is an insertion-ordered set of lowercase skill tokens
type SkillSet struct {
	order []string
	index map[string]struct{}
}

// NewSkillSet builds a set from raw tokens, normalizing and dropping blanks and duplicates
func NewSkillSet(tokens ...string) *SkillSet {
	s := &SkillSet{index: make(map[string]struct{}, len(tokens))}
	for _, token := range tokens {
		s.add(token)
	}
	return s
}

func (s *SkillSet) add(token string) {
	token = Normalize(token)
	if token == "" {
		return
	}
	if _, ok := s.index[token]; ok {
		return
	}
	s.index[token] = struct{}{}
	s.order = append(s.order, token)
}

// Contains reports whether skill, after normalization, is in the set
func (s *SkillSet) Contains(skill string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[Normalize(skill)]
	return ok
}

// Len returns the number of distinct skills
func (s *SkillSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// All returns the skills in the order they were first seen
func (s *SkillSet) All() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Normalize trims and lowercases a skill token
func Normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// ParseSkillSet reads one skill per line
func ParseSkillSet(r io.Reader) (*SkillSet, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	return NewSkillSet(lines...), nil
}

// LoadSkillSet reads the skill dictionary at path
func LoadSkillSet(path string) (*SkillSet, error) {
	f, err := openResource(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	set, err := ParseSkillSet(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return set, nil
}

// readLines returns the lines of r, rejecting content that is not UTF-8
func readLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeResourceMalformed, "cannot read resource", err)
	}
	if !utf8.Valid(data) {
		return nil, errors.NewValidationError(errors.ErrCodeResourceMalformed, "resource is not valid UTF-8 text", nil)
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	return strings.Split(text, "\n"), nil
}

// openResource opens a dictionary file, telling an absent file apart from one
// that exists but cannot be used
func openResource(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeResourceMissing,
				fmt.Sprintf("resource not found: %s", path), err).WithContext("path", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeResourceMalformed,
			fmt.Sprintf("cannot access resource: %s", path), err).WithContext("path", path)
	}
	if info.IsDir() {
		return nil, errors.NewIOError(errors.ErrCodeResourceMalformed,
			fmt.Sprintf("resource is a directory: %s", path), nil).WithContext("path", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeResourceMalformed,
			fmt.Sprintf("cannot open resource: %s", path), err).WithContext("path", path)
	}
	return f, nil
}

func withPath(err error, path string) error {
	if appErr, ok := err.(*errors.AppError); ok {
		appErr.Message = fmt.Sprintf("%s: %s", appErr.Message, path)
		return appErr.WithContext("path", path)
	}
	return err
}
