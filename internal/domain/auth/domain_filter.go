package auth

import (
	"errors"
	"strings"
)

// DomainFilter accepts sign-in emails whose domain is in a configured approved set.
// Matching is a case-insensitive suffix check against "@" + domain, so
// "students.college.edu" accepts "a@students.college.edu" but not "a@evil-students.college.edu".
type DomainFilter struct {
	suffixes []string
}

// NewDomainFilter builds a filter from the approved domains. Entries may carry a
// leading "@" and are normalized to lower case. At least one domain is required.
func NewDomainFilter(domains []string) (*DomainFilter, error) {
	f := &DomainFilter{}
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "@")
		if d == "" {
			continue
		}
		f.suffixes = append(f.suffixes, "@"+d)
	}
	if len(f.suffixes) == 0 {
		return nil, errors.New("at least one allowed email domain is required")
	}
	return f, nil
}

// Accepts reports whether email belongs to an approved domain.
func (f *DomainFilter) Accepts(email string) bool {
	e := NormalizeEmail(email)
	if e == "" || strings.Count(e, "@") != 1 {
		return false
	}
	for _, s := range f.suffixes {
		if strings.HasSuffix(e, s) && len(e) > len(s) {
			return true
		}
	}
	return false
}

// Check returns a *RejectedDomainError when email is not accepted.
func (f *DomainFilter) Check(email string) error {
	if f.Accepts(email) {
		return nil
	}
	return &RejectedDomainError{Email: strings.TrimSpace(email)}
}

// Domains returns the approved domains without the leading "@".
func (f *DomainFilter) Domains() []string {
	out := make([]string, len(f.suffixes))
	for i, s := range f.suffixes {
		out[i] = strings.TrimPrefix(s, "@")
	}
	return out
}
