//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Club is a student organization that hosts events.
type Club struct {
	ID          string          `json:"id"                    db:"id"`
	Name        string          `json:"name"                  db:"name"`
	Description *string         `json:"description,omitempty" db:"description"`
	LogoURL     *string         `json:"logoUrl,omitempty"     db:"logo_url"`
	Contact     *string         `json:"contact,omitempty"     db:"contact"`
	SocialLinks json.RawMessage `json:"socialLinks,omitempty" db:"social_links"`
	CreatedAt   time.Time       `json:"createdAt"             db:"created_at"`
}

// CreateClubRequest represents parameters to create a Club.
type CreateClubRequest struct {
	Name        string            `json:"name"`
	Description *string           `json:"description,omitempty"`
	LogoURL     *string           `json:"logoUrl,omitempty"`
	Contact     *string           `json:"contact,omitempty"`
	SocialLinks map[string]string `json:"socialLinks,omitempty"`
}

// Validate validates CreateClubRequest.
func (r *CreateClubRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = trimOptional(r.Description)
	r.LogoURL = trimOptional(r.LogoURL)
	r.Contact = trimOptional(r.Contact)
	if r.Name == "" {
		return errors.New("name is required")
	}
	if len(r.Name) > maxNameLen*2 {
		return errors.New("name cannot exceed 200 characters")
	}
	return nil
}
