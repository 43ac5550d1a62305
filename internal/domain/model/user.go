//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
)

const (
	maxNameLen       = 100
	maxRollNumberLen = 32
	phoneDigits      = 10
)

// User is a directory record keyed by email.
type User struct {
	ID                string          `json:"id"                    db:"id"`
	Email             string          `json:"email"                 db:"email"`
	Name              *string         `json:"name,omitempty"        db:"name"`
	Image             *string         `json:"image,omitempty"       db:"image"`
	FirstName         *string         `json:"firstName,omitempty"   db:"first_name"`
	LastName          *string         `json:"lastName,omitempty"    db:"last_name"`
	PhoneNumber       *string         `json:"phoneNumber,omitempty" db:"phone_number"`
	RollNumber        *string         `json:"rollNumber,omitempty"  db:"roll_number"`
	Role              domainauth.Role `json:"role"                  db:"role"`
	IsProfileComplete bool            `json:"isProfileComplete"     db:"is_profile_complete"`
	ClubID            *string         `json:"clubId,omitempty"      db:"club_id"`
	CreatedAt         time.Time       `json:"createdAt"             db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt"             db:"updated_at"`
}

// DisplayName returns the best available human-readable name.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// DirectoryRecord projects the user onto the fields a session token mirrors.
func (u *User) DirectoryRecord() *domainauth.DirectoryRecord {
	name := ""
	if u.Name != nil {
		name = *u.Name
	}
	return &domainauth.DirectoryRecord{
		UserID:            u.ID,
		Email:             u.Email,
		Name:              name,
		IsProfileComplete: u.IsProfileComplete,
		Role:              u.Role,
	}
}

// CreateUserRequest bootstraps a directory record on first sign-in.
type CreateUserRequest struct {
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}

// Normalize lower-cases the email and trims optional fields.
func (r *CreateUserRequest) Normalize() {
	r.Email = domainauth.NormalizeEmail(r.Email)
	r.Name = trimOptional(r.Name)
	r.Image = trimOptional(r.Image)
}

// Validate validates CreateUserRequest.
func (r *CreateUserRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if strings.Count(r.Email, "@") != 1 || strings.HasPrefix(r.Email, "@") || strings.HasSuffix(r.Email, "@") {
		return fmt.Errorf("invalid email %q", r.Email)
	}
	return nil
}

// CompleteProfileRequest is the one-time profile form.
type CompleteProfileRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	RollNumber  string `json:"rollNumber"`
}

// Normalize trims every field.
func (r *CompleteProfileRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.RollNumber = strings.TrimSpace(r.RollNumber)
}

// Validate checks that all fields are present and the phone number has exactly ten digits.
func (r *CompleteProfileRequest) Validate() error {
	var errs []error
	if r.FirstName == "" || r.LastName == "" || r.PhoneNumber == "" || r.RollNumber == "" {
		errs = append(errs, errors.New("all fields are required"))
	}
	if utf8.RuneCountInString(r.FirstName) > maxNameLen || utf8.RuneCountInString(r.LastName) > maxNameLen {
		errs = append(errs, fmt.Errorf("names cannot exceed %d characters", maxNameLen))
	}
	if r.PhoneNumber != "" && !isDigits(r.PhoneNumber, phoneDigits) {
		errs = append(errs, errors.New("phone number must be 10 digits"))
	}
	if utf8.RuneCountInString(r.RollNumber) > maxRollNumberLen {
		errs = append(errs, fmt.Errorf("roll number cannot exceed %d characters", maxRollNumberLen))
	}
	return errors.Join(errs...)
}

// FullName joins the first and last name.
func (r *CompleteProfileRequest) FullName() string {
	return r.FirstName + " " + r.LastName
}

// SetRoleRequest is the out-of-band administrative role assignment.
type SetRoleRequest struct {
	Email  string          `json:"email"`
	Role   domainauth.Role `json:"role"`
	ClubID *string         `json:"clubId,omitempty"`
}

// Validate validates SetRoleRequest. Coordinators must be tied to a club.
func (r *SetRoleRequest) Validate() error {
	r.Email = domainauth.NormalizeEmail(r.Email)
	r.ClubID = trimOptional(r.ClubID)
	if r.Email == "" {
		return errors.New("email is required")
	}
	if !r.Role.Valid() {
		return fmt.Errorf("invalid role %q", r.Role)
	}
	if r.Role == domainauth.RoleCoordinator && r.ClubID == nil {
		return errors.New("club id is required for coordinators")
	}
	return nil
}

// UsersListOptions controls paging for listing users.
type UsersListOptions struct {
	Limit  int
	Offset int
	Role   *domainauth.Role
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
