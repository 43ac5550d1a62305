package auth

// DirectoryRecord is the subset of a directory user that a session token mirrors.
type DirectoryRecord struct {
	UserID            string
	Email             string
	Name              string
	IsProfileComplete bool
	Role              Role
}

// Mint builds the initial token for a freshly authenticated user.
// Timestamps are left to the codec.
func Mint(rec DirectoryRecord) Token {
	role := rec.Role
	if !role.Valid() {
		role = DefaultRole
	}
	return Token{
		UserID:            rec.UserID,
		Email:             NormalizeEmail(rec.Email),
		Name:              rec.Name,
		IsProfileComplete: rec.IsProfileComplete,
		Role:              role,
	}
}

// NeedsRefresh reports whether tok must be re-read from the directory before use.
func NeedsRefresh(tok Token, trigger Trigger) bool {
	if tok.Email == "" {
		return false
	}
	return trigger == TriggerUpdate || !tok.IsProfileComplete
}

// Refresh overlays the directory state onto tok. A nil record (lookup failed or
// user missing) leaves tok unchanged. Timestamps are never touched, so refreshing
// against unchanged directory state returns an identical token.
func Refresh(tok Token, rec *DirectoryRecord, trigger Trigger) Token {
	if rec == nil || !NeedsRefresh(tok, trigger) {
		return tok
	}
	out := tok
	if rec.UserID != "" {
		out.UserID = rec.UserID
	}
	out.IsProfileComplete = rec.IsProfileComplete
	if rec.Role.Valid() {
		out.Role = rec.Role
	} else {
		out.Role = DefaultRole
	}
	if rec.Name != "" {
		out.Name = rec.Name
	}
	return out
}

// SameClaims reports whether two tokens assert the same identity and authorization attributes.
func SameClaims(a, b Token) bool {
	return a.UserID == b.UserID &&
		a.Email == b.Email &&
		a.Name == b.Name &&
		a.IsProfileComplete == b.IsProfileComplete &&
		a.Role == b.Role
}
