package httpx

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campushub/eventhub/internal/domain/access"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/service"
)

// pageTemplates holds the few server-rendered pages the gate redirects to.
// Everything else is served as JSON.
//
//nolint:gochecknoglobals // parsed once at init, read-only afterwards
var pageTemplates = template.Must(template.New("pages").Parse(`
{{define "layout"}}<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} | Campus Event Hub</title></head>
<body>
<header><a href="/">Campus Event Hub</a>{{if .User}} · {{.User.Email}} <form method="post" action="/api/auth/logout" style="display:inline"><button>Sign out</button></form>{{end}}</header>
<main>{{template "content" .}}</main>
</body>
</html>{{end}}

{{define "home"}}<h1>Campus Event Hub</h1>
<p>Discover events run by college clubs.</p>
<ul>
<li><a href="/events">Upcoming events</a></li>
<li><a href="/clubs">Clubs</a></li>
{{if .User}}<li><a href="/student/registrations">My registrations</a></li>{{else}}<li><a href="/signup">Sign in</a></li>{{end}}
</ul>{{end}}

{{define "signup"}}<h1>Sign in</h1>
{{if eq .Error "invalid_domain"}}<p role="alert">{{if .Email}}{{.Email}} is not a college account. {{end}}Only addresses ending in {{range $i, $d := .Domains}}{{if $i}}, {{end}}@{{$d}}{{end}} are allowed.</p>
{{else if .Error}}<p role="alert">Sign-in failed. Please try again.</p>{{end}}
<p><a href="/api/auth/login?callbackUrl={{.CallbackURL}}">Continue with your college account</a></p>{{end}}

{{define "complete"}}<h1>Complete your profile</h1>
<form method="post" action="/api/profile/complete">
<label>First name <input name="firstName" required></label>
<label>Last name <input name="lastName" required></label>
<label>Phone number <input name="phoneNumber" pattern="[0-9]{10}" required></label>
<label>Roll number <input name="rollNumber" required></label>
<button>Save</button>
</form>{{end}}

{{define "forbidden"}}<h1>Access denied</h1>
<p>You do not have permission to view this page.</p>
<p><a href="/">Back to home</a></p>{{end}}
`))

type pageData struct {
	Title       string
	User        *domainauth.Token
	Error       string
	Email       string
	Domains     []string
	CallbackURL string
}

// PageHandlers renders the pages that must exist for gate redirects to land on.
type PageHandlers struct {
	AllowedDomains []string
	Logger         *slog.Logger
}

// Home renders the landing page.
// GET /.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, "home", pageData{Title: "Home"})
}

// Signup renders the sign-in page, including the rejected-domain message.
// GET /signup?error=invalid_domain&email=<email>&callbackUrl=<path>.
func (h *PageHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.render(w, r, http.StatusOK, "signup", pageData{
		Title:       "Sign in",
		Error:       q.Get("error"),
		Email:       q.Get("email"),
		Domains:     h.AllowedDomains,
		CallbackURL: safeCallback(q.Get("callbackUrl")),
	})
}

// CompleteProfile renders the profile completion form.
// GET /signup/complete.
func (h *PageHandlers) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	if claims, ok := ClaimsFromContext(r.Context()); ok && claims.IsProfileComplete {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "complete", pageData{Title: "Complete your profile"})
}

// Forbidden renders the access denied page.
// GET /403.
func (h *PageHandlers) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "forbidden", pageData{Title: "Access denied"})
}

func (h *PageHandlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	data.User, _ = ClaimsFromContext(r.Context())

	tmpl, err := pageTemplates.Clone()
	if err == nil {
		_, err = tmpl.New("content").Parse(`{{template "` + page + `" .}}`)
	}
	var buf bytes.Buffer
	if err == nil {
		err = tmpl.ExecuteTemplate(&buf, "layout", data)
	}
	if err != nil {
		loggerOrDefault(h.Logger).ErrorContext(r.Context(), "render page failed", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		// The client went away mid-response; nothing left to send.
		loggerOrDefault(h.Logger).DebugContext(r.Context(), "write page failed", "page", page, "error", err)
	}
}

// safeCallback keeps same-origin paths and never points back at the sign-in page.
func safeCallback(p string) string {
	p = service.SafeCallbackPath(p)
	if p == access.SignupPath || strings.HasPrefix(p, access.SignupPath+"?") {
		return "/"
	}
	return p
}
