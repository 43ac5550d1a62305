package devauth

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/eventhub/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{Subject: "dev-user", Email: "Dev@Students.College.edu", Name: "Dev Student"})
	require.NoError(t, err)

	authURL, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(authURL, CallbackPath+"?"), authURL)
	assert.NotEmpty(t, state)
	assert.NotEmpty(t, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, state, u.Query().Get("state"))
	assert.Equal(t, "dev", u.Query().Get("code"))

	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	require.NoError(t, err)
	assert.Equal(t, "dev-user", id.Subject)
	assert.Equal(t, "dev@students.college.edu", id.Email)
	assert.Equal(t, "Dev Student", id.Name)
	assert.Equal(t, "Dev", id.GivenName)
	assert.Equal(t, "Student", id.FamilyName)

	_, err = prov.Exchange(context.Background(), ports.ExchangeInput{})
	assert.Error(t, err)
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Email: "a@b.edu"})
	assert.ErrorContains(t, err, "Subject is required")
	_, err = NewProvider(Config{Subject: "x", Email: "  "})
	assert.ErrorContains(t, err, "Email is required")
}
