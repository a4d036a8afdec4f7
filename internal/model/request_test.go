package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialsRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CredentialsRequest
		wantErr bool
	}{
		{"valid", CredentialsRequest{Email: "a@example.com", Password: "pw"}, false},
		{"missing email", CredentialsRequest{Password: "pw"}, true},
		{"missing password", CredentialsRequest{Email: "a@example.com"}, true},
		{"password at limit", CredentialsRequest{Email: "a@example.com", Password: strings.Repeat("x", MaxPasswordBytes)}, false},
		{"password over limit", CredentialsRequest{Email: "a@example.com", Password: strings.Repeat("x", MaxPasswordBytes+1)}, true},
		// 25 runes, 75 bytes
		{"multibyte over limit", CredentialsRequest{Email: "a@example.com", Password: strings.Repeat("€", 25)}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateUserRequest_Validate(t *testing.T) {
	s := func(v string) *string { return &v }

	assert.ErrorIs(t, UpdateUserRequest{}.Validate(), errEmptyUpdate)
	assert.Error(t, UpdateUserRequest{Email: s("")}.Validate())
	assert.Error(t, UpdateUserRequest{Password: s("")}.Validate())
	assert.Error(t, UpdateUserRequest{Password: s(strings.Repeat("x", MaxPasswordBytes+1))}.Validate())
	assert.NoError(t, UpdateUserRequest{Email: s("b@example.com")}.Validate())
	assert.NoError(t, UpdateUserRequest{Password: s("new")}.Validate())
}

func TestSession_Expired(t *testing.T) {
	exp := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Session{ExpiresAt: exp}

	assert.False(t, s.Expired(exp.Add(-time.Second)))
	assert.True(t, s.Expired(exp))
	assert.True(t, s.Expired(exp.Add(time.Second)))
}

func TestUser_View(t *testing.T) {
	u := &User{ID: 3, Email: "a@example.com", Username: "a@example.com", PasswordHash: "hash", Role: RoleUser}
	assert.Equal(t, UserView{ID: 3, Email: "a@example.com", Role: RoleUser}, u.View())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("ROOT").Valid())
}
