package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileEnums_Decode(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"gender":"Female","education":"Master"}`), &p))
	assert.Equal(t, GenderFemale, p.Gender)
	assert.Equal(t, EducationMaster, p.Education)

	require.NoError(t, json.Unmarshal([]byte(`{"gender":"","education":""}`), &p))
	assert.Equal(t, GenderOther, p.Gender)
	assert.Equal(t, EducationOther, p.Education)

	assert.Error(t, json.Unmarshal([]byte(`{"gender":"Robot"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"education":"Kindergarten"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"gender":1}`), &p))
}

func TestNewUser_Defaults(t *testing.T) {
	email := "a@example.com"
	now := time.Unix(1_700_000_000, 0)
	u := NewUser(CreateUserRequest{Username: "alice", Password: "pw", Email: &email}, now)

	assert.False(t, u.ID.IsZero())
	assert.Equal(t, now.Unix(), u.RegisterTime)
	assert.Equal(t, email, u.Email)
	assert.Empty(t, u.Phone)
	assert.Equal(t, GenderOther, u.Gender)
	assert.Equal(t, EducationOther, u.Education)
	assert.Equal(t, []string{}, u.Collection)
	assert.Empty(t, u.Token)
	assert.False(t, u.IsDeprecated)
}

func TestUser_SanitizedAndJSON(t *testing.T) {
	u := NewUser(CreateUserRequest{Username: "alice", Password: "secret"}, time.Now())
	u.Token = "tok"

	s := u.Sanitized()
	assert.Empty(t, s.Password)
	assert.Empty(t, s.Token)
	assert.Equal(t, "secret", u.Password, "original is untouched")

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.NotContains(t, m, "_id")
	assert.NotContains(t, m, "Profile", "profile fields are flattened")
	assert.Equal(t, "Other", m["gender"])
	assert.Equal(t, []any{}, m["following"])
}

func TestUser_HasLiveToken(t *testing.T) {
	now := time.Unix(1000, 0)
	assert.False(t, (&User{}).HasLiveToken(now))
	assert.True(t, (&User{Token: "t", ValidTokenTime: 1000}).HasLiveToken(now))
	assert.False(t, (&User{Token: "t", ValidTokenTime: 999}).HasLiveToken(now))
}
