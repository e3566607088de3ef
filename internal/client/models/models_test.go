package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "admin", (&User{Username: "admin"}).DisplayName())
	assert.Equal(t, "Ana Perez (ana)", (&User{Username: "ana", FirstName: "Ana", LastName: "Perez"}).DisplayName())
}

func TestAuditFilter_Values(t *testing.T) {
	ok := false
	f := AuditFilter{Action: "LOGIN", Username: "admin", Success: &ok, Ordering: "-timestamp"}

	v := f.Values()
	assert.Equal(t, "LOGIN", v.Get("action"))
	assert.Equal(t, "admin", v.Get("username"))
	assert.Equal(t, "false", v.Get("success"))
	assert.Equal(t, "-timestamp", v.Get("ordering"))
	assert.False(t, v.Has("severity"))
	assert.False(t, v.Has("start_date"))
}

func TestAuditFilter_ZeroValueIsEmpty(t *testing.T) {
	assert.Empty(t, AuditFilter{}.Values())
}

func TestAuditPage_Decode(t *testing.T) {
	raw := `{
		"count": 2,
		"next": "http://localhost:8000/api/audit/?page=2",
		"previous": null,
		"results": [
			{"id": 7, "action": "LOGIN", "severity": "INFO", "user": 1, "username": "admin",
			 "path": "/api/token/", "timestamp": "2025-11-02T10:15:00Z", "success": true, "object_id": null}
		]
	}`

	var p AuditPage
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, 2, p.Count)
	assert.True(t, p.HasNext())
	require.Len(t, p.Results, 1)
	assert.Equal(t, int64(7), p.Results[0].ID)
	require.NotNil(t, p.Results[0].User)
	assert.Equal(t, int64(1), *p.Results[0].User)
	assert.Nil(t, p.Results[0].ObjectID)
	assert.Equal(t, 2025, p.Results[0].Timestamp.Year())
}

func TestAuditPage_HasNext_LastPage(t *testing.T) {
	assert.False(t, (&AuditPage{}).HasNext())
	empty := ""
	assert.False(t, (&AuditPage{Next: &empty}).HasNext())
}
