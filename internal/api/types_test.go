package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDString(t *testing.T) {
	assert.Equal(t, "973775515453722624", User{IDStr: "973775515453722624", ID: json.Number("1")}.IDString())
	assert.Equal(t, "15008676", User{ID: json.Number("15008676")}.IDString())
	assert.Equal(t, "972868365898334208", Tweet{ID: json.Number("972868365898334208")}.IDString())
	assert.Equal(t, "", Tweet{}.IDString())
}

func TestCreatedAtTime_Malformed(t *testing.T) {
	assert.True(t, Tweet{CreatedAt: "yesterday"}.CreatedAtTime().IsZero())
	assert.True(t, User{}.CreatedAtTime().IsZero())

	ts := Tweet{CreatedAt: "Wed Mar 14 21:17:37 +0000 2018"}.CreatedAtTime()
	assert.Equal(t, 14, ts.Day())
	assert.Equal(t, 21, ts.Hour())
}
