package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseYear(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1999", "1999", true},
		{"1999-05-01", "1999", true},
		{" 2004 (festival)", "2004", true},
		{"1999-compilation", "1999", true},
		{"May 1999", "", false},
		{"99", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ReleaseYear(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestMovieTypeValid(t *testing.T) {
	for _, mt := range MovieTypes {
		assert.True(t, mt.Valid())
	}
	assert.False(t, MovieType("documentary").Valid())
}

func TestNewSummary_EncodesEmptyArrays(t *testing.T) {
	s := NewSummary(Movie{ID: "m1", Title: "Carol"})
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	for _, k := range []string{"genres", "directors", "countries", "keywords"} {
		assert.Equal(t, []any{}, out[k], k)
	}
	assert.Nil(t, out["image_url"])
	assert.Equal(t, "Carol", out["title"])
}
