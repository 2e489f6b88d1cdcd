package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachtui/coachapi"
)

func names(coaches []coachapi.Coach) []string {
	out := make([]string, len(coaches))
	for i, c := range coaches {
		out[i] = c.Name
	}
	return out
}

func TestFilterByGame(t *testing.T) {
	coaches := []coachapi.Coach{
		{Name: "Kim", Role: "MOBA"},
		{Name: "Ada", Role: "moba"},
		{Name: "Lee", Role: "Sports"},
		{Name: "Max", Role: "Gaming"},
		{Name: "Zed"},
	}

	tests := []struct {
		game string
		want []string
	}{
		{"lol", []string{"Kim", "Ada", "Max"}},
		{"DOTA2", []string{"Kim", "Ada", "Max"}},
		{"fifa23", []string{"Lee", "Max"}},
		{"apex", []string{"Max"}},
		{"", []string{"Kim", "Ada", "Lee", "Max", "Zed"}},
		{"unknown", []string{"Kim", "Ada", "Lee", "Max", "Zed"}},
	}

	for _, tt := range tests {
		t.Run(tt.game, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterByGame(coaches, tt.game)))
		})
	}
}

func TestSortByRole(t *testing.T) {
	coaches := []coachapi.Coach{
		{Name: "NoRole1"},
		{Name: "Shooter", Role: "tactical shooter"},
		{Name: "Moba1", Role: "MOBA"},
		{Name: "NoRole2"},
		{Name: "Auto", Role: "Auto Battler"},
		{Name: "Moba2", Role: "moba"},
	}

	sorted := SortByRole(coaches)
	assert.Equal(t, []string{"Auto", "Moba1", "Moba2", "Shooter", "NoRole1", "NoRole2"}, names(sorted))

	// Input untouched.
	assert.Equal(t, "NoRole1", coaches[0].Name)
}

func TestFindGame(t *testing.T) {
	g, ok := FindGame("VALORANT")
	require.True(t, ok)
	assert.Equal(t, "Tactical Shooter", g.Genre)
	assert.Len(t, Games, 8)
}

func TestSearch(t *testing.T) {
	coaches := []coachapi.Coach{
		{Name: "Kim Jisoo", Role: "MOBA"},
		{Name: "Lee Min", Role: "Sports"},
	}

	assert.Equal(t, coaches, Search(coaches, ""))
	assert.Equal(t, []string{"Kim Jisoo"}, names(Search(coaches, "kim")))
	assert.Equal(t, []string{"Lee Min"}, names(Search(coaches, "sprt")))
	assert.Empty(t, Search(coaches, "zzz"))
}
