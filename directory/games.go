package directory

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"coachtui/coachapi"
)

// Game is one title coaches can specialise in.
type Game struct {
	Key   string
	Name  string
	Genre string
}

// Games is the catalogue shown in the game picker.
var Games = []Game{
	{Key: "tft", Name: "Teamfight Tactics", Genre: "Auto Battler"},
	{Key: "lol", Name: "League of Legends", Genre: "MOBA"},
	{Key: "valorant", Name: "Valorant", Genre: "Tactical Shooter"},
	{Key: "fifa24", Name: "EA Sports FC 24", Genre: "Sports"},
	{Key: "dota2", Name: "Dota 2", Genre: "MOBA"},
	{Key: "cs2", Name: "Counter-Strike 2", Genre: "Tactical Shooter"},
	{Key: "apex", Name: "Apex Legends", Genre: "Battle Royale"},
	{Key: "fifa23", Name: "FIFA 23", Genre: "Sports"},
}

// generalRole coaches cover every game.
const generalRole = "gaming"

// FindGame looks a game up by key, case-insensitively.
func FindGame(key string) (Game, bool) {
	for _, g := range Games {
		if strings.EqualFold(g.Key, key) {
			return g, true
		}
	}
	return Game{}, false
}

// FilterByGame keeps coaches whose role matches the game's genre. An empty or
// unknown key keeps everyone.
func FilterByGame(coaches []coachapi.Coach, gameKey string) []coachapi.Coach {
	game, ok := FindGame(gameKey)
	if !ok {
		out := make([]coachapi.Coach, len(coaches))
		copy(out, coaches)
		return out
	}

	var out []coachapi.Coach
	for _, c := range coaches {
		if c.Role == "" {
			continue
		}
		if strings.EqualFold(c.Role, game.Genre) || strings.EqualFold(c.Role, generalRole) {
			out = append(out, c)
		}
	}
	return out
}

// SortByRole orders coaches by role, case-insensitively, with role-less
// coaches last. Equal roles keep their order.
func SortByRole(coaches []coachapi.Coach) []coachapi.Coach {
	out := make([]coachapi.Coach, len(coaches))
	copy(out, coaches)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Role, out[j].Role
		switch {
		case a == "" && b == "":
			return false
		case a == "":
			return false
		case b == "":
			return true
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
	return out
}

// Search fuzzy matches query against "name role". An empty query returns
// coaches unchanged.
func Search(coaches []coachapi.Coach, query string) []coachapi.Coach {
	if query == "" {
		return coaches
	}

	targets := make([]string, len(coaches))
	for i, c := range coaches {
		targets[i] = c.Name + " " + c.Role
	}

	matches := fuzzy.Find(query, targets)
	out := make([]coachapi.Coach, len(matches))
	for i, match := range matches {
		out[i] = coaches[match.Index]
	}
	return out
}
