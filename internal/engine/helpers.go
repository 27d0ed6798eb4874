package engine

import (
	"sort"

	"github.com/littbk/rpg-battle/internal/game"
)

// sortedKeys returns patch keys in a stable order so rejections are
// reported deterministically.
func sortedKeys(p game.Patch) []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
