package gameserver

import (
	"fmt"
	"slices"
	"sync"
)

// PlayerFlags tracks narrative switches that gate dialogue and actions.
type PlayerFlags struct {
	Bitter               bool `json:"is_bitter"`
	Evicted              bool `json:"is_evicted"`
	KnowsProjectBackdoor bool `json:"knows_project_backdoor"`
	AlignmentScore       int  `json:"alignment_score"`
}

// PlayerState is the single player's persistent state.
type PlayerState struct {
	Location  string      `json:"location"`
	Inventory []string    `json:"inventory"`
	Flags     PlayerFlags `json:"flags"`
}

func defaultPlayerState() PlayerState {
	return PlayerState{
		Location: "pod_interior",
		Inventory: []string{
			"item_laptop_old",
			"item_trophy_hackathon",
			"item_ramen_cup_empty",
		},
		Flags: PlayerFlags{Bitter: true},
	}
}

// World holds the game state behind a mutex. The server is single-player
// but serves concurrent connections, so every read and mutation goes
// through it.
type World struct {
	mu     sync.Mutex
	player PlayerState

	descriptions map[string]string
	npcs         map[string]npc
}

type npc struct {
	speaker string
	line    string
}

// NewWorld returns a world seeded with the default scenario content.
func NewWorld() *World {
	return &World{
		player: defaultPlayerState(),
		descriptions: map[string]string{
			"pod_interior":          "Your sleeping pod. A laptop hums on the fold-out desk; the walls are papered with rejection emails.",
			"item_laptop_old":       "A battle-scarred laptop. The fan whines like it knows something you don't.",
			"item_trophy_hackathon": "Third place, 2019. The plastic has started to yellow.",
			"item_ramen_cup_empty":  "Empty. It has been empty for a while.",
			"door":                  "The pod door. A notice from building management is taped to it.",
		},
		npcs: map[string]npc{
			"npc_landlord": {speaker: "Landlord", line: "Rent was due Tuesday. I don't want to hear about the startup."},
			"npc_greg":     {speaker: "Greg", line: "Dude. Have you heard about Project: Backdoor? Forget I said anything."},
		},
	}
}

// Snapshot returns a copy of the player state.
func (w *World) Snapshot() PlayerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := w.player
	p.Inventory = slices.Clone(p.Inventory)
	return p
}

// Look returns the description of a target visible to the player.
func (w *World) Look(target string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if d, ok := w.descriptions[target]; ok {
		return d
	}
	return fmt.Sprintf("You look at %s. Nothing about it stands out.", target)
}

// UseItem applies an item, optionally on a target, and returns the
// narrated result. Unknown items and items not held fail narratively,
// not as protocol errors.
func (w *World) UseItem(item, target string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !slices.Contains(w.player.Inventory, item) {
		return fmt.Sprintf("You don't have %s.", item)
	}
	if item == "item_laptop_old" {
		w.player.Flags.KnowsProjectBackdoor = true
		return "You open the laptop. A terminal is already waiting: PROJECT: BACKDOOR. ACCESS GRANTED."
	}
	if target == "" {
		return fmt.Sprintf("You fiddle with %s. Nothing happens.", item)
	}
	return fmt.Sprintf("You use %s on %s. Nothing happens, yet.", item, target)
}

// TalkTo returns the speaker and line for an NPC.
func (w *World) TalkTo(npcID string) (speaker, text string, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, ok := w.npcs[npcID]
	if !ok {
		return "", "", false
	}
	return n.speaker, n.line, true
}
