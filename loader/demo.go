package loader

import "github.com/nathoo/sagacore/types"

// Demo returns the built-in two-room adventure.
func Demo() *Document {
	return &Document{
		ID:        "demo",
		Title:     "Demo Adventure",
		Intro:     "You wake in a quiet village as the lanterns are lit.",
		StartRoom: "village",
		Rooms: []RoomDoc{
			{
				ID:          "village",
				Title:       "Quiet Village",
				Description: "A small village with a single cobblestone path and a warm lantern glow.",
				Exits:       map[string]string{types.North: "forest"},
				IsSafe:      true,
				Items: []ItemDoc{{
					ID:          "key",
					Name:        "Ancient Key",
					Description: "A tarnished key that seems to hum faintly.",
				}},
			},
			{
				ID:          "forest",
				Title:       "Whispering Forest",
				Description: "Tall pines sway as if sharing secrets. The village lies south.",
				Exits:       map[string]string{types.South: "village"},
			},
		},
		Monsters: []MonsterDoc{
			{
				ID:           "elder",
				Name:         "Village Elder",
				Description:  "An old woman leaning on a carved staff.",
				RoomID:       "village",
				Friendliness: string(types.Friendly),
			},
			{
				ID:           "wolf",
				Name:         "Grey Wolf",
				Description:  "A lean wolf with a torn ear.",
				RoomID:       "forest",
				Friendliness: string(types.Hostile),
				Hardiness:    ptr(6),
				Gold:         4,
			},
		},
		Quests: []QuestDoc{{
			ID:          "wolf_hunt",
			Title:       "Wolf Hunt",
			Description: "The elder wants the forest safe again.",
			Giver:       "elder",
			GiverLevel:  1,
			Difficulty:  types.DifficultyEasy,
			Stages: []types.QuestStage{{
				ID:    "hunt",
				Title: "Hunt the wolf",
				Objectives: []types.QuestObjective{{
					ID:          "kill_wolf",
					Kind:        types.ObjectiveKill,
					Description: "Kill the grey wolf",
					Target:      "wolf",
					Required:    1,
				}},
			}},
			Reward: types.QuestReward{XP: 50, Gold: 20},
		}},
		Effects: []EffectDoc{{
			ID:     "forest_hush",
			Event:  "player.moved",
			Target: "forest",
			Script: `say("The birdsong stops as you step under the pines.")`,
			Once:   true,
		}},
	}
}
