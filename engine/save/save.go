// Package save implements JSON serialization and deserialization of game state.
package save

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/storage"
	"github.com/nathoo/sagacore/types"
)

// Version is the save format version written by Save.
const Version = "1"

// ErrVersion is returned by Load for saves written in another format.
var ErrVersion = errors.New("unsupported save version")

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version   string       `json:"version"`
	ID        string       `json:"id"`
	Adventure string       `json:"adventure"`
	SavedAt   time.Time    `json:"saved_at"`
	World     *types.World `json:"world"`
}

// Save serializes the world to JSON bytes under a fresh save id.
func Save(w *types.World, now time.Time) ([]byte, error) {
	data := SaveData{
		Version:   Version,
		ID:        uuid.NewString(),
		Adventure: w.ID,
		SavedAt:   now.UTC(),
		World:     w,
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding save")
	}
	return b, nil
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, errors.Wrap(err, "decoding save")
	}
	if sd.Version != Version {
		return nil, errors.Wrapf(ErrVersion, "%q", sd.Version)
	}
	if sd.World == nil {
		return nil, errors.New("save has no world")
	}
	fillMaps(sd.World)
	return &sd, nil
}

// fillMaps ensures no map or list is nil after load, whatever the save
// omitted.
func fillMaps(w *types.World) {
	empty := state.NewWorld()
	if w.Rooms == nil {
		w.Rooms = empty.Rooms
	}
	if w.Items == nil {
		w.Items = empty.Items
	}
	if w.Monsters == nil {
		w.Monsters = empty.Monsters
	}
	if w.Variables == nil {
		w.Variables = empty.Variables
	}
	if w.CommandLog == nil {
		w.CommandLog = empty.CommandLog
	}
	if w.Player.Inventory == nil {
		w.Player.Inventory = []string{}
	}
	if w.Player.WeaponAbility == nil {
		w.Player.WeaponAbility = map[string]int{}
	}
	if w.Player.Reputation == nil {
		w.Player.Reputation = map[string]int{}
	}
	tr := &w.Quests
	if tr.Available == nil {
		tr.Available = map[string]types.Quest{}
	}
	if tr.Active == nil {
		tr.Active = map[string]types.Quest{}
	}
	if tr.Completed == nil {
		tr.Completed = map[string]bool{}
	}
	if tr.Failed == nil {
		tr.Failed = map[string]bool{}
	}
	if tr.Abandoned == nil {
		tr.Abandoned = map[string]bool{}
	}
	if tr.Finished == nil {
		tr.Finished = map[string]types.Quest{}
	}
	if tr.History == nil {
		tr.History = []types.QuestRecord{}
	}
	for id, room := range w.Rooms {
		if room.Items == nil {
			room.Items = []string{}
			w.Rooms[id] = room
		}
	}
}

// Put encodes w and keeps it in st under name.
func Put(ctx context.Context, st storage.Store, name string, w *types.World, now time.Time) error {
	data, err := Save(w, now)
	if err != nil {
		return err
	}
	return st.Put(ctx, name, data)
}

// Get fetches the save kept under name and decodes it.
func Get(ctx context.Context, st storage.Store, name string) (*SaveData, error) {
	data, err := st.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	sd, err := Load(data)
	if err != nil {
		return nil, errors.Wrapf(err, "save %s", name)
	}
	return sd, nil
}
