package loader

import (
	"maps"
	"sort"

	"github.com/nathoo/sagacore/engine/quest"
	"github.com/nathoo/sagacore/engine/state"
	"github.com/nathoo/sagacore/types"
)

// Documented defaults for fields a document leaves out.
const (
	DefaultWeight      = 1
	DefaultWeaponDice  = 1
	DefaultWeaponSides = 6
	DefaultHardiness   = 10
	DefaultAgility     = 10
	DefaultCourage     = 100

	DefaultPlayerName  = "Adventurer"
	DefaultPlayerStat  = 12
	DefaultPlayerGold  = 200
	DefaultPlayerLevel = 1
)

var categories = map[string]types.ItemCategory{
	"weapon":    types.CategoryWeapon,
	"armor":     types.CategoryArmor,
	"treasure":  types.CategoryTreasure,
	"readable":  types.CategoryReadable,
	"edible":    types.CategoryEdible,
	"drinkable": types.CategoryDrinkable,
	"container": types.CategoryContainer,
}

var dispositions = map[string]types.Disposition{
	"friendly": types.Friendly,
	"hostile":  types.Hostile,
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func ptr[T any](v T) *T {
	return &v
}

// compile turns a validated document into a fresh World.
func compile(doc *Document) *types.World {
	w := state.NewWorld()
	w.ID = doc.ID
	w.Title = doc.Title
	w.Intro = doc.Intro
	w.StartRoom = doc.StartRoom
	maps.Copy(w.Variables, doc.Variables)

	for _, r := range doc.Rooms {
		title := r.Title
		if title == "" {
			title = r.Name
		}
		exits := map[string]string{}
		maps.Copy(exits, r.Exits)
		w.Rooms[r.ID] = types.Room{
			ID:          r.ID,
			Title:       title,
			Description: r.Description,
			Exits:       exits,
			Dark:        r.IsDark,
			SafeZone:    r.IsSafe,
			Trap:        r.HasTrap,
			Items:       []string{},
		}
	}

	for _, m := range doc.Monsters {
		w.Monsters[m.ID] = compileMonster(m)
	}

	var carried []string
	var worn string
	for _, d := range allItems(doc) {
		item := compileItem(d.doc)
		switch loc := d.location(); {
		case loc == LocationInventory:
			item.Location = types.Location{Kind: types.LocInventory}
			carried = append(carried, item.ID)
		case loc == LocationWorn:
			item.Location = types.Location{Kind: types.LocWorn}
			carried = append(carried, item.ID)
			if worn == "" {
				worn = item.ID
			}
		case loc == LocationNowhere:
			item.Location = types.Location{Kind: types.LocNowhere}
		default:
			if room, ok := w.Rooms[loc]; ok {
				item.Location = types.Location{Kind: types.LocRoom, ID: loc}
				room.Items = append(room.Items, item.ID)
				w.Rooms[loc] = room
			} else {
				item.Location = types.Location{Kind: types.LocMonster, ID: loc}
			}
		}
		w.Items[item.ID] = item
	}

	w.Player = compilePlayer(doc.Player, carried, worn)
	w.Player.Room = doc.StartRoom

	for _, q := range doc.Quests {
		quest.Offer(&w.Quests, compileQuest(q))
	}
	for _, e := range doc.Effects {
		w.Effects = append(w.Effects, types.Effect{
			ID: e.ID, Event: e.Event, Target: e.Target, Script: e.Script, Once: e.Once,
		})
	}
	return w
}

func compileItem(d ItemDoc) types.Item {
	category, ok := categories[d.Type]
	if !ok {
		category = types.CategoryNormal
	}
	takeable := true
	if d.IsTakeable != nil {
		takeable = *d.IsTakeable
	}
	return types.Item{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    category,
		Weight:      intOr(d.Weight, DefaultWeight),
		Value:       d.Value,
		IsWeapon:    d.IsWeapon,
		WeaponType:  d.WeaponType,
		WeaponDice:  intOr(d.WeaponDice, DefaultWeaponDice),
		WeaponSides: intOr(d.WeaponSides, DefaultWeaponSides),
		IsArmor:     d.IsArmor,
		ArmorValue:  d.ArmorValue,
		Takeable:    takeable,
		Wearable:    d.IsWearable,
	}
}

func compileMonster(d MonsterDoc) types.Monster {
	disp, ok := dispositions[d.Friendliness]
	if !ok {
		disp = types.Neutral
	}
	hardiness := intOr(d.Hardiness, DefaultHardiness)
	health := intOr(d.CurrentHealth, hardiness)
	if health < 0 {
		health = 0
	}
	return types.Monster{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		RoomID:      d.RoomID,
		Hardiness:   hardiness,
		Agility:     intOr(d.Agility, DefaultAgility),
		Courage:     intOr(d.Courage, DefaultCourage),
		Disposition: disp,
		WeaponID:    d.WeaponID,
		ArmorWorn:   d.ArmorWorn,
		Gold:        d.Gold,
		Dead:        d.IsDead,
		Health:      health,
	}
}

// compilePlayer applies document overrides to the default player. carried
// and worn are derived from item locations and used when the document
// does not list the inventory explicitly.
func compilePlayer(d *PlayerDoc, carried []string, worn string) types.Player {
	if d == nil {
		d = &PlayerDoc{}
	}
	p := types.Player{
		Name:           d.Name,
		Hardiness:      intOr(d.Hardiness, DefaultPlayerStat),
		Agility:        intOr(d.Agility, DefaultPlayerStat),
		Charisma:       intOr(d.Charisma, DefaultPlayerStat),
		WeaponAbility:  map[string]int{},
		ArmorExpertise: d.ArmorExpertise,
		Gold:           intOr(d.Gold, DefaultPlayerGold),
		Inventory:      []string{},
		EquippedWeapon: d.EquippedWeapon,
		EquippedArmor:  d.EquippedArmor,
		Level:          d.Level,
		Experience:     d.Experience,
		Reputation:     map[string]int{},
	}
	if p.Name == "" {
		p.Name = DefaultPlayerName
	}
	if p.Level == 0 {
		p.Level = DefaultPlayerLevel
	}
	p.Health = intOr(d.CurrentHealth, p.Hardiness)
	maps.Copy(p.WeaponAbility, d.WeaponAbility)
	maps.Copy(p.Reputation, d.Reputation)

	if d.Inventory != nil {
		p.Inventory = append(p.Inventory, d.Inventory...)
	} else {
		p.Inventory = append(p.Inventory, carried...)
	}
	if p.EquippedArmor == "" {
		p.EquippedArmor = worn
	}
	return p
}

func compileQuest(d QuestDoc) types.Quest {
	stages := make([]types.QuestStage, len(d.Stages))
	for i, st := range d.Stages {
		st.Objectives = append([]types.QuestObjective(nil), st.Objectives...)
		stages[i] = st
	}
	return types.Quest{
		ID:             d.ID,
		Title:          d.Title,
		Description:    d.Description,
		Giver:          d.Giver,
		GiverLevel:     d.GiverLevel,
		Difficulty:     d.Difficulty,
		Stages:         stages,
		Reward:         d.Reward,
		Prerequisites:  d.Prerequisites,
		Blocks:         d.Blocks,
		TimeLimitHours: d.TimeLimitHours,
		Status:         types.QuestAvailable,
	}
}

// Export writes a world back out as a canonical document. Loading the
// result yields a world equal to one freshly loaded from the original.
func Export(w *types.World) *Document {
	doc := &Document{
		ID:        w.ID,
		Title:     w.Title,
		Intro:     w.Intro,
		StartRoom: w.StartRoom,
	}
	if len(w.Variables) > 0 {
		doc.Variables = maps.Clone(w.Variables)
	}

	roomIDs := sortedKeys(w.Rooms)
	placed := map[string]bool{}
	for _, id := range roomIDs {
		r := w.Rooms[id]
		rd := RoomDoc{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			IsDark:      r.Dark,
			IsSafe:      r.SafeZone,
			HasTrap:     r.Trap,
		}
		if len(r.Exits) > 0 {
			rd.Exits = maps.Clone(r.Exits)
		}
		doc.Rooms = append(doc.Rooms, rd)

		// Room items keep their placement order.
		for _, itemID := range r.Items {
			if it, ok := w.Items[itemID]; ok && !placed[itemID] {
				doc.Items = append(doc.Items, exportItem(it))
				placed[itemID] = true
			}
		}
	}
	for _, id := range sortedKeys(w.Items) {
		if !placed[id] {
			doc.Items = append(doc.Items, exportItem(w.Items[id]))
		}
	}

	for _, id := range sortedKeys(w.Monsters) {
		doc.Monsters = append(doc.Monsters, exportMonster(w.Monsters[id]))
	}

	p := w.Player
	doc.Player = &PlayerDoc{
		Name:           p.Name,
		Hardiness:      ptr(p.Hardiness),
		Agility:        ptr(p.Agility),
		Charisma:       ptr(p.Charisma),
		WeaponAbility:  maps.Clone(p.WeaponAbility),
		ArmorExpertise: p.ArmorExpertise,
		Gold:           ptr(p.Gold),
		CurrentHealth:  ptr(p.Health),
		EquippedWeapon: p.EquippedWeapon,
		EquippedArmor:  p.EquippedArmor,
		Level:          p.Level,
		Experience:     p.Experience,
		Reputation:     maps.Clone(p.Reputation),
	}
	if len(p.Inventory) > 0 {
		doc.Player.Inventory = append([]string(nil), p.Inventory...)
	}

	var quests []types.Quest
	for _, set := range []map[string]types.Quest{w.Quests.Available, w.Quests.Active, w.Quests.Finished} {
		for _, q := range set {
			quests = append(quests, q)
		}
	}
	sort.Slice(quests, func(i, j int) bool { return quests[i].ID < quests[j].ID })
	for _, q := range quests {
		doc.Quests = append(doc.Quests, QuestDoc{
			ID:             q.ID,
			Title:          q.Title,
			Description:    q.Description,
			Giver:          q.Giver,
			GiverLevel:     q.GiverLevel,
			Difficulty:     q.Difficulty,
			Stages:         q.Stages,
			Reward:         q.Reward,
			Prerequisites:  q.Prerequisites,
			Blocks:         q.Blocks,
			TimeLimitHours: q.TimeLimitHours,
		})
	}

	for _, e := range w.Effects {
		doc.Effects = append(doc.Effects, EffectDoc{
			ID: e.ID, Event: e.Event, Target: e.Target, Script: e.Script, Once: e.Once,
		})
	}
	return doc
}

func exportItem(it types.Item) ItemDoc {
	d := ItemDoc{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Weight:      ptr(it.Weight),
		Value:       it.Value,
		IsWeapon:    it.IsWeapon,
		WeaponType:  it.WeaponType,
		WeaponDice:  ptr(it.WeaponDice),
		WeaponSides: ptr(it.WeaponSides),
		IsArmor:     it.IsArmor,
		ArmorValue:  it.ArmorValue,
		IsTakeable:  ptr(it.Takeable),
		IsWearable:  it.Wearable,
	}
	if it.Category != types.CategoryNormal {
		d.Type = string(it.Category)
	}
	switch it.Location.Kind {
	case types.LocInventory:
		d.Location = LocationInventory
	case types.LocWorn:
		d.Location = LocationWorn
	case types.LocRoom, types.LocMonster:
		d.Location = it.Location.ID
	default:
		d.Location = LocationNowhere
	}
	return d
}

func exportMonster(m types.Monster) MonsterDoc {
	d := MonsterDoc{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		RoomID:        m.RoomID,
		Hardiness:     ptr(m.Hardiness),
		Agility:       ptr(m.Agility),
		Courage:       ptr(m.Courage),
		WeaponID:      m.WeaponID,
		ArmorWorn:     m.ArmorWorn,
		Gold:          m.Gold,
		IsDead:        m.Dead,
		CurrentHealth: ptr(m.Health),
	}
	if m.Disposition != types.Neutral {
		d.Friendliness = string(m.Disposition)
	}
	return d
}
