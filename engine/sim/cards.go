package sim

import "github.com/pippijn/sint/engine"

// cardDef is the static definition of a card in the reference deck.
type cardDef struct {
	typ       engine.CardType
	sentiment engine.CardSentiment
	desc      string
	solution  *engine.CardSolution
	countdown int
}

func sysPtr(s engine.SystemType) *engine.SystemType { return &s }
func itemPtr(i engine.ItemType) *engine.ItemType    { return &i }

var cardDefs = map[engine.CardID]cardDef{
	engine.CardFogBank: {
		typ: engine.CardSituation, sentiment: engine.SentimentNegative,
		desc:     "Enemy intent is hidden.",
		solution: &engine.CardSolution{TargetSystem: sysPtr(engine.SystemBow), APCost: 1, RequiredPlayers: 1},
	},
	engine.CardBlockade: {
		typ: engine.CardSituation, sentiment: engine.SentimentNegative,
		desc:     "The cargo hold is sealed off.",
		solution: &engine.CardSolution{TargetSystem: sysPtr(engine.SystemCannons), APCost: 1, ItemCost: itemPtr(engine.ItemPeppernut), RequiredPlayers: 1},
	},
	engine.CardStaticNoise: {
		typ: engine.CardSituation, sentiment: engine.SentimentNegative,
		desc:     "Nobody can chat.",
		solution: &engine.CardSolution{TargetSystem: sysPtr(engine.SystemEngine), APCost: 1, RequiredPlayers: 1},
	},
	engine.CardOverheating: {
		typ: engine.CardTimebomb, sentiment: engine.SentimentNegative,
		desc:      "The engine explodes when the countdown runs out.",
		solution:  &engine.CardSolution{TargetSystem: sysPtr(engine.SystemEngine), APCost: 1, RequiredPlayers: 1},
		countdown: 3,
	},
	engine.CardSugarRush: {
		typ: engine.CardSituation, sentiment: engine.SentimentPositive,
		desc: "Everyone gets an extra action point.",
	},
	engine.CardLeak: {
		typ: engine.CardFlash, sentiment: engine.SentimentNegative,
		desc: "Water floods the cargo hold.",
	},
	engine.CardPeppernutRain: {
		typ: engine.CardFlash, sentiment: engine.SentimentPositive,
		desc: "Peppernuts rain into the hallway.",
	},
}

// deckOrder is the unshuffled deck.
var deckOrder = []engine.CardID{
	engine.CardBlockade, engine.CardFogBank, engine.CardLeak, engine.CardOverheating,
	engine.CardPeppernutRain, engine.CardStaticNoise, engine.CardSugarRush,
}

// NewCard builds the card value for id. Unknown ids yield a neutral flash
// card without a solution.
func NewCard(id engine.CardID) engine.Card {
	d, ok := cardDefs[id]
	if !ok {
		return engine.Card{ID: id, Name: id.String(), Type: engine.CardFlash, Sentiment: engine.SentimentNeutral}
	}
	c := engine.Card{
		ID:          id,
		Name:        id.String(),
		Description: d.desc,
		Type:        d.typ,
		Sentiment:   d.sentiment,
		Countdown:   d.countdown,
	}
	if d.solution != nil {
		sol := *d.solution
		c.Solution = &sol
	}
	return c
}

func (g game) shuffleDeck() {
	deck := make([]engine.CardID, len(deckOrder))
	copy(deck, deckOrder)
	// Fisher-Yates shuffle.
	for i := len(deck) - 1; i > 0; i-- {
		j := g.randN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	g.Deck = deck
}

// drawCard takes the top card and applies it. Flash cards resolve
// immediately; the rest stay active until solved or expired.
func (g game) drawCard() {
	if len(g.Deck) == 0 {
		return
	}
	id := g.Deck[0]
	g.Deck = g.Deck[1:]
	card := NewCard(id)
	g.LatestEvent = "Card drawn: " + card.Name

	switch id {
	case engine.CardLeak:
		r := g.room(RoomCargo)
		r.Hazards = append(r.Hazards, engine.HazardWater)
	case engine.CardPeppernutRain:
		r := g.room(RoomHallway)
		r.Items = append(r.Items, engine.ItemPeppernut, engine.ItemPeppernut)
	}
	if card.Type != engine.CardFlash {
		g.ActiveSituations = append(g.ActiveSituations, card)
	}
	g.applySilence()
}

// applySilence keeps the Silenced status in sync with StaticNoise.
func (g game) applySilence() {
	silent := g.HasSituation(engine.CardStaticNoise)
	for _, id := range g.Roster {
		p := g.Players[id]
		has := p.HasStatus(engine.StatusSilenced)
		switch {
		case silent && !has:
			p.Status = append(p.Status, engine.StatusSilenced)
		case !silent && has:
			p.Status, _ = removeOne(p.Status, engine.StatusSilenced)
		default:
			continue
		}
		g.setPlayer(p)
	}
}

// solvableSituation returns the index of the first active situation the
// player can solve where they stand, or -1.
func (g game) solvableSituation(p engine.Player) int {
	r := g.room(p.RoomID)
	if r == nil || r.System == nil || r.IsBroken {
		return -1
	}
	for i, c := range g.ActiveSituations {
		sol := c.Solution
		if sol == nil || sol.TargetSystem == nil || *sol.TargetSystem != *r.System {
			continue
		}
		if p.AP < sol.APCost {
			continue
		}
		if sol.ItemCost != nil && p.CountItem(*sol.ItemCost) == 0 {
			continue
		}
		if sol.RequiredPlayers > g.crewIn(p.RoomID) {
			continue
		}
		return i
	}
	return -1
}

func (g game) crewIn(room engine.RoomID) int {
	n := 0
	for _, id := range g.Roster {
		p := g.Players[id]
		if p.RoomID == room && !p.HasStatus(engine.StatusFainted) {
			n++
		}
	}
	return n
}
