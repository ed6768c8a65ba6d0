package engine

import (
	"fmt"
	"strings"
)

// PlayerID identifies an actor in the roster ("P1", "P2", ...).
type PlayerID = string

// RoomID is a dense room index; rooms are stored in a slice indexed by id.
type RoomID = int

// Limits shared by the engine contract and the fixed-shape encoders.
const (
	MaxHull        = 20
	MaxPlayers     = 6
	MaxRooms       = 10
	MaxHP          = 3
	MaxAP          = 2
	InventoryCap   = 2
	WheelbarrowCap = 5
)

// ---------------------------------------------------------------------------
// Phase
// ---------------------------------------------------------------------------

// Phase is the engine's round state machine position.
type Phase uint8

const (
	PhaseLobby            Phase = iota // 0
	PhaseSetup                         // 1
	PhaseMorningReport                 // 2
	PhaseEnemyTelegraph                // 3
	PhaseTacticalPlanning              // 4
	PhaseExecution                     // 5
	PhaseEnemyAction                   // 6
	PhaseGameOver                      // 7
	PhaseVictory                       // 8
	NumPhases
)

var phaseNames = [NumPhases]string{
	"Lobby", "Setup", "MorningReport", "EnemyTelegraph", "TacticalPlanning",
	"Execution", "EnemyAction", "GameOver", "Victory",
}

func (p Phase) String() string { return enumName(phaseNames[:], int(p)) }

// IsTerminal reports whether the game has ended.
func (p Phase) IsTerminal() bool { return p == PhaseGameOver || p == PhaseVictory }

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	i, err := enumParse(phaseNames[:], "phase", string(b))
	*p = Phase(i)
	return err
}

// ---------------------------------------------------------------------------
// Hazards, items, systems
// ---------------------------------------------------------------------------

// HazardType is a token that can accumulate in a room.
type HazardType uint8

const (
	HazardFire  HazardType = iota // 0
	HazardWater                   // 1
	NumHazardTypes
)

var hazardNames = [NumHazardTypes]string{"Fire", "Water"}

func (h HazardType) String() string { return enumName(hazardNames[:], int(h)) }

func (h HazardType) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

func (h *HazardType) UnmarshalText(b []byte) error {
	i, err := enumParse(hazardNames[:], "hazard", string(b))
	*h = HazardType(i)
	return err
}

// ItemType is a carryable item. Ordinals are part of the observation layout.
type ItemType uint8

const (
	ItemPeppernut    ItemType = iota // 0
	ItemExtinguisher                 // 1
	ItemKeychain                     // 2
	ItemWheelbarrow                  // 3
	ItemMitre                        // 4
	NumItemTypes
)

var itemNames = [NumItemTypes]string{"Peppernut", "Extinguisher", "Keychain", "Wheelbarrow", "Mitre"}

func (it ItemType) String() string { return enumName(itemNames[:], int(it)) }

func (it ItemType) MarshalText() ([]byte, error) { return []byte(it.String()), nil }

func (it *ItemType) UnmarshalText(b []byte) error {
	i, err := enumParse(itemNames[:], "item", string(b))
	*it = ItemType(i)
	return err
}

// ParseItemType parses an item name such as "Peppernut".
func ParseItemType(s string) (ItemType, error) {
	i, err := enumParse(itemNames[:], "item", s)
	return ItemType(i), err
}

// SystemType is the ship system hosted by a room.
type SystemType uint8

const (
	SystemBow       SystemType = iota // 0
	SystemDormitory                   // 1
	SystemCargo                       // 2
	SystemEngine                      // 3
	SystemKitchen                     // 4
	SystemCannons                     // 5
	SystemBridge                      // 6
	SystemSickbay                     // 7
	SystemStorage                     // 8
	NumSystemTypes
)

var systemNames = [NumSystemTypes]string{
	"Bow", "Dormitory", "Cargo", "Engine", "Kitchen", "Cannons", "Bridge", "Sickbay", "Storage",
}

func (s SystemType) String() string { return enumName(systemNames[:], int(s)) }

func (s SystemType) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SystemType) UnmarshalText(b []byte) error {
	i, err := enumParse(systemNames[:], "system", string(b))
	*s = SystemType(i)
	return err
}

// PlayerStatus is a condition attached to a player.
type PlayerStatus uint8

const (
	StatusFainted  PlayerStatus = iota // 0
	StatusSilenced                     // 1
	numStatuses
)

var statusNames = [numStatuses]string{"Fainted", "Silenced"}

func (s PlayerStatus) String() string { return enumName(statusNames[:], int(s)) }

func (s PlayerStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *PlayerStatus) UnmarshalText(b []byte) error {
	i, err := enumParse(statusNames[:], "status", string(b))
	*s = PlayerStatus(i)
	return err
}

// AttackEffect is what a telegraphed enemy attack does on impact.
type AttackEffect uint8

const (
	EffectFireball AttackEffect = iota // 0: spawns Fire
	EffectLeak                         // 1: spawns Water
	EffectBoarding                     // 2
	EffectHidden                       // 3: masked by fog
	EffectMiss                         // 4
	numEffects
)

var effectNames = [numEffects]string{"Fireball", "Leak", "Boarding", "Hidden", "Miss"}

func (e AttackEffect) String() string { return enumName(effectNames[:], int(e)) }

func (e AttackEffect) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *AttackEffect) UnmarshalText(b []byte) error {
	i, err := enumParse(effectNames[:], "attack effect", string(b))
	*e = AttackEffect(i)
	return err
}

// ---------------------------------------------------------------------------
// Cards
// ---------------------------------------------------------------------------

// CardID identifies a situation or flash card. Ordinals are part of the
// observation layout and must stay sorted.
type CardID uint8

const (
	CardAfternoonNap CardID = iota
	CardAmerigo
	CardAnchorLoose
	CardAnchorStuck
	CardAttackWave
	CardBigLeak
	CardBlockade
	CardCloggedPipe
	CardCostumeParty
	CardFallingGift
	CardFalseNote
	CardFluWave
	CardFogBank
	CardGoldenNut
	CardHighPressure
	CardHighWaves
	CardJammedCannon
	CardLeak
	CardLightsOut
	CardListing
	CardLuckyDip
	CardManOverboard
	CardMicePlague
	CardMonsterDough
	CardMutiny
	CardNoLight
	CardOverheating
	CardPanic
	CardPeppernutRain
	CardPresent
	CardRecipe
	CardRudderless
	CardSeagullAttack
	CardSeasick
	CardShoeSetting
	CardShortCircuit
	CardSilentForce
	CardSingASong
	CardSlipperyDeck
	CardStaticNoise
	CardStickyFloor
	CardStowaway
	CardStrongHeadwind
	CardSugarRush
	CardTheBook
	CardTheStaff
	CardTurboMode
	CardWailingAlarm
	CardWeirdGifts
	CardWheelClamp
	NumCards
)

var cardNames = [NumCards]string{
	"AfternoonNap", "Amerigo", "AnchorLoose", "AnchorStuck", "AttackWave", "BigLeak",
	"Blockade", "CloggedPipe", "CostumeParty", "FallingGift", "FalseNote", "FluWave",
	"FogBank", "GoldenNut", "HighPressure", "HighWaves", "JammedCannon", "Leak",
	"LightsOut", "Listing", "LuckyDip", "ManOverboard", "MicePlague", "MonsterDough",
	"Mutiny", "NoLight", "Overheating", "Panic", "PeppernutRain", "Present", "Recipe",
	"Rudderless", "SeagullAttack", "Seasick", "ShoeSetting", "ShortCircuit",
	"SilentForce", "SingASong", "SlipperyDeck", "StaticNoise", "StickyFloor",
	"Stowaway", "StrongHeadwind", "SugarRush", "TheBook", "TheStaff", "TurboMode",
	"WailingAlarm", "WeirdGifts", "WheelClamp",
}

func (c CardID) String() string { return enumName(cardNames[:], int(c)) }

func (c CardID) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *CardID) UnmarshalText(b []byte) error {
	i, err := enumParse(cardNames[:], "card", string(b))
	*c = CardID(i)
	return err
}

// CardType distinguishes instant cards from persistent ones.
type CardType uint8

const (
	CardFlash     CardType = iota // instant effect
	CardSituation                 // persistent until solved
	CardTimebomb                  // persistent with a countdown
	numCardTypes
)

var cardTypeNames = [numCardTypes]string{"Flash", "Situation", "Timebomb"}

func (t CardType) String() string { return enumName(cardTypeNames[:], int(t)) }

func (t CardType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *CardType) UnmarshalText(b []byte) error {
	i, err := enumParse(cardTypeNames[:], "card type", string(b))
	*t = CardType(i)
	return err
}

// CardSentiment tells scorers whether removing a card is progress.
type CardSentiment uint8

const (
	SentimentNegative CardSentiment = iota
	SentimentNeutral
	SentimentPositive
	numSentiments
)

var sentimentNames = [numSentiments]string{"Negative", "Neutral", "Positive"}

func (s CardSentiment) String() string { return enumName(sentimentNames[:], int(s)) }

func (s CardSentiment) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *CardSentiment) UnmarshalText(b []byte) error {
	i, err := enumParse(sentimentNames[:], "sentiment", string(b))
	*s = CardSentiment(i)
	return err
}

// ---------------------------------------------------------------------------
// enum helpers
// ---------------------------------------------------------------------------

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("Unknown(%d)", i)
	}
	return names[i]
}

func enumParse(names []string, kind, s string) (int, error) {
	s = strings.TrimSpace(s)
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}
