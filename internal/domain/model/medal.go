// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"
)

// Medal is the podium outcome of a record.
type Medal string

// Medal values. MedalNone covers rows without a podium finish.
const (
	MedalGold   Medal = "Gold"
	MedalSilver Medal = "Silver"
	MedalBronze Medal = "Bronze"
	MedalNone   Medal = "None"
)

// ParseMedal normalizes a raw medal cell. Anything that is not a podium
// medal ("", "NA", "No medal", "NaN") becomes MedalNone.
func ParseMedal(s string) Medal {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gold":
		return MedalGold
	case "silver":
		return MedalSilver
	case "bronze":
		return MedalBronze
	default:
		return MedalNone
	}
}

// Counted reports whether the medal contributes to the medal tables.
func (m Medal) Counted() bool {
	return m == MedalGold || m == MedalSilver || m == MedalBronze
}

// Sex of the athlete.
type Sex string

// Sex values.
const (
	SexMale    Sex = "Male"
	SexFemale  Sex = "Female"
	SexUnknown Sex = ""
)

// ParseSex accepts the single-letter codes used by the source files as well
// as the spelled-out names.
func ParseSex(s string) Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return SexMale
	case "f", "female":
		return SexFemale
	default:
		return SexUnknown
	}
}

// Season of the games.
type Season string

// Season values.
const (
	SeasonSummer Season = "Summer"
	SeasonWinter Season = "Winter"
)

// ParseSeason normalizes the case of a season cell.
func ParseSeason(s string) Season {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "summer":
		return SeasonSummer
	case "winter":
		return SeasonWinter
	default:
		return Season(strings.TrimSpace(s))
	}
}

// MedalRecord is one row per (athlete, event, year) entry.
type MedalRecord struct {
	Year   int    `json:"year"`
	Sport  string `json:"sport"`
	Event  string `json:"event"`
	Sex    Sex    `json:"sex"`
	Name   string `json:"name"`
	Medal  Medal  `json:"medal"`
	Team   string `json:"team"`
	Season Season `json:"season"`
	City   string `json:"city"`
}

// MedalKey identifies one awarded medal. Team events award a single medal
// to several athletes; all of their rows share the same key.
func (r MedalRecord) MedalKey() string {
	var b strings.Builder
	b.Grow(len(r.Sport) + len(r.Event) + len(r.Medal) + 8)
	b.WriteString(strconv.Itoa(r.Year))
	b.WriteByte('\x1f')
	b.WriteString(r.Sport)
	b.WriteByte('\x1f')
	b.WriteString(r.Event)
	b.WriteByte('\x1f')
	b.WriteString(string(r.Medal))
	return b.String()
}
