// ABOUTME: Voice catalog for the synthesis service
// ABOUTME: Maps virtual voices onto core neural profiles with personality descriptors
package voice

import (
	"sort"
	"strings"
)

// Name identifies a studio voice
type Name string

const (
	Aoede        Name = "Aoede"
	Gacrux       Name = "Gacrux"
	Zephyr       Name = "Zephyr"
	Kore         Name = "Kore"
	Puck         Name = "Puck"
	Charon       Name = "Charon"
	Fenrir       Name = "Fenrir"
	Schedar      Name = "Schedar"
	Leda         Name = "Leda"
	Achird       Name = "Achird"
	Vindemiatrix Name = "Vindemiatrix"
	Alnilam      Name = "Alnilam"
	Lyra         Name = "Lyra"
	Orion        Name = "Orion"
	Cassiopeia   Name = "Cassiopeia"
	Perseus      Name = "Perseus"
	Andromeda    Name = "Andromeda"
	Cepheus      Name = "Cepheus"
	Aquila       Name = "Aquila"
	Cygnus       Name = "Cygnus"
	Delphinus    Name = "Delphinus"
	Hydra        Name = "Hydra"
	Rigel        Name = "Rigel"
	Antares      Name = "Antares"
	Sirius       Name = "Sirius"
	Vega         Name = "Vega"
	Altair       Name = "Altair"
	Canopus      Name = "Canopus"
)

// Names lists every studio voice in declaration order
var Names = []Name{
	Aoede, Gacrux, Zephyr, Kore, Puck, Charon, Fenrir, Schedar, Leda, Achird,
	Vindemiatrix, Alnilam, Lyra, Orion, Cassiopeia, Perseus, Andromeda, Cepheus,
	Aquila, Cygnus, Delphinus, Hydra, Rigel, Antares, Sirius, Vega, Altair, Canopus,
}

// Mapping pairs a core neural profile with the personality appended to the
// delivery instruction
type Mapping struct {
	Base        Name   `json:"base"`
	Personality string `json:"personality"`
}

// fallback is used for any voice without its own entry
var fallback = Mapping{Base: Zephyr}

var mappings = map[Name]Mapping{
	Zephyr: {Base: Zephyr},
	Puck:   {Base: Puck},
	Charon: {Base: Charon},
	Kore:   {Base: Kore},
	Fenrir: {Base: Fenrir},

	Lyra:       {Base: Zephyr, Personality: " ethereal and soft atmospheric qualities"},
	Orion:      {Base: Kore, Personality: " cinematic power and deep resonance"},
	Cassiopeia: {Base: Zephyr, Personality: " regal, commanding and Shakespearean weight"},
	Perseus:    {Base: Charon, Personality: " brave energy and energetic heroic pace"},
	Andromeda:  {Base: Zephyr, Personality: " dreamy, smooth meditation-like cadence"},
	Cepheus:    {Base: Fenrir, Personality: " ancient wisdom and a slightly raspy historical tone"},
	Aquila:     {Base: Puck, Personality: " sharp precision and quick tech-inspired delivery"},
	Cygnus:     {Base: Charon, Personality: " graceful, friendly Australian charm"},
	Delphinus:  {Base: Puck, Personality: " cheerful, bubbly gaming-style energy"},
	Hydra:      {Base: Charon, Personality: " dark, shadowy whispering textures"},
	Rigel:      {Base: Fenrir, Personality: " precise, articulate Indian English accent"},
	Antares:    {Base: Zephyr, Personality: " strong, lyrical Scottish accent"},
	Sirius:     {Base: Charon, Personality: " charming, warm Irish brogue"},
	Vega:       {Base: Zephyr, Personality: " vibrant, clear South African accent"},
	Altair:     {Base: Kore, Personality: " polite, steady Canadian accent"},
	Canopus:    {Base: Zephyr, Personality: " warm, hospitable Southern US drawl"},
}

// Lookup returns the core profile and personality for a voice. Unknown
// voices, including clone identifiers, fall back to Zephyr.
func Lookup(name Name) Mapping {
	if m, ok := mappings[name]; ok {
		return m
	}
	return fallback
}

// Valid reports whether name is a studio voice
func Valid(name Name) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Parse resolves a voice name case-insensitively
func Parse(s string) (Name, bool) {
	for _, n := range Names {
		if strings.EqualFold(string(n), s) {
			return n, true
		}
	}
	return "", false
}

// Entry describes one voice in the gallery
type Entry struct {
	Name Name `json:"name"`
	Mapping
	Virtual bool `json:"virtual"`
}

// Catalog returns every voice sorted by name
func Catalog() []Entry {
	entries := make([]Entry, 0, len(Names))
	for _, n := range Names {
		m := Lookup(n)
		entries = append(entries, Entry{
			Name:    n,
			Mapping: m,
			Virtual: m.Base != n,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}
