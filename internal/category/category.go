// Package category defines the fixed threat category taxonomy and the
// threat-level bands used across the ARGUS scoring pipeline.
package category

// ID identifies one of the six fixed threat categories.
type ID string

const (
	Terror       ID = "TERROR"
	Cyber        ID = "CYBER"
	Smuggling    ID = "SMUGGLING"
	Drone        ID = "DRONE"
	Insider      ID = "INSIDER"
	Geopolitical ID = "GEOPOLITICAL"
)

// DefaultWeight is applied when a score references a category outside the
// fixed set.
const DefaultWeight = 0.15

// Info describes one threat category.
type Info struct {
	ID          ID       `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Weight      float64  `json:"weight" yaml:"weight"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
	Description string   `json:"description" yaml:"description"`
}

// categories holds the fixed taxonomy. Weights must sum to 1.0.
var categories = map[ID]Info{
	Terror: {
		ID:     Terror,
		Name:   "Terror Threat",
		Weight: 0.25,
		Keywords: []string{
			"terror", "terrorism", "bomb", "explosive", "explosion",
			"attack", "militant", "hijack", "테러", "폭탄",
		},
		Description: "Terror attacks and explosive device threats",
	},
	Cyber: {
		ID:     Cyber,
		Name:   "Cyber Attack",
		Weight: 0.20,
		Keywords: []string{
			"hacking", "ransomware", "ddos", "malware", "cyber attack",
			"data breach", "phishing", "해킹", "사이버공격",
		},
		Description: "Cyber attacks and information security threats",
	},
	Smuggling: {
		ID:     Smuggling,
		Name:   "Smuggling / Illegal Entry",
		Weight: 0.15,
		Keywords: []string{
			"smuggling", "contraband", "drug trafficking", "illegal entry",
			"forged passport", "밀수", "밀입국", "마약",
		},
		Description: "Smuggling, narcotics, and illegal entry threats",
	},
	Drone: {
		ID:     Drone,
		Name:   "Drone Threat",
		Weight: 0.15,
		Keywords: []string{
			"drone", "uav", "unmanned", "airspace violation", "no-fly",
			"드론", "무인기",
		},
		Description: "Unauthorized drones and airspace intrusions",
	},
	Insider: {
		ID:     Insider,
		Name:   "Insider Threat",
		Weight: 0.15,
		Keywords: []string{
			"insider", "employee", "security breach", "privilege abuse",
			"credential misuse", "내부자", "정보유출",
		},
		Description: "Security threats originating from insiders",
	},
	Geopolitical: {
		ID:     Geopolitical,
		Name:   "Geopolitical Threat",
		Weight: 0.10,
		Keywords: []string{
			"north korea", "missile", "military", "war", "sanctions",
			"provocation", "북한", "미사일",
		},
		Description: "Geopolitical instability and military threats",
	},
}

// order fixes iteration order for deterministic aggregation and API output.
var order = []ID{Terror, Cyber, Smuggling, Drone, Insider, Geopolitical}

// All returns the fixed categories in canonical order.
func All() []Info {
	out := make([]Info, 0, len(order))
	for _, id := range order {
		out = append(out, categories[id])
	}
	return out
}

// IDs returns the category identifiers in canonical order.
func IDs() []ID {
	out := make([]ID, len(order))
	copy(out, order)
	return out
}

// Lookup returns the category info for id.
func Lookup(id ID) (Info, bool) {
	info, ok := categories[id]
	return info, ok
}

// Valid reports whether id is one of the fixed categories.
func Valid(id ID) bool {
	_, ok := categories[id]
	return ok
}

// Weight returns the static weight for id, or DefaultWeight for an unknown
// category.
func Weight(id ID) float64 {
	if info, ok := categories[id]; ok {
		return info.Weight
	}
	return DefaultWeight
}

// Level is a labelled band of the overall threat index.
type Level struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// levels spans [0,100] with contiguous, inclusive, non-overlapping bands.
var levels = []Level{
	{ID: "LOW", Label: "LOW", Min: 0, Max: 25, Color: "#3B82F6",
		Description: "Routine security posture, no notable threats"},
	{ID: "GUARDED", Label: "GUARDED", Min: 26, Max: 50, Color: "#22C55E",
		Description: "General vigilance, potential threats under watch"},
	{ID: "ELEVATED", Label: "ELEVATED", Min: 51, Max: 65, Color: "#EAB308",
		Description: "Heightened vigilance, specific threats detected"},
	{ID: "HIGH", Label: "HIGH", Min: 66, Max: 85, Color: "#F97316",
		Description: "Serious threats, active response required"},
	{ID: "CRITICAL", Label: "CRITICAL", Min: 86, Max: 100, Color: "#EF4444",
		Description: "Immediate response required, maximum alert"},
}

// Levels returns the five threat-level bands in ascending order.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

// LevelFor maps an overall index to its band. Out-of-range values clamp to
// the nearest band.
func LevelFor(index int) Level {
	if index < 0 {
		index = 0
	}
	if index > 100 {
		index = 100
	}
	for _, l := range levels {
		if index >= l.Min && index <= l.Max {
			return l
		}
	}
	return levels[0]
}
