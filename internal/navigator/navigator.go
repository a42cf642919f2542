package navigator

import "sort"

// Kind identifies a detected pattern. Declaration order is the final ranking
// tiebreak, so new kinds go at the end.
type Kind int

const (
	KindSkillImbalance Kind = iota
	KindCycleUnderperformance
	KindReadinessGap
	KindReflectionLapse
	KindFocusSaturation
	KindCoinHoarding
	KindDifficultySkew
)

var kindNames = map[Kind]string{
	KindSkillImbalance:        "skill_imbalance",
	KindCycleUnderperformance: "cycle_underperformance",
	KindReadinessGap:          "readiness_gap",
	KindReflectionLapse:       "reflection_lapse",
	KindFocusSaturation:       "focus_saturation",
	KindCoinHoarding:          "coin_hoarding",
	KindDifficultySkew:        "difficulty_skew",
}

func (k Kind) String() string { return kindNames[k] }

type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// priorityFor maps a confidence to a band. The mapping is fixed across all
// pattern kinds.
func priorityFor(confidence float64) Priority {
	switch {
	case confidence >= 0.7:
		return PriorityHigh
	case confidence >= 0.4:
		return PriorityNormal
	default:
		return PriorityLow
	}
}

// Suggestion is one ranked finding. SkillID is set when the pattern concerns
// a single skill.
type Suggestion struct {
	Kind       Kind
	Priority   Priority
	Confidence float64
	Message    string
	SkillID    string
}

// detector inspects a snapshot and reports at most one finding.
type detector func(*Snapshot) (Suggestion, bool)

// detectors is the fixed registry, in Kind order. Each entry is pure: same
// snapshot in, same finding out.
var detectors = []detector{
	detectSkillImbalance,
	detectCycleUnderperformance,
	detectReadinessGap,
	detectReflectionLapse,
	detectFocusSaturation,
	detectCoinHoarding,
	detectDifficultySkew,
}

// MaxSuggestions bounds Analyze output.
const MaxSuggestions = 3

// Analyze runs every detector over the snapshot and returns the top findings
// ordered by priority, then confidence, then kind declaration order.
func Analyze(snap *Snapshot) []Suggestion {
	var found []Suggestion
	for _, d := range detectors {
		if sg, ok := d(snap); ok {
			sg.Priority = priorityFor(sg.Confidence)
			found = append(found, sg)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Priority != found[j].Priority {
			return found[i].Priority > found[j].Priority
		}
		if found[i].Confidence != found[j].Confidence {
			return found[i].Confidence > found[j].Confidence
		}
		return found[i].Kind < found[j].Kind
	})
	if len(found) > MaxSuggestions {
		found = found[:MaxSuggestions]
	}
	return found
}
