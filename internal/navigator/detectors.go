package navigator

import (
	"fmt"
	"time"

	"ngp/internal/engine"
	"ngp/internal/storage"
	"ngp/internal/timeutil"
)

const (
	// imbalanceGap is the level spread beyond which skills count as imbalanced.
	imbalanceGap = 3
	// underperformLookback is how many completed cycles feed the hit-rate.
	underperformLookback = 4
	// skewWindow and skewMinSamples bound the difficulty-skew sample.
	skewWindow     = 20
	skewMinSamples = 8
	skewShare      = 0.7
	// hoardRatio and hoardWindow define coin hoarding: balance at this
	// multiple of the cheapest reward with no redemption in the window.
	hoardRatio  = 3
	hoardWindow = 30 * 24 * time.Hour
)

func cadencePeriod(s storage.Skill) time.Duration {
	switch s.Cadence {
	case string(engine.CadenceDaily):
		return 24 * time.Hour
	case string(engine.CadenceMonthly):
		return 30 * 24 * time.Hour
	case string(engine.CadenceCustom):
		if s.CustomDays > 0 {
			return time.Duration(s.CustomDays) * 24 * time.Hour
		}
		return 7 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}

func detectSkillImbalance(snap *Snapshot) (Suggestion, bool) {
	if len(snap.Skills) < 2 {
		return Suggestion{}, false
	}
	lo, hi := snap.Skills[0], snap.Skills[0]
	for _, s := range snap.Skills[1:] {
		if s.Level < lo.Level {
			lo = s
		}
		if s.Level > hi.Level {
			hi = s
		}
	}
	gap := hi.Level - lo.Level
	if gap < imbalanceGap {
		return Suggestion{}, false
	}
	return Suggestion{
		Kind:       KindSkillImbalance,
		Confidence: clamp01(float64(gap) / 6),
		SkillID:    lo.ID,
		Message: fmt.Sprintf("%s is %d levels behind %s; schedule some %s missions",
			lo.Name, gap, hi.Name, lo.Name),
	}, true
}

func detectCycleUnderperformance(snap *Snapshot) (Suggestion, bool) {
	credited := snap.creditedCycles()

	var best Suggestion
	var found bool
	for _, s := range snap.Skills {
		// Skills below readiness never seeded a target; that is the
		// readiness-gap pattern, not underperformance.
		if s.CycleStart == nil || snap.MissionCounts[s.ID] < engine.ReadinessThreshold {
			continue
		}
		hits, examined := 0, 0
		start := *s.CycleStart
		for i := 0; i < underperformLookback; i++ {
			pStart, pEnd := timeutil.PrevCycleWindow(s.Cadence, start, s.CustomDays)
			if !pEnd.After(s.CreatedAt) {
				break
			}
			examined++
			if credited[engine.CycleID(s.ID, pStart)] {
				hits++
			}
			start = pStart
		}
		if examined < 2 {
			continue
		}
		rate := float64(hits) / float64(examined)
		if rate >= 0.5 {
			continue
		}
		conf := clamp01(1 - rate)
		if !found || conf > best.Confidence {
			best = Suggestion{
				Kind:       KindCycleUnderperformance,
				Confidence: conf,
				SkillID:    s.ID,
				Message: fmt.Sprintf("%s hit its target in %d of the last %d cycles; consider an easier target pool",
					s.Name, hits, examined),
			}
			found = true
		}
	}
	return best, found
}

func detectReadinessGap(snap *Snapshot) (Suggestion, bool) {
	var best Suggestion
	var found bool
	for _, s := range snap.Skills {
		if snap.MissionCounts[s.ID] >= engine.ReadinessThreshold {
			continue
		}
		period := cadencePeriod(s)
		age := snap.Now.Sub(s.CreatedAt)
		if age <= period {
			continue
		}
		conf := clamp01(float64(age) / float64(2*period))
		if !found || conf > best.Confidence {
			missing := engine.ReadinessThreshold - snap.MissionCounts[s.ID]
			best = Suggestion{
				Kind:       KindReadinessGap,
				Confidence: conf,
				SkillID:    s.ID,
				Message: fmt.Sprintf("%s needs %d more missions before cycles can start",
					s.Name, missing),
			}
			found = true
		}
	}
	return best, found
}

func detectReflectionLapse(snap *Snapshot) (Suggestion, bool) {
	// Journal is newest-first; any entry counts as activity, the skill's
	// cadence only sets the expected rhythm.
	last := snap.Player.CreatedAt
	if len(snap.Journal) > 0 {
		last = snap.Journal[0].CreatedAt
	}
	gap := snap.Now.Sub(last)

	var best Suggestion
	var found bool
	for _, s := range snap.Skills {
		window := 2 * cadencePeriod(s)
		if gap <= window {
			continue
		}
		conf := clamp01(float64(gap) / float64(2*window))
		if !found || conf > best.Confidence {
			best = Suggestion{
				Kind:       KindReflectionLapse,
				Confidence: conf,
				SkillID:    s.ID,
				Message: fmt.Sprintf("no journal entries in %d days; a short reflection keeps %s honest",
					int(gap.Hours()/24), s.Name),
			}
			found = true
		}
	}
	return best, found
}

func detectFocusSaturation(snap *Snapshot) (Suggestion, bool) {
	if len(snap.Skills) == 0 {
		return Suggestion{}, false
	}
	n := 0
	for _, s := range snap.Skills {
		if s.IsFocus {
			n++
		}
	}
	switch {
	case n == 0:
		return Suggestion{
			Kind:       KindFocusSaturation,
			Confidence: 0.5,
			Message:    "no skill is marked as focus; pick one or two to anchor the week",
		}, true
	case n > 2:
		return Suggestion{
			Kind:       KindFocusSaturation,
			Confidence: clamp01(0.4 + 0.2*float64(n-2)),
			Message:    fmt.Sprintf("%d skills are marked focus; trim back to one or two", n),
		}, true
	}
	return Suggestion{}, false
}

func detectCoinHoarding(snap *Snapshot) (Suggestion, bool) {
	if len(snap.Rewards) == 0 {
		if snap.Player.Coins == 0 {
			return Suggestion{}, false
		}
		return Suggestion{
			Kind:       KindCoinHoarding,
			Confidence: 0.5,
			Message:    fmt.Sprintf("%d coins banked and no rewards defined; give the coins something to buy", snap.Player.Coins),
		}, true
	}
	cheapest := snap.Rewards[0].PriceCoins
	for _, w := range snap.Rewards[1:] {
		if w.PriceCoins < cheapest {
			cheapest = w.PriceCoins
		}
	}
	if cheapest <= 0 || snap.Player.Coins < hoardRatio*cheapest {
		return Suggestion{}, false
	}
	// Redemptions are newest-first.
	if len(snap.Redemptions) > 0 && snap.Now.Sub(snap.Redemptions[0].RedeemedAt) <= hoardWindow {
		return Suggestion{}, false
	}
	return Suggestion{
		Kind:       KindCoinHoarding,
		Confidence: clamp01(float64(snap.Player.Coins) / float64(6*cheapest)),
		Message:    fmt.Sprintf("%d coins banked with nothing redeemed lately; treat yourself", snap.Player.Coins),
	}, true
}

func detectDifficultySkew(snap *Snapshot) (Suggestion, bool) {
	difficulty := make(map[string]int, len(snap.Missions))
	for _, m := range snap.Missions {
		difficulty[m.ID] = m.Difficulty
	}

	// Completions are oldest-first; sample the most recent window. Archived
	// missions are absent from the snapshot, so their completions drop out.
	low, high, total := 0, 0, 0
	for i := len(snap.Completions) - 1; i >= 0 && total < skewWindow; i-- {
		d, ok := difficulty[snap.Completions[i].MissionID]
		if !ok {
			continue
		}
		total++
		switch {
		case d <= int(engine.DifficultyEasy):
			low++
		case d >= int(engine.DifficultyHard):
			high++
		}
	}
	if total < skewMinSamples {
		return Suggestion{}, false
	}
	lowShare := float64(low) / float64(total)
	highShare := float64(high) / float64(total)
	switch {
	case lowShare >= skewShare:
		return Suggestion{
			Kind:       KindDifficultySkew,
			Confidence: clamp01(lowShare),
			Message:    "recent missions cluster at the easy end; mix in something harder",
		}, true
	case highShare >= skewShare:
		return Suggestion{
			Kind:       KindDifficultySkew,
			Confidence: clamp01(highShare),
			Message:    "recent missions cluster at the hard end; schedule a few easy wins",
		}, true
	}
	return Suggestion{}, false
}
