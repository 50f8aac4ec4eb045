package planner

import "math"

// numArms is the number of inadmissible queues the scheduler chooses among.
// The anchor queue is not an arm: it is expanded only when the admissibility
// rule redirects an expansion to it.
const numArms = numQueues - 1

// banditScheduler is a UCB1 policy over the inadmissible queues. One
// instance lives inside one plan computation, so plain counters suffice.
//
// Reward definition: after an expansion attributed to an arm, the arm earns
// the normalized reduction of its queue's best top-of-queue key,
// clamp((bestKey - newTopKey)/scale, 0, 1), where scale is the anchor
// heuristic at the start cell. The signal is bounded, non-negative, zero
// when the queue made no front-of-queue progress, and scale-free across
// grid sizes. An arm whose selections keep getting redirected to the anchor
// earns zeros and decays accordingly.
type banditScheduler struct {
	c     float64 // exploration constant
	scale float64 // reward normalizer, anchor h at start

	pulls   [numArms]int
	rewards [numArms]float64
	bestKey [numArms]float64 // best (lowest) top key seen per arm's queue
	total   int
}

func newBanditScheduler(c, scale float64) *banditScheduler {
	if scale <= 0 {
		scale = 1
	}
	b := &banditScheduler{c: c, scale: scale}
	for i := range b.bestKey {
		b.bestKey[i] = math.Inf(1)
	}
	return b
}

// selectArm picks the arm to pull this step. Arms whose queue is exhausted
// (available false) are skipped. Before UCB scoring applies, every
// available arm is force-pulled once so no exploration term divides by
// zero. Returns -1 when no arm is available.
func (b *banditScheduler) selectArm(available [numArms]bool) int {
	for arm := 0; arm < numArms; arm++ {
		if available[arm] && b.pulls[arm] == 0 {
			return arm
		}
	}
	best := -1
	bestScore := math.Inf(-1)
	for arm := 0; arm < numArms; arm++ {
		if !available[arm] {
			continue
		}
		mean := b.rewards[arm] / float64(b.pulls[arm])
		score := mean + b.c*math.Sqrt(2*math.Log(float64(b.total))/float64(b.pulls[arm]))
		if score > bestScore {
			bestScore = score
			best = arm
		}
	}
	return best
}

// recordPull counts a selection. Called for every selection, including ones
// the admissibility rule redirects to the anchor, so the scheduler learns
// that an arm is currently unproductive.
func (b *banditScheduler) recordPull(arm int) {
	b.pulls[arm]++
	b.total++
}

// recordReward credits arm with the key its queue now exposes at the top.
func (b *banditScheduler) recordReward(arm int, newTopKey float64) {
	if math.IsInf(newTopKey, 1) {
		return
	}
	if newTopKey < b.bestKey[arm] {
		if !math.IsInf(b.bestKey[arm], 1) {
			r := (b.bestKey[arm] - newTopKey) / b.scale
			if r > 1 {
				r = 1
			}
			b.rewards[arm] += r
		}
		b.bestKey[arm] = newTopKey
	}
}
