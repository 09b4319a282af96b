package main

// Change records both sides of a single differing leaf.
type Change struct {
	Live   any `json:"live"`
	Staged any `json:"staged"`
}

// Diff compares two snapshots leaf by leaf and returns the differing
// paths. A nil staged leaf is "no opinion" and never produces an entry;
// a nil live leaf against a set staged leaf does.
func Diff(live, staged *Settings) map[string]Change {
	diffs := make(map[string]Change)
	if staged == nil {
		return diffs
	}
	if live == nil {
		live = &Settings{}
	}

	diffString(diffs, "name", live.Name, staged.Name)
	diffBool(diffs, "edited", live.Edited, staged.Edited)
	diffBool(diffs, "stored", live.Stored, staged.Stored)

	diffString(diffs, "amp.model", live.Amp.Model, staged.Amp.Model)
	diffInt(diffs, "amp.gain", live.Amp.Gain, staged.Amp.Gain)
	diffInt(diffs, "amp.master", live.Amp.Master, staged.Amp.Master)
	diffInt(diffs, "amp.bass", live.Amp.Bass, staged.Amp.Bass)
	diffInt(diffs, "amp.middle", live.Amp.Middle, staged.Amp.Middle)
	diffInt(diffs, "amp.treble", live.Amp.Treble, staged.Amp.Treble)

	diffString(diffs, "cab.model", live.Cab.Model, staged.Cab.Model)

	diffBool(diffs, "compressor.on", live.Compressor.On, staged.Compressor.On)
	diffString(diffs, "compressor.kind", live.Compressor.Kind, staged.Compressor.Kind)
	diffInt(diffs, "compressor.sustain", live.Compressor.Sustain, staged.Compressor.Sustain)
	diffInt(diffs, "compressor.output", live.Compressor.Output, staged.Compressor.Output)
	diffInt(diffs, "compressor.threshold", live.Compressor.Threshold, staged.Compressor.Threshold)
	diffInt(diffs, "compressor.attack", live.Compressor.Attack, staged.Compressor.Attack)
	diffInt(diffs, "compressor.release", live.Compressor.Release, staged.Compressor.Release)
	diffString(diffs, "compressor.ratio", live.Compressor.Ratio, staged.Compressor.Ratio)
	diffString(diffs, "compressor.knee", live.Compressor.Knee, staged.Compressor.Knee)

	diffBool(diffs, "modulation.on", live.Modulation.On, staged.Modulation.On)
	diffString(diffs, "modulation.kind", live.Modulation.Kind, staged.Modulation.Kind)
	diffInt(diffs, "modulation.speed", live.Modulation.Speed, staged.Modulation.Speed)
	diffInt(diffs, "modulation.depth", live.Modulation.Depth, staged.Modulation.Depth)
	diffInt(diffs, "modulation.mix", live.Modulation.Mix, staged.Modulation.Mix)
	diffInt(diffs, "modulation.manual", live.Modulation.Manual, staged.Modulation.Manual)
	diffInt(diffs, "modulation.feedback", live.Modulation.Feedback, staged.Modulation.Feedback)
	diffInt(diffs, "modulation.spread", live.Modulation.Spread, staged.Modulation.Spread)
	diffInt(diffs, "modulation.freq", live.Modulation.Freq, staged.Modulation.Freq)

	diffBool(diffs, "delay.on", live.Delay.On, staged.Delay.On)
	diffInt(diffs, "delay.time", live.Delay.Time, staged.Delay.Time)
	diffInt(diffs, "delay.feedback", live.Delay.Feedback, staged.Delay.Feedback)
	diffInt(diffs, "delay.high_cut", live.Delay.HighCut, staged.Delay.HighCut)
	diffInt(diffs, "delay.low_cut", live.Delay.LowCut, staged.Delay.LowCut)
	diffInt(diffs, "delay.level", live.Delay.Level, staged.Delay.Level)

	diffBool(diffs, "reverb.on", live.Reverb.On, staged.Reverb.On)
	diffString(diffs, "reverb.kind", live.Reverb.Kind, staged.Reverb.Kind)
	diffInt(diffs, "reverb.time", live.Reverb.Time, staged.Reverb.Time)
	diffInt(diffs, "reverb.pre", live.Reverb.Pre, staged.Reverb.Pre)
	diffInt(diffs, "reverb.low_cut", live.Reverb.LowCut, staged.Reverb.LowCut)
	diffInt(diffs, "reverb.high_cut", live.Reverb.HighCut, staged.Reverb.HighCut)
	diffInt(diffs, "reverb.high_ratio", live.Reverb.HighRatio, staged.Reverb.HighRatio)
	diffInt(diffs, "reverb.low_ratio", live.Reverb.LowRatio, staged.Reverb.LowRatio)
	diffInt(diffs, "reverb.level", live.Reverb.Level, staged.Reverb.Level)
	diffInt(diffs, "reverb.reverb", live.Reverb.Reverb, staged.Reverb.Reverb)
	diffInt(diffs, "reverb.filter", live.Reverb.Filter, staged.Reverb.Filter)

	diffBool(diffs, "gate.on", live.Gate.On, staged.Gate.On)
	diffInt(diffs, "gate.threshold", live.Gate.Threshold, staged.Gate.Threshold)
	diffInt(diffs, "gate.release", live.Gate.Release, staged.Gate.Release)

	return diffs
}

// Merge builds a new snapshot where every staged leaf wins and live
// fills the rest. Neither input is modified.
func Merge(live, staged *Settings) *Settings {
	if staged == nil {
		return live
	}
	if live == nil {
		live = &Settings{}
	}
	return &Settings{
		Name:   mergeString(live.Name, staged.Name),
		Edited: mergeBool(live.Edited, staged.Edited),
		Stored: mergeBool(live.Stored, staged.Stored),
		Amp: Amp{
			Model:  mergeString(live.Amp.Model, staged.Amp.Model),
			Gain:   mergeInt(live.Amp.Gain, staged.Amp.Gain),
			Master: mergeInt(live.Amp.Master, staged.Amp.Master),
			Bass:   mergeInt(live.Amp.Bass, staged.Amp.Bass),
			Middle: mergeInt(live.Amp.Middle, staged.Amp.Middle),
			Treble: mergeInt(live.Amp.Treble, staged.Amp.Treble),
		},
		Cab: Cab{
			Model: mergeString(live.Cab.Model, staged.Cab.Model),
		},
		Compressor: Compressor{
			On:        mergeBool(live.Compressor.On, staged.Compressor.On),
			Kind:      mergeString(live.Compressor.Kind, staged.Compressor.Kind),
			Sustain:   mergeInt(live.Compressor.Sustain, staged.Compressor.Sustain),
			Output:    mergeInt(live.Compressor.Output, staged.Compressor.Output),
			Threshold: mergeInt(live.Compressor.Threshold, staged.Compressor.Threshold),
			Attack:    mergeInt(live.Compressor.Attack, staged.Compressor.Attack),
			Release:   mergeInt(live.Compressor.Release, staged.Compressor.Release),
			Ratio:     mergeString(live.Compressor.Ratio, staged.Compressor.Ratio),
			Knee:      mergeString(live.Compressor.Knee, staged.Compressor.Knee),
		},
		Modulation: Modulation{
			On:       mergeBool(live.Modulation.On, staged.Modulation.On),
			Kind:     mergeString(live.Modulation.Kind, staged.Modulation.Kind),
			Speed:    mergeInt(live.Modulation.Speed, staged.Modulation.Speed),
			Depth:    mergeInt(live.Modulation.Depth, staged.Modulation.Depth),
			Mix:      mergeInt(live.Modulation.Mix, staged.Modulation.Mix),
			Manual:   mergeInt(live.Modulation.Manual, staged.Modulation.Manual),
			Feedback: mergeInt(live.Modulation.Feedback, staged.Modulation.Feedback),
			Spread:   mergeInt(live.Modulation.Spread, staged.Modulation.Spread),
			Freq:     mergeInt(live.Modulation.Freq, staged.Modulation.Freq),
		},
		Delay: Delay{
			On:       mergeBool(live.Delay.On, staged.Delay.On),
			Time:     mergeInt(live.Delay.Time, staged.Delay.Time),
			Feedback: mergeInt(live.Delay.Feedback, staged.Delay.Feedback),
			HighCut:  mergeInt(live.Delay.HighCut, staged.Delay.HighCut),
			LowCut:   mergeInt(live.Delay.LowCut, staged.Delay.LowCut),
			Level:    mergeInt(live.Delay.Level, staged.Delay.Level),
		},
		Reverb: Reverb{
			On:        mergeBool(live.Reverb.On, staged.Reverb.On),
			Kind:      mergeString(live.Reverb.Kind, staged.Reverb.Kind),
			Time:      mergeInt(live.Reverb.Time, staged.Reverb.Time),
			Pre:       mergeInt(live.Reverb.Pre, staged.Reverb.Pre),
			LowCut:    mergeInt(live.Reverb.LowCut, staged.Reverb.LowCut),
			HighCut:   mergeInt(live.Reverb.HighCut, staged.Reverb.HighCut),
			HighRatio: mergeInt(live.Reverb.HighRatio, staged.Reverb.HighRatio),
			LowRatio:  mergeInt(live.Reverb.LowRatio, staged.Reverb.LowRatio),
			Level:     mergeInt(live.Reverb.Level, staged.Reverb.Level),
			Reverb:    mergeInt(live.Reverb.Reverb, staged.Reverb.Reverb),
			Filter:    mergeInt(live.Reverb.Filter, staged.Reverb.Filter),
		},
		Gate: Gate{
			On:        mergeBool(live.Gate.On, staged.Gate.On),
			Threshold: mergeInt(live.Gate.Threshold, staged.Gate.Threshold),
			Release:   mergeInt(live.Gate.Release, staged.Gate.Release),
		},
	}
}

func diffInt(diffs map[string]Change, path string, live, staged *int) {
	if staged == nil {
		return
	}
	if live == nil {
		diffs[path] = Change{Live: nil, Staged: *staged}
		return
	}
	if *live != *staged {
		diffs[path] = Change{Live: *live, Staged: *staged}
	}
}

func diffBool(diffs map[string]Change, path string, live, staged *bool) {
	if staged == nil {
		return
	}
	if live == nil {
		diffs[path] = Change{Live: nil, Staged: *staged}
		return
	}
	if *live != *staged {
		diffs[path] = Change{Live: *live, Staged: *staged}
	}
}

func diffString(diffs map[string]Change, path string, live, staged *string) {
	if staged == nil {
		return
	}
	if live == nil {
		diffs[path] = Change{Live: nil, Staged: *staged}
		return
	}
	if *live != *staged {
		diffs[path] = Change{Live: *live, Staged: *staged}
	}
}

func mergeInt(live, staged *int) *int {
	if staged != nil {
		return intp(*staged)
	}
	if live != nil {
		return intp(*live)
	}
	return nil
}

func mergeBool(live, staged *bool) *bool {
	if staged != nil {
		return boolp(*staged)
	}
	if live != nil {
		return boolp(*live)
	}
	return nil
}

func mergeString(live, staged *string) *string {
	if staged != nil {
		return stringp(*staged)
	}
	if live != nil {
		return stringp(*live)
	}
	return nil
}
