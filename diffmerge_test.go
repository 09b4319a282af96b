package main

import (
	"reflect"
	"testing"
)

func TestDiffLeafChanges(t *testing.T) {
	live := fullSettings()
	staged := &Settings{
		Amp:   Amp{Gain: intp(90)},
		Delay: Delay{On: boolp(false)},
	}

	diffs := Diff(live, staged)
	if len(diffs) != 2 {
		t.Fatalf("diff count = %d, want 2: %v", len(diffs), diffs)
	}
	if d := diffs["amp.gain"]; d.Live != 60 || d.Staged != 90 {
		t.Errorf("amp.gain diff = %+v", d)
	}
	if d := diffs["delay.on"]; d.Live != true || d.Staged != false {
		t.Errorf("delay.on diff = %+v", d)
	}
}

func TestDiffEqualLeavesProduceNothing(t *testing.T) {
	live := fullSettings()
	staged := &Settings{Amp: Amp{Gain: intp(60)}}
	if diffs := Diff(live, staged); len(diffs) != 0 {
		t.Errorf("equal staged value produced diffs: %v", diffs)
	}
}

func TestDiffAbsentStagedIsNoOpinion(t *testing.T) {
	// An empty staged snapshot never diffs, no matter what live holds.
	if diffs := Diff(fullSettings(), &Settings{}); len(diffs) != 0 {
		t.Errorf("empty staged produced diffs: %v", diffs)
	}
	if diffs := Diff(fullSettings(), nil); len(diffs) != 0 {
		t.Errorf("nil staged produced diffs: %v", diffs)
	}
}

func TestDiffNilLiveAgainstSetStaged(t *testing.T) {
	diffs := Diff(&Settings{}, &Settings{Delay: Delay{Time: intp(300)}})
	d, ok := diffs["delay.time"]
	if !ok {
		t.Fatalf("expected a delay.time diff, got %v", diffs)
	}
	if d.Live != nil || d.Staged != 300 {
		t.Errorf("delay.time diff = %+v", d)
	}
}

func TestMergeStagedWins(t *testing.T) {
	live := fullSettings()
	staged := &Settings{
		Amp:    Amp{Gain: intp(90)},
		Reverb: Reverb{Kind: stringp("Spring"), Reverb: intp(25)},
	}

	merged := Merge(live, staged)
	if *merged.Amp.Gain != 90 {
		t.Errorf("merged gain = %d, want 90", *merged.Amp.Gain)
	}
	if *merged.Amp.Master != 70 {
		t.Errorf("merged master = %d, want live's 70", *merged.Amp.Master)
	}
	if *merged.Reverb.Kind != "Spring" || *merged.Reverb.Reverb != 25 {
		t.Errorf("merged reverb = %+v", merged.Reverb)
	}
	// Live's reverb time survives alongside the staged kind change.
	if *merged.Reverb.Time != 30 {
		t.Errorf("merged reverb time = %d, want 30", *merged.Reverb.Time)
	}
}

func TestMergeEmptyStagedEqualsLive(t *testing.T) {
	live := fullSettings()
	merged := Merge(live, &Settings{})
	if !reflect.DeepEqual(merged, live) {
		t.Errorf("merge with empty staged changed the snapshot:\ngot  %+v\nwant %+v", merged, live)
	}
}

func TestMergeDoesNotAliasInputs(t *testing.T) {
	live := fullSettings()
	merged := Merge(live, &Settings{})
	*merged.Amp.Gain = 1
	if *live.Amp.Gain != 60 {
		t.Error("merge shares leaf pointers with live")
	}
}

func TestDiffMergeLaws(t *testing.T) {
	live := fullSettings()
	staged := &Settings{
		Amp:        Amp{Gain: intp(90), Master: intp(70)}, // master equals live
		Modulation: Modulation{Kind: stringp("Tremelo"), Freq: intp(50)},
	}

	merged := Merge(live, staged)

	// The merged state agrees with staged everywhere staged spoke.
	if diffs := Diff(merged, staged); len(diffs) != 0 {
		t.Errorf("merged state disagrees with staged: %v", diffs)
	}

	// Diffing merged against live surfaces exactly the staged changes.
	want := Diff(live, staged)
	got := Diff(live, merged)
	if len(got) != len(want) {
		t.Fatalf("diff paths differ: got %v, want %v", got, want)
	}
	for path := range want {
		if _, ok := got[path]; !ok {
			t.Errorf("path %s missing from diff against merged", path)
		}
	}
}
