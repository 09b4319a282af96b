package main

import (
	"reflect"
	"testing"
)

func TestTokenizeLine(t *testing.T) {
	tok := TokenizeLine("Control: Gain 60 Master 70")
	if tok.Setting != "control" {
		t.Errorf("setting = %q, want control", tok.Setting)
	}
	if tok.Attrs["gain"] != "60" || tok.Attrs["master"] != "70" {
		t.Errorf("attrs = %v", tok.Attrs)
	}
	if tok.Value != "Gain 60 Master 70" {
		t.Errorf("value = %q", tok.Value)
	}

	// Multi-word attribute names accumulate until a value arrives.
	tok = TokenizeLine("Delay: High Cut 8000 Low Cut 50")
	if tok.Attrs["high cut"] != "8000" || tok.Attrs["low cut"] != "50" {
		t.Errorf("multi-word attrs = %v", tok.Attrs)
	}

	// On/Off stand alone even mid-phrase; bare kinds become flag keys.
	tok = TokenizeLine("Compressor: Rack On")
	if !reflect.DeepEqual(tok.Keys, []string{"rack", "on"}) {
		t.Errorf("keys = %v", tok.Keys)
	}

	// Mixed tokens like 4x12 are option words, not values.
	tok = TokenizeLine("Cab: US 4x12")
	if _, ok := tok.Attrs["us 4x12"]; !ok {
		t.Errorf("cab name not kept as one key: %v", tok.Keys)
	}

	// Ratio values keep their colon, including the 1:inf spelling.
	tok = TokenizeLine("Compressor: Ratio 1:4 Knee Soft")
	if tok.Attrs["ratio"] != "1:4" {
		t.Errorf("ratio = %q", tok.Attrs["ratio"])
	}
	if _, ok := tok.Attrs["knee soft"]; !ok {
		t.Errorf("knee phrase missing: %v", tok.Keys)
	}
	tok = TokenizeLine("Compressor: Ratio 1:inf Knee Hard")
	if tok.Attrs["ratio"] != "1:inf" {
		t.Errorf("ratio = %q, want 1:inf", tok.Attrs["ratio"])
	}
	if _, ok := tok.Attrs["knee hard"]; !ok {
		t.Errorf("knee phrase missing after a ratio value: %v", tok.Keys)
	}

	for _, line := range []string{"", "   ", "# a comment"} {
		if tok := TokenizeLine(line); tok.Setting != "" {
			t.Errorf("line %q parsed as setting %q", line, tok.Setting)
		}
	}
}

func TestFromTextSettings(t *testing.T) {
	s := FromTextSettings([]string{
		"Name: Blues Lead",
		"Edited: On",
		"Amp: Brit Hi",
		"Control: Gain 60 Master 70 Bass 40 Middle 50 Treble 80",
		"Cab: brit 4x12",
		"Modulation: Flanger On",
		"Modulation: Speed 30 Depth 44",
	})
	if s.Name == nil || *s.Name != "Blues Lead" {
		t.Errorf("name = %v", s.Name)
	}
	if s.Edited == nil || !*s.Edited {
		t.Error("edited flag not parsed")
	}
	if *s.Amp.Model != "Brit Hi" || *s.Cab.Model != "Brit 4x12" {
		t.Errorf("models = %v / %v", s.Amp.Model, s.Cab.Model)
	}
	if *s.Amp.Gain != 60 || *s.Amp.Treble != 80 {
		t.Errorf("controls = %+v", s.Amp)
	}
	if *s.Modulation.Kind != "Flanger" || !*s.Modulation.On {
		t.Errorf("modulation = %+v", s.Modulation)
	}
	if *s.Modulation.Speed != 30 || *s.Modulation.Depth != 44 {
		t.Errorf("modulation knobs = %+v", s.Modulation)
	}
	// Untouched sections stay without opinion.
	if s.Delay.On != nil || s.Gate.Threshold != nil {
		t.Error("untouched sections gained values")
	}
}

func TestFromTextSettingsAdditiveMerge(t *testing.T) {
	s := FromTextSettings([]string{
		"Compressor: Rack On",
		"Compressor: Threshold 600 Attack 20 Release 30",
		"Compressor: Ratio 1:4 Knee Soft",
		"Compressor: Off",
	})
	if *s.Compressor.Kind != "Rack" {
		t.Errorf("kind = %v", s.Compressor.Kind)
	}
	if *s.Compressor.Threshold != 600 || *s.Compressor.Attack != 20 || *s.Compressor.Release != 30 {
		t.Errorf("rack knobs = %+v", s.Compressor)
	}
	if *s.Compressor.Ratio != "1:4" || *s.Compressor.Knee != "Soft" {
		t.Errorf("ratio/knee = %v / %v", s.Compressor.Ratio, s.Compressor.Knee)
	}
	// Last on/off marker wins.
	if s.Compressor.On == nil || *s.Compressor.On {
		t.Error("trailing Off did not win")
	}
}

func TestFromTextSettingsInfiniteRatio(t *testing.T) {
	s := FromTextSettings([]string{"Compressor: Ratio 1:inf Knee Hard"})
	if s.Compressor.Ratio == nil || *s.Compressor.Ratio != "1:inf" {
		t.Errorf("ratio = %v, want 1:inf", s.Compressor.Ratio)
	}
	if s.Compressor.Knee == nil || *s.Compressor.Knee != "Hard" {
		t.Errorf("knee = %v, want Hard", s.Compressor.Knee)
	}
}

func TestFromTextSettingsSkipsUnknownLines(t *testing.T) {
	s := FromTextSettings([]string{
		"Widget: Foo 1",
		"# Gain 99",
		"Control: Gain 10",
	})
	if *s.Amp.Gain != 10 {
		t.Errorf("gain = %v", s.Amp.Gain)
	}
	if s.Name != nil || s.Compressor.On != nil {
		t.Error("unknown lines leaked into the snapshot")
	}
}

// Rendering, parsing, and rendering again must be a fixed point: the
// second render equals the first line for line.
func TestTextRoundTripStable(t *testing.T) {
	snapshots := map[string]*Settings{
		"stomp flanger hall": fullSettings(),
		"rack tremelo spring": {
			Compressor: Compressor{
				On:        boolp(true),
				Kind:      stringp("Rack"),
				Threshold: intp(600),
				Attack:    intp(20),
				Release:   intp(30),
				Ratio:     stringp("1:inf"),
				Knee:      stringp("Hard"),
			},
			Modulation: Modulation{Kind: stringp("Tremelo"), Freq: intp(35), Depth: intp(60)},
			Reverb:     Reverb{On: boolp(true), Kind: stringp("Spring"), Reverb: intp(40), Filter: intp(25)},
		},
	}
	for name, s := range snapshots {
		first := ToTextSettings(s)
		second := ToTextSettings(FromTextSettings(first))
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: round trip drifted:\nfirst  %q\nsecond %q", name, first, second)
		}
	}
}
