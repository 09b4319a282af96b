package main

import (
	"bytes"
	"reflect"
	"testing"
)

func fullSettings() *Settings {
	return &Settings{
		Name: stringp("Blues Lead"),
		Amp: Amp{
			Model:  stringp("Brit Hi"),
			Gain:   intp(60),
			Master: intp(70),
			Bass:   intp(40),
			Middle: intp(50),
			Treble: intp(80),
		},
		Cab: Cab{Model: stringp("Brit 4x12")},
		Compressor: Compressor{
			On:      boolp(true),
			Kind:    stringp("Stomp"),
			Sustain: intp(40),
			Output:  intp(55),
		},
		Modulation: Modulation{
			On:       boolp(true),
			Kind:     stringp("Flanger"),
			Speed:    intp(30),
			Manual:   intp(20),
			Depth:    intp(44),
			Feedback: intp(12),
			Spread:   intp(9),
		},
		Delay: Delay{
			On:       boolp(true),
			Time:     intp(300),
			Feedback: intp(20),
			HighCut:  intp(8000),
			LowCut:   intp(50),
			Level:    intp(45),
		},
		Reverb: Reverb{
			On:        boolp(true),
			Kind:      stringp("Hall"),
			Time:      intp(30),
			Pre:       intp(100),
			LowCut:    intp(80),
			HighCut:   intp(8000),
			HighRatio: intp(8),
			LowRatio:  intp(2),
			Level:     intp(33),
		},
		Gate: Gate{
			On:        boolp(true),
			Threshold: intp(42),
			Release:   intp(55),
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := fullSettings()
	got, err := DecodeSettings(EncodeSettings(want))
	if err != nil {
		t.Fatalf("failed to decode settings: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	s := fullSettings()
	if !bytes.Equal(EncodeSettings(s), EncodeSettings(s)) {
		t.Error("encoding the same settings twice produced different bytes")
	}
}

func TestOnOffSentinel(t *testing.T) {
	on := EncodeSettings(&Settings{Compressor: Compressor{On: boolp(true)}})
	if on[compOnIdx] != 0x00 {
		t.Errorf("on flag = 0x%02X, want 0x00", on[compOnIdx])
	}

	off := EncodeSettings(&Settings{Compressor: Compressor{On: boolp(false)}})
	if off[compOnIdx] != 0x7F {
		t.Errorf("off flag = 0x%02X, want 0x7F", off[compOnIdx])
	}

	// Unset must rest at off, not at zero.
	unset := EncodeSettings(&Settings{})
	for _, idx := range []int{compOnIdx, modOnIdx, delayOnIdx, reverbOnIdx, gateOnIdx} {
		if unset[idx] != 0x7F {
			t.Errorf("unset flag at %d = 0x%02X, want 0x7F", idx, unset[idx])
		}
	}
}

func TestDelayTimePacking(t *testing.T) {
	data := EncodeSettings(&Settings{Delay: Delay{Time: intp(300)}})
	if data[delayTimeIdx] != 300>>7 || data[delayTimeIdx+1] != 300&0x7F {
		t.Errorf("delay time packed as (0x%02X, 0x%02X)", data[delayTimeIdx], data[delayTimeIdx+1])
	}

	decoded, err := DecodeSettings(data)
	if err != nil {
		t.Fatalf("failed to decode settings: %v", err)
	}
	if decoded.Delay.Time == nil || *decoded.Delay.Time != 300 {
		t.Errorf("delay time round trip = %v, want 300", decoded.Delay.Time)
	}

	// Above-range values clamp before packing.
	clamped := EncodeSettings(&Settings{Delay: Delay{Time: intp(20000)}})
	if got := midiIntAt(clamped, delayTimeIdx); got != delayTimeRange.max {
		t.Errorf("clamped delay time = %d, want %d", got, delayTimeRange.max)
	}
}

func TestClamping(t *testing.T) {
	data := EncodeSettings(&Settings{Amp: Amp{Gain: intp(200), Bass: intp(-5)}})
	if data[gainIdx] != 100 {
		t.Errorf("gain = %d, want 100", data[gainIdx])
	}
	if data[bassIdx] != 0 {
		t.Errorf("bass = %d, want 0", data[bassIdx])
	}
	// Unset knobs default to the range minimum.
	if data[masterIdx] != 0 {
		t.Errorf("unset master = %d, want 0", data[masterIdx])
	}
}

func TestNameRegion(t *testing.T) {
	// No name leaves the region untouched.
	unnamed := EncodeSettings(&Settings{})
	for i := 0; i < NameSize; i++ {
		if unnamed[i] != 0 {
			t.Fatalf("unnamed settings wrote byte 0x%02X at %d", unnamed[i], i)
		}
	}

	long := make([]byte, NameSize+10)
	for i := range long {
		long[i] = 'a'
	}
	data := EncodeSettings(&Settings{Name: stringp(string(long))})
	if data[NameSize-1] != 'a' || data[NameSize] != 0 {
		t.Error("name not truncated at the region boundary")
	}

	decoded, err := DecodeSettings(EncodeSettings(&Settings{Name: stringp("Clean Tone")}))
	if err != nil {
		t.Fatalf("failed to decode settings: %v", err)
	}
	if decoded.Name == nil || *decoded.Name != "Clean Tone" {
		t.Errorf("decoded name = %v, want Clean Tone", decoded.Name)
	}
}

func TestEnumLookup(t *testing.T) {
	cases := []struct {
		model string
		want  byte
	}{
		{"Brit Hi", 3},
		{"BRIT HI", 3},
		{"clean", 0},
		{"Nonsense", 0},
	}
	for _, tc := range cases {
		data := EncodeSettings(&Settings{Amp: Amp{Model: stringp(tc.model)}})
		if data[ampModelIdx] != tc.want {
			t.Errorf("amp model %q = index %d, want %d", tc.model, data[ampModelIdx], tc.want)
		}
	}
}

func TestModulationKindInference(t *testing.T) {
	cases := []struct {
		name string
		mod  Modulation
		want byte
	}{
		{"spread implies flanger", Modulation{Spread: intp(10)}, 1},
		{"manual implies flanger", Modulation{Manual: intp(10)}, 1},
		{"freq implies tremelo", Modulation{Freq: intp(10)}, 2},
		{"feedback implies phaser", Modulation{Feedback: intp(10)}, 3},
		{"mix implies chorus", Modulation{Mix: intp(10)}, 0},
		{"default is chorus", Modulation{}, 0},
		{"explicit kind wins", Modulation{Kind: stringp("Phaser"), Spread: intp(10)}, 3},
		{"manual beats feedback", Modulation{Manual: intp(10), Feedback: intp(10)}, 1},
	}
	for _, tc := range cases {
		data := EncodeSettings(&Settings{Modulation: tc.mod})
		if data[modTypeIdx] != tc.want {
			t.Errorf("%s: type index = %d, want %d", tc.name, data[modTypeIdx], tc.want)
		}
	}
}

func TestCompressorKindInference(t *testing.T) {
	rack := EncodeSettings(&Settings{Compressor: Compressor{Threshold: intp(500)}})
	if rack[compTypeIdx] != 1 {
		t.Errorf("threshold implies Rack, got index %d", rack[compTypeIdx])
	}
	stomp := EncodeSettings(&Settings{Compressor: Compressor{Sustain: intp(40)}})
	if stomp[compTypeIdx] != 0 {
		t.Errorf("sustain implies Stomp, got index %d", stomp[compTypeIdx])
	}
}

func TestReverbKindInference(t *testing.T) {
	spring := EncodeSettings(&Settings{Reverb: Reverb{Filter: intp(40)}})
	if spring[reverbTypeIdx] != 3 {
		t.Errorf("filter implies Spring, got index %d", spring[reverbTypeIdx])
	}
	if spring[springFilterIdx] != 40 {
		t.Errorf("spring filter byte = %d, want 40", spring[springFilterIdx])
	}
	hall := EncodeSettings(&Settings{Reverb: Reverb{Time: intp(30)}})
	if hall[reverbTypeIdx] != 0 {
		t.Errorf("default reverb kind should be Hall, got index %d", hall[reverbTypeIdx])
	}
}

func TestDecodeRejectsWrongSize(t *testing.T) {
	if _, err := DecodeSettings(make([]byte, 10)); err == nil {
		t.Error("expected an error for a short block")
	}
}
