package main

import (
	"bytes"
	"fmt"
	"strings"
)

// SettingsSize is the fixed parameter-block size inside a THR10
// settings dump.
const SettingsSize = 0x100

// NameSize is the settings-name region at the start of the block.
const NameSize = 64

// Block offsets, reverse engineered. The knob offsets follow the amp
// model byte; each effect section ends with its on/off flag.
const (
	ampModelIdx = 128
	gainIdx     = 129
	masterIdx   = 130
	bassIdx     = 131
	middleIdx   = 132
	trebleIdx   = 133
	cabModelIdx = 134

	compTypeIdx          = 144
	compStompSustainIdx  = 145
	compStompOutputIdx   = 146
	compRackThresholdIdx = 146
	compRackAttackIdx    = 147
	compRackReleaseIdx   = 148
	compRackRatioIdx     = 149
	compRackKneeIdx      = 150
	compRackOutputIdx    = 151
	compOnIdx            = 159

	modTypeIdx        = 160
	modSpeedIdx       = 161
	modManualIdx      = 162
	modDepthChorusIdx = 162
	modDepthIdx       = 163
	modMixIdx         = 163
	modFeedbackIdx    = 164
	modSpreadIdx      = 165
	modOnIdx          = 175

	delayTimeIdx     = 177
	delayFeedbackIdx = 179
	delayHighCutIdx  = 180
	delayLowCutIdx   = 182
	delayLevelIdx    = 184
	delayOnIdx       = 191

	reverbTypeIdx      = 192
	reverbTimeIdx      = 193
	reverbPreIdx       = 195
	reverbLowCutIdx    = 197
	reverbHighCutIdx   = 199
	reverbHighRatioIdx = 201
	reverbLowRatioIdx  = 202
	reverbLevelIdx     = 203
	springReverbIdx    = 193
	springFilterIdx    = 194
	reverbOnIdx        = 207

	gateThresholdIdx = 209
	gateReleaseIdx   = 210
	gateOnIdx        = 223
)

// On/off flags use the device's inverted sentinel: 0x00 is on, 0x7F is
// off. Sending 1/0 here silently disables the section.
const (
	flagOn  = 0x00
	flagOff = 0x7F
)

// Canonical option names, in device index order. Lookups are
// case-insensitive and fall back to index 0.
var (
	AmpNames        = []string{"Clean", "Crunch", "Lead", "Brit Hi", "Modern", "Bass", "Aco", "Flat"}
	CabNames        = []string{"US 4x12", "US 2x12", "Brit 4x12", "Brit 2x12", "Cab 1x12", "Cab 4x10"}
	CompressorNames = []string{"Stomp", "Rack"}
	ModulationNames = []string{"Chorus", "Flanger", "Tremelo", "Phaser"}
	ReverbNames     = []string{"Hall", "Room", "Plate", "Spring"}
	RatioNames      = []string{"1:1", "1:2", "1:4", "1:8", "1:12", "1:20", "1:inf"}
	KneeNames       = []string{"Soft", "Medium", "Hard"}
)

type valueRange struct {
	min, max int
}

// Working ranges per parameter. The minimum doubles as the default for
// unset fields. Times are milliseconds except reverb time (tenths of a
// second) and the ratio knobs (tenths).
var (
	knobRange          = valueRange{0, 100}
	rackThresholdRange = valueRange{0, 1023}
	rackOutputRange    = valueRange{0, 1023}
	delayTimeRange     = valueRange{1, 9999}
	delayHighCutRange  = valueRange{100, 16001}
	delayLowCutRange   = valueRange{21, 8000}
	reverbTimeRange    = valueRange{3, 329}
	reverbPreRange     = valueRange{1, 2000}
	reverbLowCutRange  = valueRange{21, 8000}
	reverbHighCutRange = valueRange{100, 16001}
	highRatioRange     = valueRange{1, 10}
	lowRatioRange      = valueRange{1, 14}
)

// EncodeSettings renders a Settings snapshot into a fresh parameter
// block. Unset fields encode as their range minimum; the name region is
// written only when a name is present.
func EncodeSettings(s *Settings) []byte {
	data := make([]byte, SettingsSize)
	encodeName(data, s.Name)
	encodeAmp(data, s.Amp)
	encodeCab(data, s.Cab)
	encodeCompressor(data, s.Compressor)
	encodeModulation(data, s.Modulation)
	encodeDelay(data, s.Delay)
	encodeReverb(data, s.Reverb)
	encodeGate(data, s.Gate)
	return data
}

func encodeName(data []byte, name *string) {
	if name == nil || *name == "" {
		return
	}
	for i := 0; i < NameSize; i++ {
		data[i] = 0
	}
	raw := []byte(*name)
	if len(raw) > NameSize {
		raw = raw[:NameSize]
	}
	copy(data, raw)
}

func encodeAmp(data []byte, amp Amp) {
	data[ampModelIdx] = optionIndex(strVal(amp.Model), AmpNames)
	data[gainIdx] = limitValue(amp.Gain, knobRange)
	data[masterIdx] = limitValue(amp.Master, knobRange)
	data[bassIdx] = limitValue(amp.Bass, knobRange)
	data[middleIdx] = limitValue(amp.Middle, knobRange)
	data[trebleIdx] = limitValue(amp.Treble, knobRange)
}

func encodeCab(data []byte, cab Cab) {
	data[cabModelIdx] = optionIndex(strVal(cab.Model), CabNames)
}

func encodeCompressor(data []byte, c Compressor) {
	kindIdx := optionIndex(inferCompressorKind(c), CompressorNames)
	data[compTypeIdx] = kindIdx
	data[compOnIdx] = onOffValue(c.On)
	if kindIdx == 0 {
		data[compStompSustainIdx] = limitValue(c.Sustain, knobRange)
		data[compStompOutputIdx] = limitValue(c.Output, knobRange)
		return
	}
	// Rack attack deliberately lands on the threshold low byte; the
	// device reads it that way.
	setMidiInt(data, compRackThresholdIdx, limitInt(c.Threshold, rackThresholdRange))
	data[compRackAttackIdx] = limitValue(c.Attack, knobRange)
	data[compRackReleaseIdx] = limitValue(c.Release, knobRange)
	data[compRackRatioIdx] = optionIndex(strVal(c.Ratio), RatioNames)
	data[compRackKneeIdx] = optionIndex(strVal(c.Knee), KneeNames)
	setMidiInt(data, compRackOutputIdx, limitInt(c.Output, rackOutputRange))
}

func encodeModulation(data []byte, m Modulation) {
	kindIdx := optionIndex(inferModulationKind(m), ModulationNames)
	data[modTypeIdx] = kindIdx
	data[modOnIdx] = onOffValue(m.On)
	switch kindIdx {
	case 0: // Chorus
		data[modSpeedIdx] = limitValue(m.Speed, knobRange)
		data[modDepthChorusIdx] = limitValue(m.Depth, knobRange)
		data[modMixIdx] = limitValue(m.Mix, knobRange)
	case 1: // Flanger
		data[modSpeedIdx] = limitValue(m.Speed, knobRange)
		data[modManualIdx] = limitValue(m.Manual, knobRange)
		data[modDepthIdx] = limitValue(m.Depth, knobRange)
		data[modFeedbackIdx] = limitValue(m.Feedback, knobRange)
		data[modSpreadIdx] = limitValue(m.Spread, knobRange)
	case 2: // Tremelo has no speed knob; freq reuses the speed slot.
		data[modSpeedIdx] = limitValue(m.Freq, knobRange)
		data[modDepthChorusIdx] = limitValue(m.Depth, knobRange)
	default: // Phaser
		data[modSpeedIdx] = limitValue(m.Speed, knobRange)
		data[modManualIdx] = limitValue(m.Manual, knobRange)
		data[modDepthIdx] = limitValue(m.Depth, knobRange)
		data[modFeedbackIdx] = limitValue(m.Feedback, knobRange)
	}
}

func encodeDelay(data []byte, d Delay) {
	data[delayOnIdx] = onOffValue(d.On)
	setMidiInt(data, delayTimeIdx, limitInt(d.Time, delayTimeRange))
	data[delayFeedbackIdx] = limitValue(d.Feedback, knobRange)
	setMidiInt(data, delayHighCutIdx, limitInt(d.HighCut, delayHighCutRange))
	setMidiInt(data, delayLowCutIdx, limitInt(d.LowCut, delayLowCutRange))
	data[delayLevelIdx] = limitValue(d.Level, knobRange)
}

func encodeReverb(data []byte, r Reverb) {
	kindIdx := optionIndex(inferReverbKind(r), ReverbNames)
	data[reverbTypeIdx] = kindIdx
	data[reverbOnIdx] = onOffValue(r.On)
	if kindIdx <= 2 {
		setMidiInt(data, reverbTimeIdx, limitInt(r.Time, reverbTimeRange))
		setMidiInt(data, reverbPreIdx, limitInt(r.Pre, reverbPreRange))
		setMidiInt(data, reverbLowCutIdx, limitInt(r.LowCut, reverbLowCutRange))
		setMidiInt(data, reverbHighCutIdx, limitInt(r.HighCut, reverbHighCutRange))
		data[reverbHighRatioIdx] = limitValue(r.HighRatio, highRatioRange)
		data[reverbLowRatioIdx] = limitValue(r.LowRatio, lowRatioRange)
		data[reverbLevelIdx] = limitValue(r.Level, knobRange)
		return
	}
	data[springReverbIdx] = limitValue(r.Reverb, knobRange)
	data[springFilterIdx] = limitValue(r.Filter, knobRange)
}

func encodeGate(data []byte, g Gate) {
	data[gateOnIdx] = onOffValue(g.On)
	data[gateThresholdIdx] = limitValue(g.Threshold, knobRange)
	data[gateReleaseIdx] = limitValue(g.Release, knobRange)
}

// DecodeSettings parses a parameter block into a fully-populated
// Settings snapshot. The edited/stored flags live outside the block and
// stay unset.
func DecodeSettings(data []byte) (*Settings, error) {
	if len(data) != SettingsSize {
		return nil, fmt.Errorf("invalid settings block length %d (want %d)", len(data), SettingsSize)
	}

	s := &Settings{}

	name := string(bytes.TrimRight(data[:NameSize], "\x00"))
	if name != "" {
		s.Name = &name
	}

	s.Amp = Amp{
		Model:  stringp(optionName(data[ampModelIdx], AmpNames)),
		Gain:   intp(int(data[gainIdx])),
		Master: intp(int(data[masterIdx])),
		Bass:   intp(int(data[bassIdx])),
		Middle: intp(int(data[middleIdx])),
		Treble: intp(int(data[trebleIdx])),
	}
	s.Cab = Cab{Model: stringp(optionName(data[cabModelIdx], CabNames))}

	s.Compressor = decodeCompressor(data)
	s.Modulation = decodeModulation(data)

	s.Delay = Delay{
		On:       boolp(data[delayOnIdx] == flagOn),
		Time:     intp(midiIntAt(data, delayTimeIdx)),
		Feedback: intp(int(data[delayFeedbackIdx])),
		HighCut:  intp(midiIntAt(data, delayHighCutIdx)),
		LowCut:   intp(midiIntAt(data, delayLowCutIdx)),
		Level:    intp(int(data[delayLevelIdx])),
	}

	s.Reverb = decodeReverb(data)

	s.Gate = Gate{
		On:        boolp(data[gateOnIdx] == flagOn),
		Threshold: intp(int(data[gateThresholdIdx])),
		Release:   intp(int(data[gateReleaseIdx])),
	}

	return s, nil
}

func decodeCompressor(data []byte) Compressor {
	c := Compressor{
		On:   boolp(data[compOnIdx] == flagOn),
		Kind: stringp(optionName(data[compTypeIdx], CompressorNames)),
	}
	if data[compTypeIdx] == 0 {
		c.Sustain = intp(int(data[compStompSustainIdx]))
		c.Output = intp(int(data[compStompOutputIdx]))
		return c
	}
	c.Threshold = intp(midiIntAt(data, compRackThresholdIdx))
	c.Attack = intp(int(data[compRackAttackIdx]))
	c.Release = intp(int(data[compRackReleaseIdx]))
	c.Ratio = stringp(optionName(data[compRackRatioIdx], RatioNames))
	c.Knee = stringp(optionName(data[compRackKneeIdx], KneeNames))
	c.Output = intp(midiIntAt(data, compRackOutputIdx))
	return c
}

func decodeModulation(data []byte) Modulation {
	m := Modulation{
		On:   boolp(data[modOnIdx] == flagOn),
		Kind: stringp(optionName(data[modTypeIdx], ModulationNames)),
	}
	switch data[modTypeIdx] {
	case 0:
		m.Speed = intp(int(data[modSpeedIdx]))
		m.Depth = intp(int(data[modDepthChorusIdx]))
		m.Mix = intp(int(data[modMixIdx]))
	case 1:
		m.Speed = intp(int(data[modSpeedIdx]))
		m.Manual = intp(int(data[modManualIdx]))
		m.Depth = intp(int(data[modDepthIdx]))
		m.Feedback = intp(int(data[modFeedbackIdx]))
		m.Spread = intp(int(data[modSpreadIdx]))
	case 2:
		m.Freq = intp(int(data[modSpeedIdx]))
		m.Depth = intp(int(data[modDepthChorusIdx]))
	default:
		m.Speed = intp(int(data[modSpeedIdx]))
		m.Manual = intp(int(data[modManualIdx]))
		m.Depth = intp(int(data[modDepthIdx]))
		m.Feedback = intp(int(data[modFeedbackIdx]))
	}
	return m
}

func decodeReverb(data []byte) Reverb {
	r := Reverb{
		On:   boolp(data[reverbOnIdx] == flagOn),
		Kind: stringp(optionName(data[reverbTypeIdx], ReverbNames)),
	}
	if data[reverbTypeIdx] <= 2 {
		r.Time = intp(midiIntAt(data, reverbTimeIdx))
		r.Pre = intp(midiIntAt(data, reverbPreIdx))
		r.LowCut = intp(midiIntAt(data, reverbLowCutIdx))
		r.HighCut = intp(midiIntAt(data, reverbHighCutIdx))
		r.HighRatio = intp(int(data[reverbHighRatioIdx]))
		r.LowRatio = intp(int(data[reverbLowRatioIdx]))
		r.Level = intp(int(data[reverbLevelIdx]))
		return r
	}
	r.Reverb = intp(int(data[springReverbIdx]))
	r.Filter = intp(int(data[springFilterIdx]))
	return r
}

// Variant inference when kind is unset: the precedence below matches
// the device editor's behavior and must not be reordered.

func inferCompressorKind(c Compressor) string {
	if c.Kind != nil && *c.Kind != "" {
		return *c.Kind
	}
	if c.Threshold != nil || c.Attack != nil || c.Release != nil || c.Ratio != nil || c.Knee != nil {
		return "Rack"
	}
	return "Stomp"
}

func inferModulationKind(m Modulation) string {
	if m.Kind != nil && *m.Kind != "" {
		return *m.Kind
	}
	if m.Spread != nil || m.Manual != nil {
		return "Flanger"
	}
	if m.Freq != nil {
		return "Tremelo"
	}
	if m.Feedback != nil {
		return "Phaser"
	}
	return "Chorus"
}

func inferReverbKind(r Reverb) string {
	if r.Kind != nil && *r.Kind != "" {
		return *r.Kind
	}
	if r.Reverb != nil || r.Filter != nil {
		return "Spring"
	}
	return "Hall"
}

// limitInt clamps to the range, treating nil as the range minimum.
func limitInt(v *int, r valueRange) int {
	val := r.min
	if v != nil {
		val = *v
	}
	if val < r.min {
		return r.min
	}
	if val > r.max {
		return r.max
	}
	return val
}

func limitValue(v *int, r valueRange) byte {
	return byte(limitInt(v, r))
}

// setMidiInt splits a value into two 7-bit bytes at consecutive
// offsets; MIDI data bytes must keep bit 7 clear.
func setMidiInt(data []byte, idx, value int) {
	data[idx] = byte(value>>7) & 0x7F
	data[idx+1] = byte(value) & 0x7F
}

func midiIntAt(data []byte, idx int) int {
	return int(data[idx])<<7 | int(data[idx+1])
}

func onOffValue(on *bool) byte {
	if on != nil && *on {
		return flagOn
	}
	return flagOff
}

// optionIndex resolves a name to its device index, case-insensitively.
// Unknown or unset names fall back to index 0.
func optionIndex(name string, options []string) byte {
	for i, option := range options {
		if strings.EqualFold(option, name) {
			return byte(i)
		}
	}
	return 0
}

func optionName(idx byte, options []string) string {
	if int(idx) >= len(options) {
		return options[0]
	}
	return options[idx]
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intp(v int) *int          { return &v }
func boolp(v bool) *bool       { return &v }
func stringp(v string) *string { return &v }
