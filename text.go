package main

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// TokenizedLine is one settings line broken into its section keyword,
// the raw remainder, and an ordered attribute map. Bare markers (kind
// names, On/Off) appear as keys with empty values.
type TokenizedLine struct {
	Setting string
	Value   string
	Keys    []string
	Attrs   map[string]string
}

// TokenizeLine splits a settings line. Multi-word attribute names
// ("High Cut 8000") accumulate until a value token arrives; On/Off
// always stand alone. Comment and empty lines come back with an empty
// Setting.
func TokenizeLine(text string) TokenizedLine {
	tok := TokenizedLine{Attrs: make(map[string]string)}
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return tok
	}

	fields := strings.Fields(text)
	tok.Setting = strings.ToLower(strings.TrimSuffix(fields[0], ":"))
	tok.Value = strings.TrimSpace(strings.TrimPrefix(text, fields[0]))

	var pending []string
	flush := func() {
		if len(pending) == 0 {
			return
		}
		tok.add(strings.Join(pending, " "), "")
		pending = nil
	}
	for _, field := range fields[1:] {
		lower := strings.ToLower(field)
		if lower == "on" || lower == "off" {
			flush()
			tok.add(lower, "")
			continue
		}
		if isValueToken(field) {
			if len(pending) > 0 {
				tok.add(strings.Join(pending, " "), field)
				pending = nil
			}
			continue
		}
		pending = append(pending, lower)
	}
	flush()
	return tok
}

// isValueToken reports whether a token is a bare value: digits, or a
// ratio like 1:4 or 1:inf. Letters are only allowed after a colon, so
// mixed tokens like "4x12" stay part of an option name.
func isValueToken(field string) bool {
	if field[0] < '0' || field[0] > '9' {
		return false
	}
	sawColon := false
	for i := 1; i < len(field); i++ {
		switch c := field[i]; {
		case c >= '0' && c <= '9':
		case c == ':':
			sawColon = true
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			if !sawColon {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (t *TokenizedLine) add(key, value string) {
	if _, seen := t.Attrs[key]; !seen {
		t.Keys = append(t.Keys, key)
	}
	t.Attrs[key] = value
}

// FromTextSettings parses settings lines into a snapshot. Section
// keywords are fixed literals; repeated lines for a section merge
// additively, with On/Off markers applying last-writer-wins.
// Unrecognized lines are skipped.
func FromTextSettings(lines []string) *Settings {
	s := &Settings{}
	for _, line := range lines {
		tok := TokenizeLine(line)
		switch tok.Setting {
		case "name":
			s.Name = stringp(strings.TrimSpace(tok.Value))
		case "edited", "edit":
			s.Edited = mergeBool(s.Edited, parseOnOff(tok))
		case "stored":
			s.Stored = mergeBool(s.Stored, parseOnOff(tok))
		case "amp":
			if key := firstKey(tok); key != "" {
				s.Amp.Model = stringp(canonicalOption(key, AmpNames))
			}
		case "control":
			assignInt(tok, "gain", &s.Amp.Gain)
			assignInt(tok, "master", &s.Amp.Master)
			assignInt(tok, "bass", &s.Amp.Bass)
			assignInt(tok, "middle", &s.Amp.Middle)
			assignInt(tok, "treble", &s.Amp.Treble)
		case "cab":
			if key := firstKey(tok); key != "" {
				s.Cab.Model = stringp(canonicalOption(key, CabNames))
			}
		case "compressor":
			s.Compressor.On = mergeBool(s.Compressor.On, parseOnOff(tok))
			if kind := firstMatch(tok, CompressorNames); kind != "" {
				s.Compressor.Kind = stringp(kind)
			}
			assignInt(tok, "sustain", &s.Compressor.Sustain)
			assignInt(tok, "output", &s.Compressor.Output)
			assignInt(tok, "threshold", &s.Compressor.Threshold)
			assignInt(tok, "attack", &s.Compressor.Attack)
			assignInt(tok, "release", &s.Compressor.Release)
			if ratio := lookupOption(tok, "ratio", RatioNames); ratio != nil {
				s.Compressor.Ratio = ratio
			}
			if knee := lookupOption(tok, "knee", KneeNames); knee != nil {
				s.Compressor.Knee = knee
			}
		case "modulation":
			s.Modulation.On = mergeBool(s.Modulation.On, parseOnOff(tok))
			if kind := firstMatch(tok, ModulationNames); kind != "" {
				s.Modulation.Kind = stringp(kind)
			}
			assignInt(tok, "speed", &s.Modulation.Speed)
			assignInt(tok, "depth", &s.Modulation.Depth)
			assignInt(tok, "mix", &s.Modulation.Mix)
			assignInt(tok, "manual", &s.Modulation.Manual)
			assignInt(tok, "feedback", &s.Modulation.Feedback)
			assignInt(tok, "spread", &s.Modulation.Spread)
			assignInt(tok, "freq", &s.Modulation.Freq)
		case "delay":
			s.Delay.On = mergeBool(s.Delay.On, parseOnOff(tok))
			assignInt(tok, "time", &s.Delay.Time)
			assignInt(tok, "feedback", &s.Delay.Feedback)
			assignInt(tok, "high cut", &s.Delay.HighCut)
			assignInt(tok, "low cut", &s.Delay.LowCut)
			assignInt(tok, "level", &s.Delay.Level)
		case "reverb":
			s.Reverb.On = mergeBool(s.Reverb.On, parseOnOff(tok))
			if kind := firstMatch(tok, ReverbNames); kind != "" {
				s.Reverb.Kind = stringp(kind)
			}
			assignInt(tok, "time", &s.Reverb.Time)
			assignInt(tok, "pre", &s.Reverb.Pre)
			assignInt(tok, "low cut", &s.Reverb.LowCut)
			assignInt(tok, "high cut", &s.Reverb.HighCut)
			assignInt(tok, "high ratio", &s.Reverb.HighRatio)
			assignInt(tok, "low ratio", &s.Reverb.LowRatio)
			assignInt(tok, "level", &s.Reverb.Level)
			assignInt(tok, "reverb", &s.Reverb.Reverb)
			assignInt(tok, "filter", &s.Reverb.Filter)
		case "gate":
			s.Gate.On = mergeBool(s.Gate.On, parseOnOff(tok))
			assignInt(tok, "threshold", &s.Gate.Threshold)
			assignInt(tok, "release", &s.Gate.Release)
		}
	}
	return s
}

// ToTextSettings renders a snapshot as ordered settings lines. The
// lines are produced from the encoded block, so defaults and inferred
// kinds are already resolved; edited/stored come from the snapshot
// since the block has no slot for them.
func ToTextSettings(s *Settings) []string {
	data := EncodeSettings(s)
	lines := []string{nameLine(data)}
	if s.Edited != nil {
		lines = append(lines, fmt.Sprintf("Edited: %s", onOffString(*s.Edited)))
	}
	if s.Stored != nil {
		lines = append(lines, fmt.Sprintf("Stored: %s", onOffString(*s.Stored)))
	}
	lines = append(lines,
		fmt.Sprintf("Amp: %s", optionName(data[ampModelIdx], AmpNames)),
		fmt.Sprintf("Control: Gain %d Master %d Bass %d Middle %d Treble %d",
			data[gainIdx], data[masterIdx], data[bassIdx], data[middleIdx], data[trebleIdx]),
		fmt.Sprintf("Cab: %s", optionName(data[cabModelIdx], CabNames)),
	)
	lines = append(lines, compressorLines(data)...)
	lines = append(lines, modulationLines(data)...)
	lines = append(lines, delayLines(data)...)
	lines = append(lines, reverbLines(data)...)
	lines = append(lines, gateLines(data)...)
	return lines
}

func nameLine(data []byte) string {
	return fmt.Sprintf("Name: %s", bytes.TrimRight(data[:NameSize], "\x00"))
}

func compressorLines(data []byte) []string {
	kind := optionName(data[compTypeIdx], CompressorNames)
	lines := []string{fmt.Sprintf("Compressor: %s %s", kind, flagString(data[compOnIdx]))}
	if data[compTypeIdx] == 0 {
		return append(lines, fmt.Sprintf("Compressor: Sustain %d Output %d",
			data[compStompSustainIdx], data[compStompOutputIdx]))
	}
	return append(lines,
		fmt.Sprintf("Compressor: Threshold %d Attack %d Release %d",
			midiIntAt(data, compRackThresholdIdx), data[compRackAttackIdx], data[compRackReleaseIdx]),
		fmt.Sprintf("Compressor: Ratio %s Knee %s",
			optionName(data[compRackRatioIdx], RatioNames), optionName(data[compRackKneeIdx], KneeNames)),
	)
}

func modulationLines(data []byte) []string {
	kind := optionName(data[modTypeIdx], ModulationNames)
	lines := []string{fmt.Sprintf("Modulation: %s %s", kind, flagString(data[modOnIdx]))}
	switch data[modTypeIdx] {
	case 0:
		lines = append(lines, fmt.Sprintf("Modulation: Speed %d Depth %d Mix %d",
			data[modSpeedIdx], data[modDepthChorusIdx], data[modMixIdx]))
	case 1:
		lines = append(lines, fmt.Sprintf("Modulation: Speed %d Manual %d Depth %d Feedback %d Spread %d",
			data[modSpeedIdx], data[modManualIdx], data[modDepthIdx], data[modFeedbackIdx], data[modSpreadIdx]))
	case 2:
		lines = append(lines, fmt.Sprintf("Modulation: Freq %d Depth %d",
			data[modSpeedIdx], data[modDepthChorusIdx]))
	default:
		lines = append(lines, fmt.Sprintf("Modulation: Speed %d Manual %d Depth %d Feedback %d",
			data[modSpeedIdx], data[modManualIdx], data[modDepthIdx], data[modFeedbackIdx]))
	}
	return lines
}

func delayLines(data []byte) []string {
	return []string{
		fmt.Sprintf("Delay: %s", flagString(data[delayOnIdx])),
		fmt.Sprintf("Delay: Time %d Feedback %d Level %d",
			midiIntAt(data, delayTimeIdx), data[delayFeedbackIdx], data[delayLevelIdx]),
		fmt.Sprintf("Delay: High Cut %d Low Cut %d",
			midiIntAt(data, delayHighCutIdx), midiIntAt(data, delayLowCutIdx)),
	}
}

func reverbLines(data []byte) []string {
	kind := optionName(data[reverbTypeIdx], ReverbNames)
	lines := []string{fmt.Sprintf("Reverb: %s %s", kind, flagString(data[reverbOnIdx]))}
	if data[reverbTypeIdx] <= 2 {
		return append(lines,
			fmt.Sprintf("Reverb: Time %d Pre %d Level %d",
				midiIntAt(data, reverbTimeIdx), midiIntAt(data, reverbPreIdx), data[reverbLevelIdx]),
			fmt.Sprintf("Reverb: Low Cut %d High Cut %d",
				midiIntAt(data, reverbLowCutIdx), midiIntAt(data, reverbHighCutIdx)),
			fmt.Sprintf("Reverb: High Ratio %d Low Ratio %d",
				data[reverbHighRatioIdx], data[reverbLowRatioIdx]),
		)
	}
	return append(lines, fmt.Sprintf("Reverb: Reverb %d Filter %d",
		data[springReverbIdx], data[springFilterIdx]))
}

func gateLines(data []byte) []string {
	return []string{
		fmt.Sprintf("Gate: %s", flagString(data[gateOnIdx])),
		fmt.Sprintf("Gate: Threshold %d Release %d", data[gateThresholdIdx], data[gateReleaseIdx]),
	}
}

func flagString(value byte) string {
	return onOffString(value == flagOn)
}

func onOffString(on bool) string {
	if on {
		return "On"
	}
	return "Off"
}

func parseOnOff(tok TokenizedLine) *bool {
	if _, ok := tok.Attrs["on"]; ok {
		return boolp(true)
	}
	if _, ok := tok.Attrs["off"]; ok {
		return boolp(false)
	}
	return nil
}

func firstKey(tok TokenizedLine) string {
	if len(tok.Keys) == 0 {
		return ""
	}
	return tok.Keys[0]
}

// firstMatch returns the canonical spelling of the first attribute key
// that names one of the options.
func firstMatch(tok TokenizedLine, options []string) string {
	for _, key := range tok.Keys {
		for _, option := range options {
			if strings.EqualFold(option, key) {
				return option
			}
		}
	}
	return ""
}

// canonicalOption maps a user spelling to the canonical one, keeping
// unknown names as written so the codec's default fallback applies.
func canonicalOption(value string, options []string) string {
	for _, option := range options {
		if strings.EqualFold(option, value) {
			return option
		}
	}
	return value
}

// lookupOption finds a named enum attribute either as "key value" or as
// a combined "key value" flag phrase ("Knee Soft" tokenizes to one key).
func lookupOption(tok TokenizedLine, key string, options []string) *string {
	if v, ok := tok.Attrs[key]; ok && v != "" {
		return stringp(canonicalOption(v, options))
	}
	prefix := key + " "
	for _, k := range tok.Keys {
		if strings.HasPrefix(k, prefix) {
			return stringp(canonicalOption(strings.TrimPrefix(k, prefix), options))
		}
	}
	return nil
}

func assignInt(tok TokenizedLine, key string, dst **int) {
	v, ok := tok.Attrs[key]
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = intp(n)
}
