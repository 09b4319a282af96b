package main

// Settings is one complete THR10 settings snapshot. Every leaf is a
// pointer: nil means "not specified, leave the device value alone"
// rather than zero. Section records are always present so partial
// staged edits can land anywhere without nil checks.
type Settings struct {
	Name   *string `json:"name,omitempty"`
	Edited *bool   `json:"edited,omitempty"`
	Stored *bool   `json:"stored,omitempty"`

	Amp        Amp        `json:"amp"`
	Cab        Cab        `json:"cab"`
	Compressor Compressor `json:"compressor"`
	Modulation Modulation `json:"modulation"`
	Delay      Delay      `json:"delay"`
	Reverb     Reverb     `json:"reverb"`
	Gate       Gate       `json:"gate"`
}

type Amp struct {
	Model  *string `json:"model,omitempty"`
	Gain   *int    `json:"gain,omitempty"`
	Master *int    `json:"master,omitempty"`
	Bass   *int    `json:"bass,omitempty"`
	Middle *int    `json:"middle,omitempty"`
	Treble *int    `json:"treble,omitempty"`
}

type Cab struct {
	Model *string `json:"model,omitempty"`
}

// Compressor covers both variants; Sustain/Output belong to Stomp,
// Threshold/Attack/Release/Ratio/Knee to Rack (Output is reused there).
type Compressor struct {
	On        *bool   `json:"on,omitempty"`
	Kind      *string `json:"kind,omitempty"`
	Sustain   *int    `json:"sustain,omitempty"`
	Output    *int    `json:"output,omitempty"`
	Threshold *int    `json:"threshold,omitempty"`
	Attack    *int    `json:"attack,omitempty"`
	Release   *int    `json:"release,omitempty"`
	Ratio     *string `json:"ratio,omitempty"`
	Knee      *string `json:"knee,omitempty"`
}

type Modulation struct {
	On       *bool   `json:"on,omitempty"`
	Kind     *string `json:"kind,omitempty"`
	Speed    *int    `json:"speed,omitempty"`
	Depth    *int    `json:"depth,omitempty"`
	Mix      *int    `json:"mix,omitempty"`
	Manual   *int    `json:"manual,omitempty"`
	Feedback *int    `json:"feedback,omitempty"`
	Spread   *int    `json:"spread,omitempty"`
	Freq     *int    `json:"freq,omitempty"`
}

type Delay struct {
	On       *bool `json:"on,omitempty"`
	Time     *int  `json:"time,omitempty"`
	Feedback *int  `json:"feedback,omitempty"`
	HighCut  *int  `json:"high_cut,omitempty"`
	LowCut   *int  `json:"low_cut,omitempty"`
	Level    *int  `json:"level,omitempty"`
}

// Reverb: Time/Pre/LowCut/HighCut/HighRatio/LowRatio/Level belong to
// the Hall/Room/Plate variants, Reverb/Filter to Spring.
type Reverb struct {
	On        *bool   `json:"on,omitempty"`
	Kind      *string `json:"kind,omitempty"`
	Time      *int    `json:"time,omitempty"`
	Pre       *int    `json:"pre,omitempty"`
	LowCut    *int    `json:"low_cut,omitempty"`
	HighCut   *int    `json:"high_cut,omitempty"`
	HighRatio *int    `json:"high_ratio,omitempty"`
	LowRatio  *int    `json:"low_ratio,omitempty"`
	Level     *int    `json:"level,omitempty"`
	Reverb    *int    `json:"reverb,omitempty"`
	Filter    *int    `json:"filter,omitempty"`
}

type Gate struct {
	On        *bool `json:"on,omitempty"`
	Threshold *int  `json:"threshold,omitempty"`
	Release   *int  `json:"release,omitempty"`
}
