package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrTimeout reports that no settings dump arrived within the refresh
// window. It signals absence of new data, not a device failure.
var ErrTimeout = errors.New("timed out waiting for settings dump")

// Transport is the device I/O surface the controller drives. THR
// implements it over MIDI; tests substitute a fake.
type Transport interface {
	RequestCurrentSettings() error
	// ExtractDump returns the next received parameter block, or nil
	// when none is buffered.
	ExtractDump() ([]byte, error)
	WriteBytes(payload []byte) error
}

// Conflict records a parameter the user edited while the device's own
// value also moved away from the last known live value.
type Conflict struct {
	Live   any `json:"live"`
	Staged any `json:"staged"`
	Device any `json:"device"`
}

// Controller keeps a live snapshot (last confirmed from the device) and
// a staged snapshot (pending edits), applying edits after a debounce
// idle period. Not safe for concurrent use; one caller owns it.
type Controller struct {
	thr       Transport
	live      *Settings
	staged    *Settings
	conflicts map[string]Conflict

	Debounce     time.Duration
	PollInterval time.Duration
	Clock        func() time.Time
	Sleep        func(time.Duration)

	lastEdit     time.Time
	hasEdit      bool
	pendingApply bool
}

func NewController(thr Transport) *Controller {
	return &Controller{
		thr:          thr,
		live:         &Settings{},
		staged:       &Settings{},
		conflicts:    make(map[string]Conflict),
		Debounce:     300 * time.Millisecond,
		PollInterval: 50 * time.Millisecond,
		Clock:        time.Now,
		Sleep:        time.Sleep,
	}
}

func (c *Controller) Live() *Settings                { return c.live }
func (c *Controller) Staged() *Settings              { return c.staged }
func (c *Controller) Conflicts() map[string]Conflict { return c.conflicts }

// RefreshFromDevice requests a settings dump and polls until one
// arrives or the timeout elapses. A negative timeout polls
// indefinitely. On timeout it returns ErrTimeout and leaves live and
// staged untouched.
func (c *Controller) RefreshFromDevice(timeout time.Duration) (*Settings, error) {
	if err := c.thr.RequestCurrentSettings(); err != nil {
		return nil, err
	}
	start := c.Clock()
	var dump []byte
	for {
		var err error
		dump, err = c.thr.ExtractDump()
		if err != nil {
			return nil, err
		}
		if dump != nil {
			break
		}
		if timeout >= 0 && c.Clock().Sub(start) >= timeout {
			return nil, ErrTimeout
		}
		c.Sleep(c.PollInterval)
	}

	device, err := DecodeSettings(dump)
	if err != nil {
		return nil, err
	}
	c.detectConflicts(device)
	c.live = device
	return device, nil
}

// SetParam stages one leaf assignment by dotted (or slash-delimited)
// path, e.g. "amp.gain" or "delay/high-cut". Segments are trimmed,
// lower-cased, and space/hyphen-normalized before resolution.
func (c *Controller) SetParam(path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return errors.New("parameter path is empty")
	}

	var err error
	switch len(parts) {
	case 1:
		err = c.staged.setLeaf("", parts[0], value)
	case 2:
		err = c.staged.setLeaf(parts[0], parts[1], value)
	default:
		err = fmt.Errorf("unknown parameter group: %s", strings.Join(parts[:len(parts)-1], "."))
	}
	if err != nil {
		return err
	}

	c.lastEdit = c.Clock()
	c.hasEdit = true
	c.pendingApply = true
	return nil
}

// ApplyStaged writes the merged live+staged state to the device and
// adopts it as the new live state. Returns false with no error when
// there is nothing to apply. A failed write leaves everything as it
// was.
func (c *Controller) ApplyStaged() (bool, error) {
	diffs := Diff(c.live, c.staged)
	if len(diffs) == 0 {
		c.pendingApply = false
		return false, nil
	}

	merged := Merge(c.live, c.staged)
	if err := c.thr.WriteBytes(BuildSettingsDump(EncodeSettings(merged))); err != nil {
		return false, err
	}

	c.live = merged
	c.staged = &Settings{}
	c.conflicts = make(map[string]Conflict)
	c.pendingApply = false
	return true, nil
}

// DiscardStaged drops pending edits and conflicts without touching the
// device.
func (c *Controller) DiscardStaged() {
	c.staged = &Settings{}
	c.conflicts = make(map[string]Conflict)
	c.pendingApply = false
}

// FlushDebounced applies staged edits once the debounce window has
// passed since the last edit, or immediately when forced. It is
// pull-based: call it periodically from the owning loop.
func (c *Controller) FlushDebounced(force bool) (bool, error) {
	if !c.pendingApply {
		return false, nil
	}
	if force {
		return c.ApplyStaged()
	}
	if !c.hasEdit || c.Clock().Sub(c.lastEdit) < c.Debounce {
		return false, nil
	}
	return c.ApplyStaged()
}

// detectConflicts compares the previous live state against both the
// staged edits and the freshly observed device state. A path conflicts
// when it appears in both diff sets, whether or not the two new values
// agree.
func (c *Controller) detectConflicts(device *Settings) {
	c.conflicts = make(map[string]Conflict)
	stagedDiffs := Diff(c.live, c.staged)
	if len(stagedDiffs) == 0 {
		return
	}
	deviceDiffs := Diff(c.live, device)
	for path, sd := range stagedDiffs {
		dd, ok := deviceDiffs[path]
		if !ok {
			continue
		}
		c.conflicts[path] = Conflict{Live: sd.Live, Staged: sd.Staged, Device: dd.Staged}
	}
}

func splitPath(path string) []string {
	var parts []string
	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '.' || r == '/' }) {
		part = normalizeField(part)
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func normalizeField(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, "-", "_")
}

// setLeaf resolves a normalized group/field pair against the closed set
// of settable leaves. The two error cases mirror path resolution:
// unknown group, unknown parameter.
func (s *Settings) setLeaf(group, field string, value any) error {
	switch group {
	case "":
		switch field {
		case "name":
			return setStringValue(&s.Name, value)
		case "edited":
			return setBoolValue(&s.Edited, value)
		case "stored":
			return setBoolValue(&s.Stored, value)
		}
		return fmt.Errorf("unknown parameter: %s", field)
	case "amp":
		switch field {
		case "model":
			return setStringValue(&s.Amp.Model, value)
		case "gain":
			return setIntValue(&s.Amp.Gain, value)
		case "master":
			return setIntValue(&s.Amp.Master, value)
		case "bass":
			return setIntValue(&s.Amp.Bass, value)
		case "middle":
			return setIntValue(&s.Amp.Middle, value)
		case "treble":
			return setIntValue(&s.Amp.Treble, value)
		}
	case "cab":
		if field == "model" {
			return setStringValue(&s.Cab.Model, value)
		}
	case "compressor":
		switch field {
		case "on":
			return setBoolValue(&s.Compressor.On, value)
		case "kind":
			return setStringValue(&s.Compressor.Kind, value)
		case "sustain":
			return setIntValue(&s.Compressor.Sustain, value)
		case "output":
			return setIntValue(&s.Compressor.Output, value)
		case "threshold":
			return setIntValue(&s.Compressor.Threshold, value)
		case "attack":
			return setIntValue(&s.Compressor.Attack, value)
		case "release":
			return setIntValue(&s.Compressor.Release, value)
		case "ratio":
			return setStringValue(&s.Compressor.Ratio, value)
		case "knee":
			return setStringValue(&s.Compressor.Knee, value)
		}
	case "modulation":
		switch field {
		case "on":
			return setBoolValue(&s.Modulation.On, value)
		case "kind":
			return setStringValue(&s.Modulation.Kind, value)
		case "speed":
			return setIntValue(&s.Modulation.Speed, value)
		case "depth":
			return setIntValue(&s.Modulation.Depth, value)
		case "mix":
			return setIntValue(&s.Modulation.Mix, value)
		case "manual":
			return setIntValue(&s.Modulation.Manual, value)
		case "feedback":
			return setIntValue(&s.Modulation.Feedback, value)
		case "spread":
			return setIntValue(&s.Modulation.Spread, value)
		case "freq":
			return setIntValue(&s.Modulation.Freq, value)
		}
	case "delay":
		switch field {
		case "on":
			return setBoolValue(&s.Delay.On, value)
		case "time":
			return setIntValue(&s.Delay.Time, value)
		case "feedback":
			return setIntValue(&s.Delay.Feedback, value)
		case "high_cut":
			return setIntValue(&s.Delay.HighCut, value)
		case "low_cut":
			return setIntValue(&s.Delay.LowCut, value)
		case "level":
			return setIntValue(&s.Delay.Level, value)
		}
	case "reverb":
		switch field {
		case "on":
			return setBoolValue(&s.Reverb.On, value)
		case "kind":
			return setStringValue(&s.Reverb.Kind, value)
		case "time":
			return setIntValue(&s.Reverb.Time, value)
		case "pre":
			return setIntValue(&s.Reverb.Pre, value)
		case "low_cut":
			return setIntValue(&s.Reverb.LowCut, value)
		case "high_cut":
			return setIntValue(&s.Reverb.HighCut, value)
		case "high_ratio":
			return setIntValue(&s.Reverb.HighRatio, value)
		case "low_ratio":
			return setIntValue(&s.Reverb.LowRatio, value)
		case "level":
			return setIntValue(&s.Reverb.Level, value)
		case "reverb":
			return setIntValue(&s.Reverb.Reverb, value)
		case "filter":
			return setIntValue(&s.Reverb.Filter, value)
		}
	case "gate":
		switch field {
		case "on":
			return setBoolValue(&s.Gate.On, value)
		case "threshold":
			return setIntValue(&s.Gate.Threshold, value)
		case "release":
			return setIntValue(&s.Gate.Release, value)
		}
	default:
		return fmt.Errorf("unknown parameter group: %s", group)
	}
	return fmt.Errorf("unknown parameter: %s", field)
}

func setIntValue(dst **int, value any) error {
	switch v := value.(type) {
	case int:
		*dst = intp(v)
	case float64:
		*dst = intp(int(v))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("expected an integer value, got %q", v)
		}
		*dst = intp(n)
	default:
		return fmt.Errorf("expected an integer value, got %T", value)
	}
	return nil
}

func setBoolValue(dst **bool, value any) error {
	switch v := value.(type) {
	case bool:
		*dst = boolp(v)
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "true", "1":
			*dst = boolp(true)
		case "off", "false", "0":
			*dst = boolp(false)
		default:
			return fmt.Errorf("expected on/off, got %q", v)
		}
	default:
		return fmt.Errorf("expected on/off, got %T", value)
	}
	return nil
}

func setStringValue(dst **string, value any) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected a string value, got %T", value)
	}
	*dst = stringp(v)
	return nil
}
