package main

import (
	"bytes"
	"log"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Yamaha THR10 settings-dump frame: header, 256-byte parameter block,
// 7-bit checksum, EOX.
var thrDumpHeader = []byte{
	0xF0, 0x43, 0x7D, 0x00, 0x02, 0x0C,
	0x44, 0x54, 0x41, 0x31, 0x41, 0x6C, 0x6C, 0x50,
	0x00, 0x00, 0x7F, 0x7F,
}

// DumpSize is the full settings dump length on the wire.
const DumpSize = 18 + SettingsSize + 2

// requestSettingsMsg asks the THR10 to dump its current settings.
var requestSettingsMsg = []byte{0xF0, 0x43, 0x7D, 0x10, 0x41, 0x30, 0x01, 0xF7}

// heartbeatPrefix starts the periodic model-announcement SysEx.
var heartbeatPrefix = []byte{0xF0, 0x43, 0x7D, 0x60, 0x44, 0x54, 0x41, 0x31}

// BuildSettingsDump frames a parameter block as a full settings dump.
func BuildSettingsDump(block []byte) []byte {
	out := make([]byte, 0, DumpSize)
	out = append(out, thrDumpHeader...)
	out = append(out, block...)
	out = append(out, settingsChecksum(out[1:]), 0xF7)
	return out
}

// DetectSettingsDump returns a copy of the parameter block inside a
// settings dump, or nil when the message is not one. A 0x7F checksum is
// accepted as a wildcard, matching device behavior.
func DetectSettingsDump(msg []byte) []byte {
	if len(msg) != DumpSize || msg[len(msg)-1] != 0xF7 {
		return nil
	}
	if !bytes.Equal(msg[:len(thrDumpHeader)], thrDumpHeader) {
		return nil
	}
	checksum := msg[DumpSize-2]
	if checksum != 0x7F && checksum != settingsChecksum(msg[1:DumpSize-2]) {
		return nil
	}
	block := make([]byte, SettingsSize)
	copy(block, msg[len(thrDumpHeader):])
	return block
}

func settingsChecksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return -sum & 0x7F
}

// FindHeartbeatModel extracts the model name from a THR heartbeat
// message, or "" when the message is not one.
func FindHeartbeatModel(msg []byte) string {
	if len(msg) <= len(heartbeatPrefix) || !bytes.HasPrefix(msg, heartbeatPrefix) {
		return ""
	}
	var name []byte
	for _, b := range msg[len(heartbeatPrefix):] {
		if b < 0x20 || b > 0x7E {
			break
		}
		name = append(name, b)
	}
	return string(bytes.TrimSpace(name))
}

// ExtractSysEx scans raw bytes (typically a .syx file) for complete
// SysEx frames.
func ExtractSysEx(data []byte) [][]byte {
	var frames [][]byte
	for {
		start := bytes.IndexByte(data, 0xF0)
		if start < 0 {
			return frames
		}
		end := bytes.IndexByte(data[start:], 0xF7)
		if end < 0 {
			return frames
		}
		frame := make([]byte, end+1)
		copy(frame, data[start:start+end+1])
		frames = append(frames, frame)
		data = data[start+end+1:]
	}
}

// THR is the MIDI transport for one THR10. Incoming SysEx is buffered
// so the controller can poll for dumps.
type THR struct {
	out drivers.Out

	mu    sync.Mutex
	queue [][]byte
	stop  func()
}

// OpenTHR opens the output port and starts listening for SysEx on the
// input port. The returned closer stops the listener and releases both
// ports.
func OpenTHR(inPort drivers.In, outPort drivers.Out) (*THR, func(), error) {
	if err := outPort.Open(); err != nil {
		return nil, nil, err
	}

	t := &THR{out: outPort}
	stop, err := midi.ListenTo(inPort, func(msg midi.Message, _ int32) {
		if len(msg) > 0 && msg[0] == 0xF0 {
			t.mu.Lock()
			t.queue = append(t.queue, []byte(msg))
			t.mu.Unlock()
		}
	}, midi.UseSysEx(), midi.SysExBufferSize(2048))
	if err != nil {
		_ = outPort.Close()
		return nil, nil, err
	}
	t.stop = stop

	closer := func() {
		stop()
		_ = outPort.Close()
		drivers.Close()
	}
	log.Println("Opened THR MIDI ports", inPort.String(), "/", outPort.String())
	return t, closer, nil
}

// RequestCurrentSettings asks the device to dump its current settings.
func (t *THR) RequestCurrentSettings() error {
	return t.WriteBytes(requestSettingsMsg)
}

// ExtractDump pops buffered SysEx until it finds a settings dump and
// returns its parameter block; nil when none has arrived yet.
func (t *THR) ExtractDump() ([]byte, error) {
	for {
		msg := t.nextSysEx()
		if msg == nil {
			return nil, nil
		}
		if block := DetectSettingsDump(msg); block != nil {
			return block, nil
		}
	}
}

// WriteBytes transmits a raw SysEx payload.
func (t *THR) WriteBytes(payload []byte) error {
	if !t.out.IsOpen() {
		if err := t.out.Open(); err != nil {
			return err
		}
	}
	return t.out.Send(payload)
}

// nextSysEx pops the oldest buffered SysEx message, if any.
func (t *THR) nextSysEx() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.queue) == 0 {
		return nil
	}
	msg := t.queue[0]
	t.queue = t.queue[1:]
	return msg
}
