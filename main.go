package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	const nameHint = "thr"

	if len(os.Args) < 2 {
		log.Println("exiting: no command specified (monitor, view, dump, write, rename, mcp)")
		return
	}

	// File conversion needs no device.
	if os.Args[1] == "dump" {
		dumpFiles(os.Args[2:])
		return
	}

	log.Println("Available MIDI inputs:")
	log.Print(midi.GetInPorts().String())

	inPort, outPort, err := findPorts(nameHint)
	if err != nil {
		log.Fatalf("could not find THR MIDI ports: %v", err)
	}

	thr, closer, err := OpenTHR(inPort, outPort)
	if err != nil {
		log.Fatalf("failed to open THR ports: %v", err)
	}
	defer closer()

	switch os.Args[1] {
	case "monitor":
		monitorTHR(thr)
	case "view":
		viewCurrentSettings(thr)
	case "write":
		writeConfigFiles(thr, os.Args[2:])
	case "rename":
		if len(os.Args) < 3 {
			log.Fatal("rename requires the new settings name")
		}
		renameCurrentSettings(thr, os.Args[2])
	case "mcp":
		runMCP(NewController(thr))
	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}

func findPorts(nameFragment string) (drivers.In, drivers.Out, error) {
	lower := strings.ToLower(nameFragment)

	var inPort drivers.In
	for _, in := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(in.String()), lower) {
			inPort = in
			break
		}
	}
	if inPort == nil {
		return nil, nil, fmt.Errorf("no MIDI input contains %q", nameFragment)
	}

	for _, out := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(out.String()), lower) {
			return inPort, out, nil
		}
	}
	return nil, nil, fmt.Errorf("no MIDI output contains %q", nameFragment)
}

// monitorTHR prints recognized THR traffic: the heartbeat model name
// once, settings dumps as text, and anything else as hex.
func monitorTHR(thr *THR) {
	model := ""
	for {
		msg := thr.nextSysEx()
		if msg == nil {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if heartbeat := FindHeartbeatModel(msg); heartbeat != "" {
			if model == "" {
				model = heartbeat
				log.Println("Model", model)
			}
			continue
		}
		if block := DetectSettingsDump(msg); block != nil {
			printSettingsBlock(block)
			continue
		}
		log.Printf("unrecognized % X", msg)
	}
}

func viewCurrentSettings(thr *THR) {
	ctrl := NewController(thr)
	live, err := ctrl.RefreshFromDevice(5 * time.Second)
	if err != nil {
		log.Fatalf("failed to read settings: %v", err)
	}
	for _, line := range ToTextSettings(live) {
		fmt.Println(line)
	}
}

func writeConfigFiles(thr *THR, filenames []string) {
	if len(filenames) == 0 {
		log.Fatal("write requires at least one settings text file")
	}
	for _, filename := range filenames {
		raw, err := os.ReadFile(filename)
		if err != nil {
			log.Fatalf("failed to read %s: %v", filename, err)
		}
		settings := FromTextSettings(strings.Split(string(raw), "\n"))
		if err := thr.WriteBytes(BuildSettingsDump(EncodeSettings(settings))); err != nil {
			log.Fatalf("failed to send %s: %v", filename, err)
		}
		log.Println("Sent", filename)
	}
}

func renameCurrentSettings(thr *THR, newName string) {
	ctrl := NewController(thr)
	if _, err := ctrl.RefreshFromDevice(5 * time.Second); err != nil {
		log.Fatalf("failed to read settings: %v", err)
	}
	if err := ctrl.SetParam("name", strings.TrimSpace(newName)); err != nil {
		log.Fatalf("failed to stage name: %v", err)
	}
	if _, err := ctrl.ApplyStaged(); err != nil {
		log.Fatalf("failed to write settings: %v", err)
	}
	log.Println("Renamed current settings to", newName)
}

// dumpFiles converts .syx or raw parameter-block files into text
// settings.
func dumpFiles(filenames []string) {
	if len(filenames) == 0 {
		log.Fatal("dump requires at least one input file")
	}
	for _, filename := range filenames {
		raw, err := os.ReadFile(filename)
		if err != nil {
			log.Fatalf("failed to read %s: %v", filename, err)
		}
		found := false
		for _, frame := range ExtractSysEx(raw) {
			if block := DetectSettingsDump(frame); block != nil {
				printSettingsBlock(block)
				found = true
			}
		}
		if !found && len(raw) == SettingsSize {
			printSettingsBlock(raw)
			found = true
		}
		if !found {
			fmt.Println("No THR SysEx found in", filename)
		}
	}
}

func printSettingsBlock(block []byte) {
	settings, err := DecodeSettings(block)
	if err != nil {
		log.Printf("failed to decode settings block: %v", err)
		return
	}
	for _, line := range ToTextSettings(settings) {
		fmt.Println(line)
	}
}
