package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kevmo314/go-midi/pkg/messages"
)

// apiMessage is the JSON shape of one MIDI message. Kind selects which
// of the remaining fields are meaningful, mirroring the message model's
// accessors.
type apiMessage struct {
	Kind       string `json:"kind"`
	Channel    uint8  `json:"channel,omitempty"`
	Key        uint8  `json:"key,omitempty"`
	Velocity   uint8  `json:"velocity,omitempty"`
	Controller uint8  `json:"controller,omitempty"`
	Value      uint8  `json:"value,omitempty"`
	Program    uint8  `json:"program,omitempty"`
	Pressure   uint8  `json:"pressure,omitempty"`
	Bend       uint16 `json:"bend,omitempty"`
	Beats      uint16 `json:"beats,omitempty"`
	Song       uint8  `json:"song,omitempty"`
	Data       string `json:"data,omitempty"` // SysEx payload, hex
}

func toAPI(m messages.Message) apiMessage {
	am := apiMessage{Kind: m.Kind().String()}
	switch m.Kind() {
	case messages.KindNoteOff, messages.KindNoteOn:
		am.Channel, am.Key, am.Velocity = m.Channel(), m.Key(), m.Velocity()
	case messages.KindPolyPressure:
		am.Channel, am.Key, am.Pressure = m.Channel(), m.Key(), m.Pressure()
	case messages.KindControlChange:
		am.Channel, am.Controller, am.Value = m.Channel(), m.Controller(), m.Value()
	case messages.KindProgramChange:
		am.Channel, am.Program = m.Channel(), m.Program()
	case messages.KindChannelPressure:
		am.Channel, am.Pressure = m.Channel(), m.Pressure()
	case messages.KindPitchBend:
		am.Channel, am.Bend = m.Channel(), m.Bend()
	case messages.KindQuarterFrame:
		am.Value = m.QuarterFrameValue()
	case messages.KindSongPosition:
		am.Beats = m.Beats()
	case messages.KindSongSelect:
		am.Song = m.Song()
	case messages.KindSysEx:
		am.Data = strings.ToUpper(hex.EncodeToString(m.Data()))
	}
	return am
}

func fromAPI(am apiMessage) (messages.Message, error) {
	switch strings.ToLower(am.Kind) {
	case "noteoff":
		return messages.NoteOff(am.Channel, am.Key, am.Velocity)
	case "noteon":
		return messages.NoteOn(am.Channel, am.Key, am.Velocity)
	case "polypressure":
		return messages.PolyPressure(am.Channel, am.Key, am.Pressure)
	case "controlchange":
		return messages.ControlChange(am.Channel, am.Controller, am.Value)
	case "programchange":
		return messages.ProgramChange(am.Channel, am.Program)
	case "channelpressure":
		return messages.ChannelPressure(am.Channel, am.Pressure)
	case "pitchbend":
		return messages.PitchBend(am.Channel, am.Bend)
	case "quarterframe":
		return messages.QuarterFrame(am.Value)
	case "songposition":
		return messages.SongPosition(am.Beats)
	case "songselect":
		return messages.SongSelect(am.Song)
	case "tunerequest":
		return messages.TuneRequest(), nil
	case "timingclock":
		return messages.TimingClock(), nil
	case "start":
		return messages.Start(), nil
	case "continue":
		return messages.Continue(), nil
	case "stop":
		return messages.Stop(), nil
	case "activesensing":
		return messages.ActiveSensing(), nil
	case "systemreset":
		return messages.SystemReset(), nil
	case "sysex":
		payload, err := hex.DecodeString(am.Data)
		if err != nil {
			return messages.Message{}, err
		}
		return messages.SysEx(payload)
	}
	return messages.Message{}, fmt.Errorf("unknown kind %q", am.Kind)
}
