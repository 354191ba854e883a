// midicat converts between the textual, serial and USB-MIDI packet
// representations of MIDI streams on stdin/stdout.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/kevmo314/go-midi/pkg/messages"
	"github.com/kevmo314/go-midi/pkg/packets"
	"github.com/kevmo314/go-midi/pkg/wire"
)

var (
	bufferSize    int
	runningStatus bool
	cable         uint8
	rawInput      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midicat",
	Short: "Convert MIDI streams between hex bytes, packets and text",
	Long: `midicat converts between representations of a MIDI stream:

  decode   hex serial bytes -> one parsed message per line
  encode   message lines -> hex serial bytes
  pack     hex serial bytes -> USB-MIDI event packets
  unpack   USB-MIDI event packets -> hex serial bytes
  ports    list the OS MIDI ports

Protocol errors in the input stream are reported on stderr; the stream
continues past them.

Examples:
  echo "90 40 7F" | midicat decode
  echo "noteon 0 64 127" | midicat encode
  echo "F0 01 02 03 F7" | midicat pack --cable 2`,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&bufferSize, "sysex-buffer", 1024, "SysEx buffer capacity in bytes")
	rootCmd.PersistentFlags().BoolVar(&rawInput, "raw", false, "read raw bytes instead of hex text")

	encodeCmd.Flags().BoolVar(&runningStatus, "running-status", false, "elide repeated channel-voice status bytes")
	packCmd.Flags().Uint8Var(&cable, "cable", 0, "virtual cable number (0-15)")

	rootCmd.AddCommand(decodeCmd, encodeCmd, packCmd, unpackCmd, portsCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Parse a serial byte stream into messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := inputBytes(args)
		if err != nil {
			return err
		}
		p := wire.NewParser(newBuffer(), wire.WithDiagnostics(streamLogger{}))
		for _, b := range data {
			m, _ := p.Feed(b)
			if m.Kind() != messages.KindInvalid {
				printMessage(m)
			}
		}
		return nil
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode message lines into serial bytes",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []wire.EncoderOption
		if runningStatus {
			opts = append(opts, wire.WithRunningStatus())
		}
		e := wire.NewEncoder(opts...)

		var out []byte
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			fields := strings.Fields(sc.Text())
			if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			m, err := parseMessage(fields)
			if err != nil {
				return fmt.Errorf("%q: %w", sc.Text(), err)
			}
			if out, err = e.Append(out, m); err != nil {
				return err
			}
		}
		if err := sc.Err(); err != nil {
			return err
		}
		fmt.Printf("% 02X\n", out)
		return nil
	},
}

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Convert serial bytes into USB-MIDI event packets",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := inputBytes(args)
		if err != nil {
			return err
		}
		p := wire.NewParser(newBuffer(), wire.WithDiagnostics(streamLogger{}))
		buf := make([]packets.Packet, 1)
		for _, b := range data {
			m, _ := p.Feed(b)
			if m.Kind() == messages.KindInvalid {
				continue
			}
			if need := packets.PacketCount(m); need > len(buf) {
				buf = make([]packets.Packet, need)
			}
			n, err := packets.Encode(buf, cable, m)
			if err != nil {
				return err
			}
			for _, pkt := range buf[:n] {
				fmt.Printf("%02X%02X%02X%02X\n", pkt[0], pkt[1], pkt[2], pkt[3])
			}
		}
		return nil
	},
}

var unpackCmd = &cobra.Command{
	Use:   "unpack",
	Short: "Convert USB-MIDI event packets into serial bytes",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := inputBytes(args)
		if err != nil {
			return err
		}
		if len(data)%4 != 0 {
			return fmt.Errorf("packet stream length %d is not a multiple of 4", len(data))
		}
		d := packets.NewDecoder(
			packets.WithCableBuffer(cable, newBuffer()),
			packets.WithDiagnostics(packetLogger{}),
		)
		e := wire.NewEncoder()
		var out []byte
		for i := 0; i < len(data); i += 4 {
			m, _ := d.Decode(packets.Packet(data[i : i+4]))
			if m.Kind() == messages.KindInvalid {
				continue
			}
			if out, err = e.Append(out, m); err != nil {
				return err
			}
		}
		fmt.Printf("% 02X\n", out)
		return nil
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List the OS MIDI ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer gomidi.CloseDriver()
		fmt.Println("Inputs:")
		for _, in := range gomidi.GetInPorts() {
			fmt.Printf("  [%d] %s\n", in.Number(), in.String())
		}
		fmt.Println("Outputs:")
		for _, out := range gomidi.GetOutPorts() {
			fmt.Printf("  [%d] %s\n", out.Number(), out.String())
		}
		return nil
	},
}

func newBuffer() *messages.SysExBuffer {
	return messages.NewSysExBuffer(make([]byte, bufferSize))
}

// inputBytes reads the stream to convert: hex text from args or stdin,
// or raw bytes from stdin with --raw.
func inputBytes(args []string) ([]byte, error) {
	if len(args) > 0 {
		return parseHex(strings.Join(args, " "))
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}
	if rawInput {
		return data, nil
	}
	return parseHex(string(data))
}

func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ',' {
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}

func printMessage(m messages.Message) {
	if m.Kind() == messages.KindSysEx {
		fmt.Printf("SysEx % 02X\n", m.Data())
		return
	}
	fmt.Println(m)
}

// parseMessage builds a message from one line of the encode DSL, e.g.
// "noteon 0 64 127" or "sysex 7D 01 02".
func parseMessage(fields []string) (messages.Message, error) {
	n := func(i int) (uint8, error) {
		if i >= len(fields) {
			return 0, fmt.Errorf("missing argument %d", i)
		}
		v, err := strconv.ParseUint(fields[i], 0, 8)
		return uint8(v), err
	}
	n14 := func(i int) (uint16, error) {
		if i >= len(fields) {
			return 0, fmt.Errorf("missing argument %d", i)
		}
		v, err := strconv.ParseUint(fields[i], 0, 16)
		return uint16(v), err
	}
	three := func(build func(a, b, c uint8) (messages.Message, error)) (messages.Message, error) {
		a, err := n(1)
		if err != nil {
			return messages.Message{}, err
		}
		b, err := n(2)
		if err != nil {
			return messages.Message{}, err
		}
		c, err := n(3)
		if err != nil {
			return messages.Message{}, err
		}
		return build(a, b, c)
	}
	two := func(build func(a, b uint8) (messages.Message, error)) (messages.Message, error) {
		a, err := n(1)
		if err != nil {
			return messages.Message{}, err
		}
		b, err := n(2)
		if err != nil {
			return messages.Message{}, err
		}
		return build(a, b)
	}

	switch strings.ToLower(fields[0]) {
	case "noteoff":
		return three(messages.NoteOff)
	case "noteon":
		return three(messages.NoteOn)
	case "polypressure":
		return three(messages.PolyPressure)
	case "controlchange", "cc":
		return three(messages.ControlChange)
	case "programchange":
		return two(messages.ProgramChange)
	case "channelpressure":
		return two(messages.ChannelPressure)
	case "pitchbend":
		ch, err := n(1)
		if err != nil {
			return messages.Message{}, err
		}
		bend, err := n14(2)
		if err != nil {
			return messages.Message{}, err
		}
		return messages.PitchBend(ch, bend)
	case "quarterframe":
		v, err := n(1)
		if err != nil {
			return messages.Message{}, err
		}
		return messages.QuarterFrame(v)
	case "songposition":
		beats, err := n14(1)
		if err != nil {
			return messages.Message{}, err
		}
		return messages.SongPosition(beats)
	case "songselect":
		v, err := n(1)
		if err != nil {
			return messages.Message{}, err
		}
		return messages.SongSelect(v)
	case "tunerequest":
		return messages.TuneRequest(), nil
	case "clock":
		return messages.TimingClock(), nil
	case "start":
		return messages.Start(), nil
	case "continue":
		return messages.Continue(), nil
	case "stop":
		return messages.Stop(), nil
	case "activesensing":
		return messages.ActiveSensing(), nil
	case "reset":
		return messages.SystemReset(), nil
	case "sysex":
		payload, err := parseHex(strings.Join(fields[1:], " "))
		if err != nil {
			return messages.Message{}, err
		}
		return messages.SysEx(payload)
	}
	return messages.Message{}, fmt.Errorf("unknown message %q", fields[0])
}

type streamLogger struct{}

func (streamLogger) StreamEvent(event error, offset int64) {
	log.Printf("byte %d: %v", offset, event)
}

type packetLogger struct{}

func (packetLogger) PacketEvent(event error, cable uint8) {
	log.Printf("cable %d: %v", cable, event)
}
