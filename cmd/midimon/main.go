// midimon is a live terminal monitor for MIDI input ports: raw bytes on
// the wire, the parsed messages, and any protocol errors the stream
// carries.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/kevmo314/go-midi/pkg/messages"
	"github.com/kevmo314/go-midi/pkg/wire"
)

type monitor struct {
	app    *tview.Application
	msgs   *tview.TextView
	events *tview.TextView
	parser *wire.Parser
	stop   func()
}

func (mon *monitor) StreamEvent(event error, offset int64) {
	fmt.Fprintf(mon.events, "[red]byte %d: %v[-]\n", offset, event)
}

func (mon *monitor) feed(raw []byte) {
	ts := time.Now().Format("15:04:05.000")
	for _, b := range raw {
		m, _ := mon.parser.Feed(b)
		if m.Kind() == messages.KindInvalid {
			continue
		}
		if m.Kind() == messages.KindSysEx {
			fmt.Fprintf(mon.msgs, "[gray]%s[-] [yellow]% 02X[-] SysEx % 02X\n", ts, raw, m.Data())
			continue
		}
		fmt.Fprintf(mon.msgs, "[gray]%s[-] [yellow]% 02X[-] %v\n", ts, raw, m)
	}
}

func (mon *monitor) attach(in drivers.In) error {
	if mon.stop != nil {
		mon.stop()
		mon.stop = nil
	}
	mon.parser.Reset()
	mon.msgs.Clear()
	fmt.Fprintf(mon.events, "listening on %s\n", in.String())

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		raw := msg.Bytes()
		mon.app.QueueUpdateDraw(func() { mon.feed(raw) })
	}, gomidi.UseSysEx(), gomidi.UseActiveSense(), gomidi.UseTimeCode())
	if err != nil {
		return err
	}
	mon.stop = stop
	return nil
}

func main() {
	defer gomidi.CloseDriver()

	app := tview.NewApplication()

	mon := &monitor{app: app}
	mon.msgs = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	mon.msgs.SetBorder(true).SetTitle("Messages")
	mon.events = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	mon.events.SetBorder(true).SetTitle("Events")
	mon.parser = wire.NewParser(
		messages.NewSysExBuffer(make([]byte, 4096)),
		wire.WithDiagnostics(mon),
	)

	ports := tview.NewList().ShowSecondaryText(false)
	ports.SetBorder(true).SetTitle("Input Ports")
	ins := gomidi.GetInPorts()
	if len(ins) == 0 {
		log.Fatal("no MIDI input ports found")
	}
	for _, in := range ins {
		in := in
		ports.AddItem(in.String(), "", 0, func() {
			if err := mon.attach(in); err != nil {
				fmt.Fprintf(mon.events, "[red]%s: %v[-]\n", in.String(), err)
			}
		})
	}

	flex := tview.NewFlex().
		AddItem(ports, 0, 1, true).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(mon.msgs, 0, 3, false).
			AddItem(mon.events, 0, 1, false), 0, 3, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			app.Stop()
			return nil
		}
		return event
	})

	if err := app.SetRoot(flex, true).Run(); err != nil {
		log.Fatalf("running ui: %v", err)
	}
	if mon.stop != nil {
		mon.stop()
	}
}
