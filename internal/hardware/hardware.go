package hardware

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/fatih/color"
)

// Signal is the per-zone low-stock output (an LED on the hub board).
// SetZoneLowStock must be idempotent; Release turns every output off.
type Signal interface {
	SetZoneLowStock(zone string, low bool)
	Release()
}

// Display is the single-line text output of a worker terminal (an LCD).
type Display interface {
	Show(text string)
	Clear()
}

// ConsoleLED renders LED state changes on a terminal
type ConsoleLED struct {
	mu    sync.Mutex
	out   io.Writer
	state map[string]bool
	on    *color.Color
	off   *color.Color
}

func NewConsoleLED(out io.Writer) *ConsoleLED {
	return &ConsoleLED{
		out:   out,
		state: make(map[string]bool),
		on:    color.New(color.FgRed, color.Bold),
		off:   color.New(color.FgGreen),
	}
}

func (l *ConsoleLED) SetZoneLowStock(zone string, low bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state[zone] = low
	if low {
		l.on.Fprintf(l.out, "[LED] zone %s ON (low stock)\n", zone)
	} else {
		l.off.Fprintf(l.out, "[LED] zone %s off\n", zone)
	}
}

func (l *ConsoleLED) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	zones := make([]string, 0, len(l.state))
	for zone := range l.state {
		zones = append(zones, zone)
	}
	sort.Strings(zones)
	for _, zone := range zones {
		l.state[zone] = false
	}
	fmt.Fprintf(l.out, "[LED] released %d outputs\n", len(zones))
}

// ConsoleDisplay prints what an LCD would show
type ConsoleDisplay struct {
	mu  sync.Mutex
	out io.Writer
	c   *color.Color
}

func NewConsoleDisplay(out io.Writer) *ConsoleDisplay {
	return &ConsoleDisplay{out: out, c: color.New(color.FgCyan)}
}

func (d *ConsoleDisplay) Show(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.c.Fprintf(d.out, "[LCD] %s\n", text)
}

func (d *ConsoleDisplay) Clear() {}

// Recorder keeps the last signal per zone and every displayed line, for tests
// and for running a hub without a board attached.
type Recorder struct {
	mu       sync.Mutex
	signals  map[string]bool
	lines    []string
	released bool
}

func NewRecorder() *Recorder {
	return &Recorder{signals: make(map[string]bool)}
}

func (r *Recorder) SetZoneLowStock(zone string, low bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals[zone] = low
}

func (r *Recorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for zone := range r.signals {
		r.signals[zone] = false
	}
	r.released = true
}

// LowStock returns the last value set for zone and whether one was ever set
func (r *Recorder) LowStock(zone string) (low, set bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	low, set = r.signals[zone]
	return low, set
}

func (r *Recorder) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

func (r *Recorder) Show(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
}

func (r *Recorder) Clear() {}

// Lines returns a copy of everything shown so far
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
