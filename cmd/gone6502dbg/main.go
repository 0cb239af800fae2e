// Command gone6502dbg is a single-step interactive debugger for the 6502
// core: it loads a program at a chosen offset, then lets the user step
// through it one instruction at a time while watching registers, flags, and
// a slice of memory around the program counter.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/hexile/gone6502/cpu"
	"github.com/hexile/gone6502/mem"
)

type model struct {
	chip    *cpu.Chip
	program []byte

	offset uint16 // base address the program was loaded at, for page rendering
	prevPC uint16
	err    error
}

// Init loads the program into memory at offset and points PC at it.
func (m model) Init() tea.Cmd {
	if err := m.chip.LoadExecutable(m.program, m.offset); err != nil {
		m.err = err
		return tea.Quit
	}
	m.chip.PC = m.offset
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case " ", "j":
			m.prevPC = m.chip.PC
			if err := m.chip.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}

		case "r":
			m.chip.Reset()
		}
	}
	return m, nil
}

// renderPage renders one 16-byte row of memory as a line, bracketing the
// byte PC currently points at.
func (m model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < 16; i++ {
		b := m.chip.Bus.ReadByte(start + i)
		if start+i == m.chip.PC {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) status() string {
	var flags string
	for _, f := range []cpu.Flag{
		cpu.Negative, cpu.Overflow, cpu.Unused, cpu.Break,
		cpu.Decimal, cpu.InterruptDisable, cpu.Zero, cpu.Carry,
	} {
		if m.chip.P.Get(f) {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	return fmt.Sprintf(`
PC: %04x (was %04x)
 A: %02x
 X: %02x
 Y: %02x
SP: %02x
N V _ B D I Z C
`,
		m.chip.PC, m.prevPC,
		m.chip.A, m.chip.X, m.chip.Y, m.chip.SP,
	) + flags
}

func (m model) pageTable() string {
	header := "page | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}

	rows := []string{header}
	offsets := []uint16{
		0, 16, 32, 48, 64,
		m.offset,
		m.offset + 16,
		m.offset + 32,
		m.offset + 48,
		m.offset + 64,
	}
	for _, addr := range offsets {
		rows = append(rows, m.renderPage(addr))
	}
	return strings.Join(rows, "\n")
}

func (m model) View() string {
	view := lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(cpu.Describe(m.chip.Bus.ReadByte(m.chip.PC))),
	)
	if m.err != nil {
		view += fmt.Sprintf("\nhalted: %v\n", m.err)
	}
	return view
}

func main() {
	path := flag.String("program", "", "path to a raw 6502 binary to load")
	offset := flag.Uint("offset", 0x8000, "address to load the program at")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: gone6502dbg -program <file> [-offset 0x8000]")
		os.Exit(2)
	}

	program, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("gone6502dbg: %v", err)
	}

	chip := cpu.New(mem.NewRam())
	m, err := tea.NewProgram(model{
		chip:    chip,
		program: program,
		offset:  uint16(*offset),
	}).Run()
	if err != nil {
		log.Fatalf("gone6502dbg: %v", err)
	}

	if final := m.(model); final.err != nil {
		fmt.Println("stopped:", final.err)
	}
}
