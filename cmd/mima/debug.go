package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"mima/mima"
	"mima/word"
)

type debugModel struct {
	machine *mima.Machine
	last    mima.MicrocycleSummary
	err     error
}

// Init loads nothing further - the machine is already loaded by the
// caller before the program starts.
func (m debugModel) Init() tea.Cmd {
	return nil
}

func (m debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case " ", "j":
			summary, ok := m.machine.StepMicrocycle()
			if !ok {
				return m, nil
			}
			m.last = summary
		case "J":
			for i := 0; i < 12; i++ {
				summary, ok := m.machine.StepMicrocycle()
				if !ok {
					break
				}
				m.last = summary
			}
		}
	}
	return m, nil
}

func (m debugModel) registers() string {
	a := m.machine.Arithmetic
	c := m.machine.Control
	mem := m.machine.Memory
	return fmt.Sprintf(`
uc: %2d  run: %v
ACC: %s
  X: %s
  Y: %s
  Z: %s
IAR: %s
 IR: %s
SAR: %s
SIR: %s
`,
		c.Counter(), bool(c.Run),
		a.ACC, a.X, a.Y, a.Z,
		c.IAR, c.IR,
		mem.SAR, mem.SIR,
	)
}

func (m debugModel) memoryPage(start word.Word) string {
	s := fmt.Sprintf("%08X | ", uint32(start))
	for i := word.Word(0); i < 8; i++ {
		addr := start + i
		w := m.machine.Memory.Peek(addr)
		if addr == m.machine.Control.IAR {
			s += fmt.Sprintf("[%s] ", w)
		} else {
			s += fmt.Sprintf(" %s  ", w)
		}
	}
	return s
}

func (m debugModel) memoryTable() string {
	base := (uint32(m.machine.Control.IAR) / 8) * 8
	var rows []string
	for i := -2; i <= 2; i++ {
		row := int64(base) + int64(i)*8
		if row < 0 {
			continue
		}
		rows = append(rows, m.memoryPage(word.Word(row)))
	}
	return strings.Join(rows, "\n")
}

func (m debugModel) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.memoryTable(),
			m.registers(),
		),
		"",
		spew.Sdump(m.last.Descriptor),
	)
}

// Debug assembles src, loads it, and runs an interactive terminal UI over
// the resulting machine: space/j advances one microcycle, J advances a
// full instruction cycle, q quits.
func Debug(src string) error {
	m := mima.New()
	if _, err := m.Load(src); err != nil {
		return err
	}

	result, err := tea.NewProgram(debugModel{machine: m}).Run()
	if err != nil {
		return err
	}
	if final, ok := result.(debugModel); ok && final.err != nil {
		return final.err
	}
	return nil
}
