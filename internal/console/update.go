package console

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/backdoor-game/client/internal/protocol"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.manager.Disconnect("quit")
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case ConnStatusMsg:
		m.connected = msg.Connected
		if msg.Connected {
			return m.append("* Connected."), nil
		}
		return m.append("* Disconnected."), nil

	case ConnErrorMsg:
		return m.append("! " + msg.Payload.Message), nil

	case FrameMsg:
		return m.append(renderFrame(msg.Frame)), nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if line == "" {
		return m, nil
	}
	if line == "/quit" || line == "/exit" {
		m.manager.Disconnect("quit")
		return m, tea.Quit
	}

	m = m.append(promptStyle.Render("> " + line))

	command, payload, err := parseInput(line)
	if err != nil {
		return m.append(errorStyle.Render(err.Error())), nil
	}
	return m, m.sendCommand(command, payload)
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	// Header, input line, and their borders.
	chromeHeight := 4
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = newViewport(msg.Width, vpHeight)
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.input.Width = msg.Width - 4
	return m
}

// append adds a line to the transcript and keeps the viewport pinned to
// the bottom.
func (m Model) append(line string) Model {
	m.lines = append(m.lines, line)
	if m.ready {
		m.viewport.SetContent(strings.Join(m.lines, "\n"))
		m.viewport.GotoBottom()
	}
	return m
}

// renderFrame turns a server frame into transcript text.
func renderFrame(f protocol.Frame) string {
	switch f.Type {
	case protocol.FrameWelcome:
		p, err := protocol.DecodePayload[protocol.WelcomePayload](f)
		if err != nil {
			return rawFrame(f)
		}
		return systemStyle.Render(p.Message)

	case protocol.FrameDescription:
		p, err := protocol.DecodePayload[protocol.DescriptionPayload](f)
		if err != nil {
			return rawFrame(f)
		}
		return narrativeStyle.Render(p.Description)

	case protocol.FrameDialogue:
		p, err := protocol.DecodePayload[protocol.DialoguePayload](f)
		if err != nil {
			return rawFrame(f)
		}
		return speakerStyle.Render(p.Speaker+":") + " " + narrativeStyle.Render(p.Text)

	case protocol.FrameActionResult:
		p, err := protocol.DecodePayload[protocol.ActionResultPayload](f)
		if err != nil {
			return rawFrame(f)
		}
		return narrativeStyle.Render(p.Result)

	case protocol.FrameStateUpdate:
		// State snapshots are not narrated.
		return systemStyle.Render("(your situation has changed)")

	case protocol.FrameError:
		p, err := protocol.DecodePayload[protocol.ErrorPayload](f)
		if err != nil {
			return rawFrame(f)
		}
		return errorStyle.Render(p.Message)

	default:
		return rawFrame(f)
	}
}

func rawFrame(f protocol.Frame) string {
	return systemStyle.Render(fmt.Sprintf("[%s] %s", f.Type, string(f.Payload)))
}
