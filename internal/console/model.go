package console

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/backdoor-game/client/internal/connection"
	"github.com/backdoor-game/client/internal/events"
	"github.com/backdoor-game/client/internal/protocol"
)

const sendTimeout = 30 * time.Second

// Messages delivered into the Bubble Tea program. Bus events arrive on
// the connection manager's goroutines; Forward translates them into
// these and hands them to Program.Send.

// FrameMsg carries one server frame.
type FrameMsg struct {
	Frame protocol.Frame
}

// ConnStatusMsg reports a connection state change.
type ConnStatusMsg struct {
	Connected bool
}

// ConnErrorMsg reports a connection-layer error event.
type ConnErrorMsg struct {
	Payload events.ErrorPayload
}

// Model is the Bubble Tea model for the game console.
type Model struct {
	manager *connection.Manager

	input    textinput.Model
	viewport viewport.Model
	lines    []string

	connected bool
	ready     bool
	width     int
	height    int
}

// NewModel creates the console model around a connection manager.
func NewModel(manager *connection.Manager) Model {
	input := textinput.New()
	input.Placeholder = "look around, use <item>, talk to <name>..."
	input.Prompt = "> "
	input.CharLimit = 256
	input.Focus()

	return Model{
		manager: manager,
		input:   input,
	}
}

// Forward subscribes to the bus and relays connection events into the
// program. Call it once, after tea.NewProgram, before Program.Run.
func Forward(bus *events.Bus, send func(tea.Msg)) {
	bus.On(events.Connected, func(any) {
		send(ConnStatusMsg{Connected: true})
	}, nil)
	bus.On(events.Disconnected, func(any) {
		send(ConnStatusMsg{Connected: false})
	}, nil)
	bus.On(events.Error, func(payload any) {
		if p, ok := payload.(events.ErrorPayload); ok {
			send(ConnErrorMsg{Payload: p})
		}
	}, nil)
	bus.On(events.Message, func(payload any) {
		if f, ok := payload.(protocol.Frame); ok {
			send(FrameMsg{Frame: f})
		}
	}, nil)
}

// Init implements tea.Model. The initial connect runs in the background;
// the outcome arrives as a ConnStatusMsg via the bus.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.connect())
}

func (m Model) connect() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		m.manager.Connect(ctx)
		return nil
	}
}

func (m Model) sendCommand(command string, payload any) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		m.manager.SendCommand(ctx, command, payload)
		return nil
	}
}
