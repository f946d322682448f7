package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avelara/beacon/internal/cli/formatter"
	"github.com/avelara/beacon/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const maxFeedLines = 50

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard that follows updates from all clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newWatchModel(app)
			p := tea.NewProgram(m, tea.WithAltScreen())

			// Relay bus events into the program; drop the subscriptions when
			// the view exits so a later watch does not double-deliver.
			unsubs := []func(){
				app.Bus.OnUpdate(func(in *domain.Initiative) { p.Send(busUpdateMsg{in: in}) }),
				app.Bus.OnCreate(func(in *domain.Initiative) { p.Send(busCreateMsg{in: in}) }),
				app.Bus.OnCommentAdded(func(c domain.Comment) { p.Send(busCommentMsg{c: c}) }),
				app.Bus.OnNotification(func(n *domain.Notification) { p.Send(busNoteMsg{n: n}) }),
			}
			defer func() {
				for _, u := range unsubs {
					u()
				}
			}()

			_, err := p.Run()
			return err
		},
	}
}

type busUpdateMsg struct{ in *domain.Initiative }
type busCreateMsg struct{ in *domain.Initiative }
type busCommentMsg struct{ c domain.Comment }
type busNoteMsg struct{ n *domain.Notification }

type watchKeyMap struct {
	Quit key.Binding
}

var watchKeys = watchKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

type watchModel struct {
	app    *App
	items  []*domain.Initiative
	feed   viewport.Model
	events []string
	keys   watchKeyMap
	width  int
	ready  bool
}

func newWatchModel(app *App) *watchModel {
	items, _ := app.Initiatives.List(context.Background(), false)
	return &watchModel{app: app, items: items, keys: watchKeys}
}

func (m *watchModel) Init() tea.Cmd {
	return nil
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		feedHeight := msg.Height/3 - 2
		if feedHeight < 3 {
			feedHeight = 3
		}
		if !m.ready {
			m.feed = viewport.New(msg.Width, feedHeight)
			m.ready = true
		} else {
			m.feed.Width = msg.Width
			m.feed.Height = feedHeight
		}
		m.refreshFeed()

	case busUpdateMsg:
		m.refreshItems()
		m.pushEvent(fmt.Sprintf("%s updated", msg.in.Title))

	case busCreateMsg:
		m.refreshItems()
		m.pushEvent(fmt.Sprintf("%s created", msg.in.Title))

	case busCommentMsg:
		m.pushEvent(fmt.Sprintf("%s commented: %s", msg.c.AuthorID, msg.c.Body))

	case busNoteMsg:
		m.pushEvent(msg.n.Message)
	}

	var cmd tea.Cmd
	if m.ready {
		m.feed, cmd = m.feed.Update(msg)
	}
	return m, cmd
}

func (m *watchModel) refreshItems() {
	items, err := m.app.Initiatives.List(context.Background(), false)
	if err == nil {
		m.items = items
	}
}

func (m *watchModel) pushEvent(text string) {
	line := formatter.Dim(time.Now().Format("15:04:05")) + " " + text
	m.events = append(m.events, line)
	if len(m.events) > maxFeedLines {
		m.events = m.events[len(m.events)-maxFeedLines:]
	}
	m.refreshFeed()
}

func (m *watchModel) refreshFeed() {
	if !m.ready {
		return
	}
	m.feed.SetContent(strings.Join(m.events, "\n"))
	m.feed.GotoBottom()
}

func (m *watchModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.Header("Initiatives"))
	b.WriteString("\n\n")
	if len(m.items) == 0 {
		b.WriteString(formatter.Dim("No active initiatives.") + "\n")
	} else {
		b.WriteString(formatter.FormatInitiativeList(m.items))
	}
	b.WriteString("\n")
	b.WriteString(formatter.Header("Activity"))
	b.WriteString("\n")
	if m.ready {
		b.WriteString(m.feed.View())
	}
	b.WriteString("\n" + formatter.Dim("q to quit"))
	return b.String()
}
