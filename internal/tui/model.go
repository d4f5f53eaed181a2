// Package tui browses the scenes of a directory in the terminal.
package tui

import (
	"fmt"
	"os"
	"strings"

	"scenefuse/internal/scene"
	"scenefuse/internal/tui/components"
	"scenefuse/internal/tui/messages"
	"scenefuse/internal/tui/styles"
	"scenefuse/pkg/types"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

type viewMode int

const (
	sceneView viewMode = iota
	layerView
)

type sceneItem struct {
	name   string
	layers int
}

func (i sceneItem) Title() string       { return i.name }
func (i sceneItem) Description() string { return fmt.Sprintf("%d layers", i.layers) }
func (i sceneItem) FilterValue() string { return i.name }

type layerItem struct {
	name string
	path string
	size string
}

func (i layerItem) Title() string { return i.name }
func (i layerItem) Description() string {
	if i.size == "" {
		return i.path
	}
	return i.size + "  " + i.path
}
func (i layerItem) FilterValue() string { return i.name }

// Model lists the scenes found below a root; enter shows the layers of the
// selected scene, esc goes back and q quits.
type Model struct {
	grouper  *scene.Grouper
	root     string
	grouping types.Grouping

	scenes list.Model
	layers list.Model
	status *components.StatusBar

	mode    viewMode
	current string
	err     error
	width   int
	height  int
}

func New(g *scene.Grouper, root string) *Model {
	scenes := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	scenes.Title = "Scenes in " + root
	scenes.Styles.Title = styles.Theme.Title

	layers := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	layers.Styles.Title = styles.Theme.Title

	return &Model{
		grouper: g,
		root:    root,
		scenes:  scenes,
		layers:  layers,
		status:  components.NewStatusBar(),
		mode:    sceneView,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	m.status.SetLoading(true)
	m.status.SetText("Scanning " + m.root)
	return tea.Batch(m.scan(), m.status.Tick())
}

func (m *Model) scan() tea.Cmd {
	g, root := m.grouper, m.root
	return func() tea.Msg {
		grouping, err := g.ScanDirectory(root)
		return messages.ScanCompleteMsg{Grouping: grouping, Err: err}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case messages.ScanCompleteMsg:
		m.status.SetLoading(false)
		if msg.Err != nil {
			m.err = msg.Err
			m.status.SetError("Scan failed: " + msg.Err.Error())
			return m, nil
		}
		m.err = nil
		m.setGrouping(msg.Grouping)
		return m, nil

	case messages.ErrorMsg:
		m.err = msg.Err
		m.status.SetError(msg.Err.Error())
		return m, nil

	case tea.KeyMsg:
		if m.active().FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if m.mode == sceneView {
				if item, ok := m.scenes.SelectedItem().(sceneItem); ok {
					m.showLayers(item.name)
				}
				return m, nil
			}
		case "esc", "backspace":
			if m.mode == layerView {
				m.mode = sceneView
				m.current = ""
				return m, nil
			}
		case "r":
			m.status.SetLoading(true)
			m.status.SetText("Scanning " + m.root)
			return m, tea.Batch(m.scan(), m.status.Tick())
		}
	}

	var cmds []tea.Cmd
	if cmd := m.status.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	var cmd tea.Cmd
	if m.mode == sceneView {
		m.scenes, cmd = m.scenes.Update(msg)
	} else {
		m.layers, cmd = m.layers.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) active() *list.Model {
	if m.mode == layerView {
		return &m.layers
	}
	return &m.scenes
}

func (m *Model) resize() {
	h := m.height - 1
	if h < 0 {
		h = 0
	}
	m.scenes.SetSize(m.width, h)
	m.layers.SetSize(m.width, h)
}

func (m *Model) setGrouping(g types.Grouping) {
	m.grouping = g
	names := g.SceneNames()
	items := make([]list.Item, len(names))
	for i, name := range names {
		items[i] = sceneItem{name: name, layers: len(g[name])}
	}
	m.scenes.SetItems(items)
	m.status.SetText(fmt.Sprintf("%d scenes, %d files", len(g), g.FileCount()))

	if m.mode == layerView {
		if _, ok := g[m.current]; ok {
			m.showLayers(m.current)
		} else {
			m.mode = sceneView
			m.current = ""
		}
	}
}

func (m *Model) showLayers(name string) {
	names := m.grouping.LayerNames(name)
	items := make([]list.Item, len(names))
	for i, layer := range names {
		path, _ := m.grouping.Lookup(name, layer)
		item := layerItem{name: layer, path: path}
		if info, err := os.Stat(path); err == nil {
			item.size = humanize.Bytes(uint64(info.Size()))
		}
		items[i] = item
	}
	m.layers.SetItems(items)
	m.layers.ResetSelected()
	m.layers.Title = "Layers of " + name
	m.current = name
	m.mode = layerView
}

// View implements tea.Model
func (m *Model) View() string {
	var b strings.Builder
	if m.mode == layerView {
		b.WriteString(m.layers.View())
	} else {
		b.WriteString(m.scenes.View())
	}
	b.WriteString("\n")
	b.WriteString(m.status.View())
	return b.String()
}

// Scene returns the scene whose layers are shown, or "" in the scene list.
func (m *Model) Scene() string {
	return m.current
}

// Err returns the last scan error.
func (m *Model) Err() error {
	return m.err
}

// Run starts the browser on the terminal.
func Run(g *scene.Grouper, root string) error {
	p := tea.NewProgram(New(g, root), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
