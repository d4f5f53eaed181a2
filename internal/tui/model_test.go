package tui

import (
	"errors"
	"testing"

	"scenefuse/internal/definition"
	"scenefuse/internal/scene"
	"scenefuse/internal/tui/messages"
	"scenefuse/pkg/testutils"
	"scenefuse/pkg/types"

	alsrt "github.com/alecthomas/assert"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, root string) *Model {
	t.Helper()
	def, err := definition.Select(definition.Default(), "")
	require.NoError(t, err)
	g, err := scene.New(def, scene.WithInclude("*.tif"))
	require.NoError(t, err)

	m := New(g, root)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowseScenesAndLayers(t *testing.T) {
	m := newTestModel(t, "/data")
	m.Update(messages.ScanCompleteMsg{Grouping: types.Grouping{
		"Scene1": {"DNA1": "/data/Scene1/DNA1.tif", "DNA2": "/data/Scene1/DNA2.tif"},
		"Scene2": {"DNA1": "/data/Batch/Scene2/DNA1.tif"},
	}})

	view := testutils.StripANSI(m.View())
	alsrt.Contains(t, view, "Scene1")
	alsrt.Contains(t, view, "Scene2")
	alsrt.Contains(t, view, "2 scenes, 3 files")
	alsrt.Equal(t, "", m.Scene())

	m.Update(key("enter"))
	alsrt.Equal(t, "Scene1", m.Scene(), "enter opens the selected scene")
	view = testutils.StripANSI(m.View())
	alsrt.Contains(t, view, "DNA1")
	alsrt.Contains(t, view, "DNA2")

	m.Update(key("esc"))
	alsrt.Equal(t, "", m.Scene(), "esc returns to the scene list")
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, "/data")
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	alsrt.True(t, ok, "q should quit")
}

func TestScanError(t *testing.T) {
	m := newTestModel(t, "/data")
	m.Update(messages.ScanCompleteMsg{Err: errors.New("boom")})
	alsrt.True(t, m.Err() != nil)
	alsrt.Contains(t, testutils.StripANSI(m.View()), "Scan failed: boom")
}

func TestRescanDropsVanishedScene(t *testing.T) {
	m := newTestModel(t, "/data")
	m.Update(messages.ScanCompleteMsg{Grouping: types.Grouping{"S1": {"DNA1": "/data/S1/DNA1.tif"}}})
	m.Update(key("enter"))
	alsrt.Equal(t, "S1", m.Scene())

	m.Update(messages.ScanCompleteMsg{Grouping: types.Grouping{"S2": {"DNA1": "/data/S2/DNA1.tif"}}})
	alsrt.Equal(t, "", m.Scene())
}

func TestScanCommand(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, "ROI1/Ir191.tif")

	m := newTestModel(t, root)
	msg, ok := m.scan()().(messages.ScanCompleteMsg)
	require.True(t, ok)
	alsrt.True(t, msg.Err == nil, "scan should succeed")
	alsrt.Equal(t, []string{"ROI1"}, msg.Grouping.SceneNames())
}

func TestLayerSizes(t *testing.T) {
	root := t.TempDir()
	testutils.WriteTree(t, root, "ROI1/Ir191.tif")

	m := newTestModel(t, root)
	m.Update(m.scan()())
	m.Update(key("enter"))
	alsrt.Equal(t, "ROI1", m.Scene())
	alsrt.Contains(t, testutils.StripANSI(m.View()), "4 B")
}
