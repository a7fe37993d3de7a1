package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/angelsen/ry-tool/pkg/library"
)

// libraryItem adapts a registry search result to the bubbles list.
type libraryItem struct {
	result library.SearchResult
}

func (i libraryItem) Title() string { return i.result.Name }

func (i libraryItem) Description() string {
	desc := i.result.Info.Description
	if i.result.Info.Version != "" {
		if desc != "" {
			desc += " "
		}
		desc += "(v" + i.result.Info.Version + ")"
	}
	if desc == "" {
		desc = "no description"
	}
	return desc
}

func (i libraryItem) FilterValue() string {
	return i.result.Name + " " + i.result.Info.Description
}

// pickerModel is the interactive library selection shown when install
// is run without arguments.
type pickerModel struct {
	list   list.Model
	choice string
}

func newPickerModel(results []library.SearchResult) pickerModel {
	items := make([]list.Item, len(results))
	for i, result := range results {
		items[i] = libraryItem{result: result}
	}

	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, 0, 0)
	l.Title = "Select a library to install"
	l.Styles.Title = lipgloss.NewStyle().Bold(true)
	l.SetShowStatusBar(false)

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		// Keys are ignored while the filter input owns the keyboard.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(libraryItem); ok {
				m.choice = item.result.Name
			}
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}

// pickLibrary runs the picker and returns the chosen library name, or
// an empty string when the user dismisses it.
func pickLibrary(results []library.SearchResult) (string, error) {
	program := tea.NewProgram(newPickerModel(results), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("library picker failed: %w", err)
	}
	model, ok := final.(pickerModel)
	if !ok {
		return "", nil
	}
	return model.choice, nil
}
