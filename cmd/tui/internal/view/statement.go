package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/family"
	"github.com/MrJamesThe3rd/daycare/internal/statement"
)

type statementState int

const (
	statementStateSearch statementState = iota
	statementStatePick
	statementStateShow
)

type StatementModel struct {
	CommonModel
	familyService    *family.Service
	statementService *statement.Service
	appName          string

	state     statementState
	nameInput textinput.Model
	parents   []*family.Parent
	cursor    int
	text      string
	status    string
}

func NewStatementModel(common CommonModel, families *family.Service, statements *statement.Service, appName string) StatementModel {
	ti := textinput.New()
	ti.Placeholder = "Parent name"
	ti.Width = 40
	ti.Focus()

	return StatementModel{
		CommonModel:      common,
		familyService:    families,
		statementService: statements,
		appName:          appName,
		nameInput:        ti,
	}
}

func (m StatementModel) Title() string { return "Parent Statement" }

func (m StatementModel) ShortHelp() string {
	switch m.state {
	case statementStatePick:
		return "Up/Down: select | Enter: open | Esc: back"
	case statementStateShow:
		return "Esc: back"
	}

	return "Enter: search | Esc: back"
}

// Init opens a parent's own statement straight away.
func (m StatementModel) Init() tea.Cmd {
	if m.Actor.IsParent() {
		return m.buildCmd(*m.Actor.ParentID)
	}

	return textinput.Blink
}

func (m StatementModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case parentsFoundMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %s", apperr.Message(msg.err))
			return m, nil
		}

		switch len(msg.parents) {
		case 0:
			m.status = "No parent matches that name."
			return m, nil
		case 1:
			return m, m.buildCmd(msg.parents[0].ID)
		}

		m.parents = msg.parents
		m.cursor = 0
		m.status = ""
		m.state = statementStatePick
		m.nameInput.Blur()

		return m, nil

	case statementMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %s", apperr.Message(msg.err))
			return m, nil
		}

		m.text = msg.text
		m.status = ""
		m.state = statementStateShow

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		switch m.state {
		case statementStateSearch:
			if msg.Type == tea.KeyEnter {
				return m, m.searchCmd(m.nameInput.Value())
			}
		case statementStatePick:
			return m.updatePick(msg)
		case statementStateShow:
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)

	return m, cmd
}

func (m StatementModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == statementStateSearch || m.Actor.IsParent() {
		return m, Back
	}

	m.state = statementStateSearch
	m.text = ""
	m.status = ""
	m.nameInput.Focus()

	return m, nil
}

func (m StatementModel) updatePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(m.parents)-1 {
			m.cursor++
		}
	case tea.KeyEnter:
		return m, m.buildCmd(m.parents[m.cursor].ID)
	}

	return m, nil
}

func (m StatementModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	var s string

	switch m.state {
	case statementStateSearch:
		s = "Find parent:\n\n" + m.nameInput.View()
	case statementStatePick:
		var b strings.Builder

		b.WriteString("Select parent:\n\n")

		for i, p := range m.parents {
			cursor := " "
			if i == m.cursor {
				cursor = ">"
			}

			fmt.Fprintf(&b, "%s %s  %s\n", cursor, p.FullName(), p.Phone)
		}

		s = b.String()
	case statementStateShow:
		s = boxed(m.text) + "\n\n(Esc to go back)"
	}

	if m.status != "" {
		s += "\n\n" + lipgloss.NewStyle().Faint(true).Render(m.status)
	}

	return style.Render(s)
}

// Messages

type parentsFoundMsg struct {
	parents []*family.Parent
	err     error
}

func (m StatementModel) searchCmd(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		parents, err := m.familyService.ListParents(ctx, m.Actor, family.ParentFilter{Name: strings.TrimSpace(name)})

		return parentsFoundMsg{parents: parents, err: err}
	}
}

type statementMsg struct {
	text string
	err  error
}

func (m StatementModel) buildCmd(parentID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.statementService.Build(ctx, m.Actor, parentID)
		if err != nil {
			return statementMsg{err: err}
		}

		var b strings.Builder
		if err := statement.RenderText(&b, st, m.appName); err != nil {
			return statementMsg{err: err}
		}

		return statementMsg{text: b.String()}
	}
}
