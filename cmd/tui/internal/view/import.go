package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/importer"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service

	state      importState
	filePicker filepicker.Model
	entries    list.Model

	summary string
	status  string
	err     error
}

func NewImportModel(common CommonModel, svc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel:   common,
		importService: svc,
		filePicker:    fp,
	}
}

func (m ImportModel) Title() string { return "Import Bank Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult {
		return "Up/Down: scroll | Esc: back"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateResult {
			var cmd tea.Cmd
			m.entries, cmd = m.entries.Update(msg)

			return m, cmd
		}

	case importResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %s", apperr.Message(msg.err))

			return m, nil
		}

		m.err = nil
		m.summary = summarize(msg.result)
		m.entries = newEntryList(msg.result)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	if m.state == importStateResult {
		m.state = importStateFilePick
		m.err = nil
		m.status = ""
		m.summary = ""

		return m, m.filePicker.Init()
	}

	return m, Back
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a bank statement to import:\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.summary) +
			"\n\n" + m.entries.View(),
	)
}

func summarize(res *importer.Result) string {
	return fmt.Sprintf(
		"%s statement (%s): %d recorded, %d already imported, %d unmatched, %d rejected, %d debits skipped.",
		res.Profile, res.Charset,
		len(res.Recorded), len(res.Duplicates), len(res.Unmatched), len(res.Failed), res.Debits,
	)
}

// Messages

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := m.importService.Import(ctx, m.Actor, f)

		return importResultMsg{result: res, err: err}
	}
}

// Entry list

type outcome string

const (
	outcomeRecorded  outcome = "recorded"
	outcomeDuplicate outcome = "duplicate"
	outcomeUnmatched outcome = "unmatched"
	outcomeFailed    outcome = "rejected"
)

var outcomeColors = map[outcome]lipgloss.Color{
	outcomeRecorded:  "46",
	outcomeDuplicate: "240",
	outcomeUnmatched: "214",
	outcomeFailed:    "196",
}

type entryItem struct {
	entry   importer.Entry
	outcome outcome
}

func (i entryItem) Title() string       { return i.entry.Line.Description }
func (i entryItem) Description() string { return i.entry.Reason }
func (i entryItem) FilterValue() string { return i.entry.Line.Description }

func newEntryList(res *importer.Result) list.Model {
	var items []list.Item

	groups := []struct {
		outcome outcome
		entries []importer.Entry
	}{
		{outcomeFailed, res.Failed},
		{outcomeUnmatched, res.Unmatched},
		{outcomeRecorded, res.Recorded},
		{outcomeDuplicate, res.Duplicates},
	}

	for _, g := range groups {
		for _, e := range g.entries {
			items = append(items, entryItem{entry: e, outcome: g.outcome})
		}
	}

	l := list.New(items, entryDelegate{}, 100, 20)
	l.Title = "Statement Lines"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return l
}

type entryDelegate struct{}

func (d entryDelegate) Height() int                             { return 2 }
func (d entryDelegate) Spacing() int                            { return 0 }
func (d entryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d entryDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(entryItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	line := item.entry.Line
	tag := lipgloss.NewStyle().Foreground(outcomeColors[item.outcome]).Render(fmt.Sprintf("%-9s", item.outcome))

	line1 := fmt.Sprintf("%s%s row %-4d %s  %10s  %s",
		cursor, tag, line.Row, FormatDate(line.Date), FormatAmount(line.Amount), line.Description)

	detail := item.entry.Reason
	if item.entry.Payment != nil {
		detail = fmt.Sprintf("%s on %s", item.entry.Payment.ReceiptNumber, item.entry.InvoiceNumber)
	}

	fmt.Fprintf(w, "%s\n            %s\n", line1, detail)
}
