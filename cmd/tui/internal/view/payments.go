package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	"github.com/MrJamesThe3rd/daycare/internal/export"
)

const historyLimit = billing.MaxPageSize

type PaymentModel struct {
	CommonModel
	billingService *billing.Service
	exportService  *export.Service
	exportDir      string

	table    table.Model
	payments []*billing.Payment
	total    int
	sum      string

	// Filter cycling; methodIdx 0 is every method.
	methodIdx    int
	timeframeIdx int

	filter  billing.PaymentFilter
	loading bool
	err     error
	status  string
}

func NewPaymentModel(common CommonModel, svc *billing.Service, exports *export.Service, exportDir string) PaymentModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Receipt", Width: 18},
		{Title: "Invoice", Width: 18},
		{Title: "Parent", Width: 22},
		{Title: "Child", Width: 22},
		{Title: "Method", Width: 14},
		{Title: "Amount", Width: 10},
		{Title: "Reference", Width: 30},
	}

	return PaymentModel{
		CommonModel:    common,
		billingService: svc,
		exportService:  exports,
		exportDir:      exportDir,
		table:          newTable(columns),
		filter:         billing.PaymentFilter{Limit: historyLimit},
		loading:        true,
	}
}

func (m PaymentModel) Title() string { return "Payment History" }

func (m PaymentModel) ShortHelp() string {
	return "Esc: back | m: method filter | d: date filter | x: export CSV | r: refresh"
}

func (m PaymentModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PaymentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPaymentsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.payments = msg.page.Payments
		m.total = msg.page.Total
		m.sum = FormatAmount(msg.page.Sum)
		m.refreshTable()

		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Export failed: %s", apperr.Message(msg.err))
		} else {
			m.status = fmt.Sprintf("Exported %d payments (%s) to %s",
				msg.result.Count, FormatAmount(msg.result.Sum), msg.result.Path)
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "m":
			m.methodIdx = (m.methodIdx + 1) % (len(billing.Methods) + 1)
			m.applyFilter()

			return m, m.loadCmd()
		case "d":
			m.timeframeIdx = (m.timeframeIdx + 1) % len(timeframes)
			m.applyFilter()

			return m, m.loadCmd()
		case "x":
			m.status = "Exporting..."
			return m, m.exportCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PaymentModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading payments...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to go back)", m.err))
	}

	method := "All"
	if m.filter.Method != nil {
		method = m.filter.Method.Label()
	}

	header := fmt.Sprintf(
		"Filter: [m] Method: %s | [d] Date: %s",
		activeStyle(method),
		activeStyle(timeframes[m.timeframeIdx].String()),
	)

	footer := fmt.Sprintf("%d payments, total %s", m.total, m.sum)
	if m.total > len(m.payments) {
		footer += fmt.Sprintf(" (showing %d)", len(m.payments))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
		lipgloss.NewStyle().Faint(true).Render(footer),
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *PaymentModel) applyFilter() {
	m.filter.Method = nil
	if m.methodIdx > 0 {
		m.filter.Method = new(billing.Methods[m.methodIdx-1])
	}

	m.filter.From, m.filter.To = timeframes[m.timeframeIdx].DateRange(time.Now())
}

func (m *PaymentModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.payments))
	for _, p := range m.payments {
		rows = append(rows, table.Row{
			FormatDate(p.Date),
			p.ReceiptNumber,
			p.InvoiceNumber,
			p.ParentName,
			p.ChildName,
			p.Method.Label(),
			FormatAmount(p.Amount),
			p.Reference,
		})
	}

	m.table.SetRows(rows)
}

type loadPaymentsMsg struct {
	page *billing.PaymentPage
	err  error
}

func (m PaymentModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.billingService.PaymentHistory(ctx, m.Actor, filter)

		return loadPaymentsMsg{page: page, err: err}
	}
}

type exportDoneMsg struct {
	result *export.Result
	err    error
}

func (m PaymentModel) exportCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.exportService.Export(ctx, m.Actor, filter, m.exportDir)

		return exportDoneMsg{result: res, err: err}
	}
}
