package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/daycare/internal/apperr"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
)

type invoiceState int

const (
	invoiceStateBrowse invoiceState = iota
	invoiceStatePay
)

var invoiceFilters = []struct {
	label    string
	statuses []billing.Status
}{
	{label: "Outstanding", statuses: billing.OutstandingStatuses},
	{label: "Overdue", statuses: []billing.Status{billing.StatusOverdue}},
	{label: "Partial", statuses: []billing.Status{billing.StatusPartial}},
	{label: "Draft", statuses: []billing.Status{billing.StatusDraft}},
}

type InvoiceModel struct {
	CommonModel
	billingService *billing.Service

	state    invoiceState
	table    table.Model
	invoices []*billing.Invoice
	form     *huh.Form

	filterIdx int
	loading   bool
	err       error
	status    string

	// Form bindings
	formAmount    string
	formMethod    billing.Method
	formReference string
	formNotes     string
}

func NewInvoiceModel(common CommonModel, svc *billing.Service) InvoiceModel {
	columns := []table.Column{
		{Title: "Invoice", Width: 18},
		{Title: "Parent", Width: 22},
		{Title: "Child", Width: 22},
		{Title: "Due", Width: 12},
		{Title: "Amount", Width: 10},
		{Title: "Balance", Width: 10},
		{Title: "Status", Width: 22},
	}

	return InvoiceModel{
		CommonModel:    common,
		billingService: svc,
		table:          newTable(columns),
		loading:        true,
	}
}

func (m InvoiceModel) Title() string { return "Outstanding Invoices" }

func (m InvoiceModel) ShortHelp() string {
	if m.state == invoiceStatePay {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | p: record payment | s: status filter | r: refresh"
}

func (m InvoiceModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.invoices = msg.page.Invoices
		m.refreshTable()

		return m, nil

	case paymentSavedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Payment not recorded: %s", apperr.Message(msg.err))
		} else {
			m.status = fmt.Sprintf("Recorded %s for %s on %s.",
				msg.payment.ReceiptNumber, FormatAmount(msg.payment.Amount), msg.invoice)
		}

		m.state = invoiceStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case invoiceStateBrowse:
		return m.updateBrowse(msg)
	case invoiceStatePay:
		return m.updatePay(msg)
	}

	return m, nil
}

func (m InvoiceModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "p":
			return m.enterPayMode()
		case "s":
			m.filterIdx = (m.filterIdx + 1) % len(invoiceFilters)
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoiceModel) selected() *billing.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return nil
	}

	return m.invoices[idx]
}

func (m InvoiceModel) enterPayMode() (tea.Model, tea.Cmd) {
	inv := m.selected()
	if inv == nil {
		return m, nil
	}

	m.formAmount = FormatAmount(inv.BalanceDue())
	m.formMethod = billing.MethodCash
	m.formReference = ""
	m.formNotes = ""

	methods := make([]huh.Option[billing.Method], 0, len(billing.Methods))
	for _, method := range billing.Methods {
		methods = append(methods, huh.NewOption(method.Label(), method))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(&m.formAmount).
				Validate(func(s string) error {
					_, err := billing.ParseAmount(s)
					if err != nil {
						return errors.New(apperr.Message(err))
					}

					return nil
				}),

			huh.NewSelect[billing.Method]().
				Key("method").
				Title("Payment method").
				Options(methods...).
				Value(&m.formMethod),

			huh.NewInput().
				Key("reference").
				Title("Reference").
				Placeholder("Transfer or cheque number").
				Value(&m.formReference),

			huh.NewInput().
				Key("notes").
				Title("Notes").
				Value(&m.formNotes),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = invoiceStatePay
	m.status = ""
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoiceModel) updatePay(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoiceStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.payCmd()
}

func (m InvoiceModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to go back)", m.err))
	}

	header := fmt.Sprintf("Filter: [s] Status: %s", activeStyle(invoiceFilters[m.filterIdx].label))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.state == invoiceStatePay && m.form != nil {
		title := "Record Payment"
		if inv := m.selected(); inv != nil {
			title = fmt.Sprintf("Record Payment\n\n%s  %s\nBalance due: %s",
				inv.Number, inv.ChildName, FormatAmount(inv.BalanceDue()))
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *InvoiceModel) refreshTable() {
	today := time.Now()

	rows := make([]table.Row, 0, len(m.invoices))
	for _, inv := range m.invoices {
		status := string(inv.Status)
		if days := inv.DaysOverdue(today); days > 0 {
			status = fmt.Sprintf("%s (%dd late)", inv.Status, days)
		}

		rows = append(rows, table.Row{
			inv.Number,
			inv.ParentName,
			inv.ChildName,
			FormatDate(inv.DueDate),
			FormatAmount(inv.Amount),
			FormatAmount(inv.BalanceDue()),
			status,
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInvoicesMsg struct {
	page *billing.InvoicePage
	err  error
}

func (m InvoiceModel) loadCmd() tea.Cmd {
	filter := billing.InvoiceFilter{
		Statuses: invoiceFilters[m.filterIdx].statuses,
		Sort:     billing.SortDueAsc,
		Limit:    billing.MaxPageSize,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.billingService.ListInvoices(ctx, m.Actor, filter)

		return loadInvoicesMsg{page: page, err: err}
	}
}

type paymentSavedMsg struct {
	invoice string
	payment *billing.Payment
	err     error
}

func (m InvoiceModel) payCmd() tea.Cmd {
	inv := m.selected()
	if inv == nil {
		return func() tea.Msg { return paymentSavedMsg{err: apperr.NotFound("invoice")} }
	}

	// The bound fields belong to an earlier copy of the model, so read the
	// values back from the form.
	amount, err := billing.ParseAmount(m.form.GetString("amount"))
	if err != nil {
		return func() tea.Msg { return paymentSavedMsg{err: err} }
	}

	method, _ := m.form.Get("method").(billing.Method)

	params := billing.PaymentParams{
		Amount:    amount,
		Method:    method,
		Reference: strings.TrimSpace(m.form.GetString("reference")),
		Notes:     strings.TrimSpace(m.form.GetString("notes")),
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.billingService.RecordPayment(ctx, m.Actor, inv.ID, params)

		return paymentSavedMsg{invoice: inv.Number, payment: p, err: err}
	}
}
