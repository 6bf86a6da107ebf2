package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/daycare/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/billing"
	billingStore "github.com/MrJamesThe3rd/daycare/internal/billing/store"
	"github.com/MrJamesThe3rd/daycare/internal/config"
	"github.com/MrJamesThe3rd/daycare/internal/database"
	"github.com/MrJamesThe3rd/daycare/internal/export"
	"github.com/MrJamesThe3rd/daycare/internal/family"
	familyStore "github.com/MrJamesThe3rd/daycare/internal/family/store"
	"github.com/MrJamesThe3rd/daycare/internal/fee"
	feeStore "github.com/MrJamesThe3rd/daycare/internal/fee/store"
	"github.com/MrJamesThe3rd/daycare/internal/identifier"
	"github.com/MrJamesThe3rd/daycare/internal/identifier/rediscounter"
	sequenceStore "github.com/MrJamesThe3rd/daycare/internal/identifier/store"
	"github.com/MrJamesThe3rd/daycare/internal/importer"
	"github.com/MrJamesThe3rd/daycare/internal/statement"
	"github.com/MrJamesThe3rd/daycare/internal/user"
	userStore "github.com/MrJamesThe3rd/daycare/internal/user/store"
)

type model struct {
	common view.CommonModel
	who    string
	cfg    *config.Config

	billingService   *billing.Service
	familyService    *family.Service
	statementService *statement.Service
	importService    *importer.Service
	exportService    *export.Service

	currentView View

	invoiceView   view.InvoiceModel
	paymentView   view.PaymentModel
	importView    view.ImportModel
	statementView view.StatementModel
}

type View int

const (
	ViewMenu      View = 0
	ViewInvoices  View = 1
	ViewPayments  View = 2
	ViewImport    View = 3
	ViewStatement View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if strings.TrimSpace(cfg.TUI.UserEmail) == "" {
		slog.Error("TUI_USER_EMAIL is required")
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxOpenConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := view.DbCtx()
	defer cancel()

	sequences := sequenceStore.New(db)

	var counter identifier.Counter = sequences

	if cfg.Sequence.Backend == config.SequenceRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}

		counter = rediscounter.New(rdb, sequences, cfg.Redis.LockTimeout)
	}

	var (
		tokens = auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
		ids    = identifier.NewGenerator(counter)

		feeService     = fee.NewService(feeStore.New(db))
		familyService  = family.NewService(familyStore.New(db), ids)
		billingService = billing.NewService(billingStore.New(db), ids, feeService, familyService)
		userService    = user.NewService(userStore.New(db), familyService, tokens)
	)

	u, actor, err := resolveActor(ctx, userService, familyService, cfg.TUI.UserEmail)
	if err != nil {
		slog.Error("failed to resolve TUI user", "email", cfg.TUI.UserEmail, "error", err)
		os.Exit(1)
	}

	return model{
		common:           view.CommonModel{Actor: actor},
		who:              fmt.Sprintf("%s (%s)", u.FullName(), u.Role),
		cfg:              cfg,
		billingService:   billingService,
		familyService:    familyService,
		statementService: statement.NewService(familyService, billingService),
		importService:    importer.NewService(billingService),
		exportService:    export.NewService(billingService),
		currentView:      ViewMenu,
	}
}

// resolveActor builds the actor the TUI acts as from an active account.
func resolveActor(ctx context.Context, users *user.Service, families *family.Service, email string) (*user.User, auth.Actor, error) {
	u, err := users.FindByEmail(ctx, email)
	if err != nil {
		return nil, auth.Actor{}, err
	}

	if !u.IsActive {
		return nil, auth.Actor{}, fmt.Errorf("account %s is inactive", u.Email)
	}

	actor := auth.Actor{UserID: u.ID, Role: u.Role}

	if u.Role == auth.RoleParent {
		p, err := families.ParentOf(ctx, u.ID)
		if err != nil {
			return nil, auth.Actor{}, fmt.Errorf("get parent profile: %w", err)
		}

		actor.ParentID = &p.ID
	}

	return u, actor, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInvoices
				m.invoiceView = view.NewInvoiceModel(m.common, m.billingService)

				return m, m.invoiceView.Init()
			case "2":
				m.currentView = ViewPayments
				m.paymentView = view.NewPaymentModel(m.common, m.billingService, m.exportService, m.cfg.TUI.ExportDir)

				return m, m.paymentView.Init()
			case "3":
				if !m.common.Actor.ManagesFinance() {
					return m, nil
				}

				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.common, m.importService)

				return m, m.importView.Init()
			case "4":
				m.currentView = ViewStatement
				m.statementView = view.NewStatementModel(m.common, m.familyService, m.statementService, m.cfg.App.Name)

				return m, m.statementView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewInvoices:
		var newModel tea.Model
		newModel, cmd = m.invoiceView.Update(msg)
		m.invoiceView = newModel.(view.InvoiceModel)
	case ViewPayments:
		var newModel tea.Model
		newModel, cmd = m.paymentView.Update(msg)
		m.paymentView = newModel.(view.PaymentModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewStatement:
		var newModel tea.Model
		newModel, cmd = m.statementView.Update(msg)
		m.statementView = newModel.(view.StatementModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return m.menu()
	case ViewInvoices:
		return m.withHelp(m.invoiceView)
	case ViewPayments:
		return m.withHelp(m.paymentView)
	case ViewImport:
		return m.withHelp(m.importView)
	case ViewStatement:
		return m.withHelp(m.statementView)
	}

	return "Unknown View"
}

func (m model) menu() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Billing\nSigned in as %s\n\n", m.cfg.App.Name, m.who)
	b.WriteString("1. Invoices\n")
	b.WriteString("2. Payment History\n")

	if m.common.Actor.ManagesFinance() {
		b.WriteString("3. Import Bank Statement\n")
	}

	b.WriteString("4. Statement\n\n")
	b.WriteString("q. Quit")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func (m model) withHelp(v view.View) string {
	title := lipgloss.NewStyle().Bold(true).PaddingLeft(1).Render(v.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), help)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
