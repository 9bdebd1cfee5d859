package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newResumeCmd(app *app) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Show how many transfers the point ledger already credits today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.service()
			if err != nil {
				return err
			}
			credentials, err := svc.Credentials(cmd.Context(), domain.AccountID(accountID))
			if err != nil {
				return err
			}
			credential := credentials[0]

			pipeline, err := app.buildPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = pipeline.Close() }()

			var done int
			err = runSpinner(cmd.Context(), cmd.ErrOrStderr(), "Reading point history...", func(ctx context.Context) error {
				page, err := pipeline.browser.NewPage(ctx)
				if err != nil {
					return err
				}
				defer func() { _ = page.Close() }()

				if err := pipeline.workflow.EnsureLoggedIn(ctx, page, credential); err != nil {
					return err
				}
				done, err = pipeline.ledger.CompletedToday(ctx, page, credential.Account)
				return err
			})
			if err != nil {
				return err
			}

			quota := app.quota()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d transfers credited today, %d remaining\n",
				credential.Account.Label(), min(done, quota.Daily), quota.Daily, quota.Remaining(done))
			return err
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

type spinnerDoneMsg struct {
	err error
}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	work    tea.Cmd
	err     error
	done    bool
}

func newSpinnerModel(label string, work tea.Cmd) spinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return spinnerModel{spinner: s, label: label, work: work}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runSpinner shows label on output while work runs.
func runSpinner(ctx context.Context, output io.Writer, label string, work func(context.Context) error) error {
	workCmd := func() tea.Msg {
		return spinnerDoneMsg{err: work(ctx)}
	}

	p := tea.NewProgram(
		newSpinnerModel(label, workCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(spinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
