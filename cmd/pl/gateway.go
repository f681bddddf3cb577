package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planline/internal/app"
	"planline/internal/domain"
	"planline/internal/readiness"
	"planline/internal/store"
)

func gatewayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Gateway assessments G1, G2 and G3",
		Long: `Gateways move not_started -> drafting -> submitted -> advice_received -> passed or not_passed.
Submitting requires readiness: G1 needs the notice published, scoping closed and the lead time elapsed;
G2 needs the content consultation summary; G3 the proposed consultation summary. G1 has no advice step
and passes when its summary is published.`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <gateway>",
		Short: "Show a gateway with its readiness and actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				gw, err := a.Store.GetGateway(ctx, domain.GatewayType(args[0]))
				if err != nil {
					return err
				}
				return printGateway(ctx, a, gw)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "readiness",
		Short: "Readiness of every gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				rs, err := a.Store.AllReadiness(ctx)
				if err != nil {
					return err
				}
				return printReadiness(rs...)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "submission",
		Short: "Whether the plan may be submitted for examination",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				open, err := a.Store.SubmissionOpen(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]bool{"open": open})
				}
				if open {
					fmt.Println("submission open")
				} else {
					fmt.Println("submission locked until G3 passes")
				}
				return nil
			})
		},
	})

	transitions := []struct {
		use, short string
		fn         func(*store.Store, context.Context, domain.GatewayType) (domain.Gateway, error)
	}{
		{"drafting", "Start drafting the gateway pack", (*store.Store).MarkPackDrafting},
		{"submit", "Submit the gateway pack", (*store.Store).SubmitGateway},
		{"receive-advice", "Record that advice was received", (*store.Store).ReceiveGatewayAdvice},
		{"publish-advice", "Publish received advice", (*store.Store).PublishGatewayAdvice},
		{"pass", "Mark the gateway passed", (*store.Store).MarkGatewayPassed},
		{"not-pass", "Mark the gateway not passed", (*store.Store).MarkGatewayNotPassed},
		{"publish-summary", "Publish the G1 summary, passing G1", (*store.Store).PublishGatewaySummary},
	}
	for _, t := range transitions {
		fn := t.fn
		cmd.AddCommand(&cobra.Command{
			Use:   t.use + " <gateway>",
			Short: t.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
					gw, err := fn(a.Store, ctx, domain.GatewayType(args[0]))
					if err != nil {
						return err
					}
					return printGateway(ctx, a, gw)
				})
			},
		})
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status <gateway> <status>",
		Short: "Set a status through the lifecycle rules",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				gw, err := a.Store.SetGatewayStatus(ctx, domain.GatewayType(args[0]), domain.GatewayStatus(args[1]))
				if err != nil {
					return err
				}
				return printGateway(ctx, a, gw)
			})
		},
	})
	cmd.AddCommand(gatewayActionCmd())
	return cmd
}

func gatewayActionCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "action", Short: "Gateway pack actions"}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <gateway> [title]",
		Short: "Add an open action",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) == 2 {
				title = args[1]
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				act, err := a.Store.AddGatewayAction(ctx, domain.GatewayType(args[0]), title)
				if err != nil {
					return err
				}
				return printJSON(act)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <gateway> <action-id>",
		Short: "Toggle an action between open and done",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				gw, err := a.Store.ToggleGatewayAction(ctx, domain.GatewayType(args[0]), args[1])
				if err != nil {
					return err
				}
				return printGateway(ctx, a, gw)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <gateway> <action-id> <title>",
		Short: "Rename an action",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				gw, err := a.Store.RenameGatewayAction(ctx, domain.GatewayType(args[0]), args[1], args[2])
				if err != nil {
					return err
				}
				return printGateway(ctx, a, gw)
			})
		},
	})
	return cmd
}

func printGateway(ctx context.Context, a *app.App, gw domain.Gateway) error {
	r, err := a.Store.Readiness(ctx, gw.ID)
	if err != nil {
		return err
	}
	if viper.GetBool("json") {
		return printJSON(map[string]any{"gateway": gw, "readiness": r})
	}
	fmt.Printf("%s: %s\n", gw.ID, gw.Status)
	stamps := newTable("Submitted", "Advice received", "Advice published", "Published")
	stamps.AppendRow(table.Row{
		orDash(gw.SubmittedAt.String()), orDash(gw.AdviceReceivedAt.String()),
		orDash(gw.AdvicePublishedAt.String()), orDash(gw.PublishedAt.String()),
	})
	stamps.Render()
	if err := printReadiness(r); err != nil {
		return err
	}
	if len(gw.Actions) > 0 {
		tw := newTable("Action", "Title", "Status")
		for _, act := range gw.Actions {
			tw.AppendRow(table.Row{act.ID, act.Title, act.Status})
		}
		tw.Render()
	}
	return nil
}

func printReadiness(rs ...readiness.Readiness) error {
	if viper.GetBool("json") {
		return printJSON(rs)
	}
	tw := newTable("Gateway", "Ready", "Code", "Reason", "Hint")
	for _, r := range rs {
		tw.AppendRow(table.Row{r.Gateway, r.OK, r.Code, r.Reason, r.Hint})
	}
	tw.Render()
	return nil
}
