package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"planline/internal/app"
	"planline/internal/domain"
	"planline/internal/store"
)

// changed returns a pointer to v when the flag was set on the command line.
func changed[T ~string](flags *pflag.FlagSet, name string, v string) *T {
	if !flags.Changed(name) {
		return nil
	}
	t := T(v)
	return &t
}

func evidenceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "evidence", Short: "Evidence library"}

	var q string
	list := &cobra.Command{
		Use:   "list",
		Short: "List or search evidence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				items, err := a.Store.SearchEvidence(ctx, q)
				if err != nil {
					return err
				}
				return printEvidence(items)
			})
		},
	}
	list.Flags().StringVarP(&q, "query", "q", "", "case-insensitive match on title, tags or used-by")
	cmd.AddCommand(list)

	var status string
	var tags, usedBy []string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an evidence item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				item, err := a.Store.AddEvidence(ctx, args[0], domain.EvidenceStatus(status), tags, usedBy)
				if err != nil {
					return err
				}
				return printEvidence([]domain.EvidenceItem{item})
			})
		},
	}
	add.Flags().StringVar(&status, "status", string(domain.EvidenceCommissioned), "commissioned, draft, final or iterative")
	add.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	add.Flags().StringSliceVar(&usedBy, "used-by", nil, "policy reference using this item (repeatable)")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change an item's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				item, err := a.Store.SetEvidenceStatus(ctx, args[0], domain.EvidenceStatus(args[1]))
				if err != nil {
					return err
				}
				return printEvidence([]domain.EvidenceItem{item})
			})
		},
	})
	return cmd
}

func printEvidence(items []domain.EvidenceItem) error {
	if viper.GetBool("json") {
		return printJSON(items)
	}
	tw := newTable("ID", "Title", "Status", "Tags", "Used by")
	for _, it := range items {
		tw.AppendRow(table.Row{it.ID, it.Title, it.Status, strings.Join(it.Tags, ", "), strings.Join(it.UsedBy, ", ")})
	}
	tw.Render()
	return nil
}

func signalCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "signal", Short: "Monitoring signals"}

	var fStatus, fSeverity string
	list := &cobra.Command{
		Use:   "list",
		Short: "List signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				sigs, err := a.Store.ListSignals(ctx, store.SignalFilter{
					Status:   domain.SignalStatus(fStatus),
					Severity: domain.Severity(fSeverity),
				})
				if err != nil {
					return err
				}
				return printSignals(sigs)
			})
		},
	}
	list.Flags().StringVar(&fStatus, "status", "", "open, watching or closed")
	list.Flags().StringVar(&fSeverity, "severity", "", "High, Medium or Low")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Signal counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				stats, err := a.Store.SignalStats(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(stats)
				}
				tw := newTable("Total", "Open", "Watching", "Closed", "High", "Medium", "Low")
				tw.AppendRow(table.Row{
					stats.Total,
					stats.ByStatus[domain.SignalOpen], stats.ByStatus[domain.SignalWatching], stats.ByStatus[domain.SignalClosed],
					stats.BySeverity[domain.SeverityHigh], stats.BySeverity[domain.SeverityMedium], stats.BySeverity[domain.SeverityLow],
				})
				tw.Render()
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add",
		Short: "Add a blank signal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				sig, err := a.Store.AddSignal(ctx)
				if err != nil {
					return err
				}
				return printSignals([]domain.MonitoringSignal{sig})
			})
		},
	})

	var indicator, baseline, current, target, notes, trend, severity, status string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			patch := store.SignalPatch{
				Indicator: changed[string](f, "indicator", indicator),
				Baseline:  changed[string](f, "baseline", baseline),
				Current:   changed[string](f, "current", current),
				Target:    changed[string](f, "target", target),
				Notes:     changed[string](f, "notes", notes),
				Trend:     changed[domain.Trend](f, "trend", trend),
				Severity:  changed[domain.Severity](f, "severity", severity),
				Status:    changed[domain.SignalStatus](f, "status", status),
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				sig, err := a.Store.UpdateSignal(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return printSignals([]domain.MonitoringSignal{sig})
			})
		},
	}
	update.Flags().StringVar(&indicator, "indicator", "", "indicator name")
	update.Flags().StringVar(&baseline, "baseline", "", "baseline value")
	update.Flags().StringVar(&current, "current", "", "current value")
	update.Flags().StringVar(&target, "target", "", "target value")
	update.Flags().StringVar(&notes, "notes", "", "notes")
	update.Flags().StringVar(&trend, "trend", "", "up, down or stable")
	update.Flags().StringVar(&severity, "severity", "", "High, Medium or Low")
	update.Flags().StringVar(&status, "status", "", "open, watching or closed")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Store.RemoveSignal(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

func printSignals(sigs []domain.MonitoringSignal) error {
	if viper.GetBool("json") {
		return printJSON(sigs)
	}
	tw := newTable("ID", "Indicator", "Baseline", "Current", "Target", "Trend", "Severity", "Status")
	for _, s := range sigs {
		tw.AppendRow(table.Row{s.ID, s.Indicator, s.Baseline, s.Current, s.Target, s.Trend, s.Severity, s.Status})
	}
	tw.Render()
	return nil
}

func optionCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "option", Short: "Spatial options, their pros, cons and variants"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List options",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				opts, err := a.Store.ListOptions(ctx)
				if err != nil {
					return err
				}
				return printOptions(opts)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add",
		Short: "Add a new option",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				opt, err := a.Store.AddOption(ctx)
				if err != nil {
					return err
				}
				return printOptions([]domain.Option{opt})
			})
		},
	})

	var label, description string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an option's label or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := store.OptionPatch{
				Label:       changed[string](cmd.Flags(), "label", label),
				Description: changed[string](cmd.Flags(), "description", description),
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				opt, err := a.Store.UpdateOption(ctx, args[0], patch)
				if err != nil {
					return err
				}
				return printOptions([]domain.Option{opt})
			})
		},
	}
	update.Flags().StringVar(&label, "label", "", "option label")
	update.Flags().StringVar(&description, "description", "", "option description")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an option",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Store.RemoveOption(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", args[0])
				return nil
			})
		},
	})
	cmd.AddCommand(proConCmd(store.SidePros), proConCmd(store.SideCons), variantCmd())
	return cmd
}

func proConCmd(side store.ProConSide) *cobra.Command {
	name := strings.TrimSuffix(string(side), "s")
	cmd := &cobra.Command{Use: name, Short: "Manage an option's " + string(side)}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <option-id> <text>",
		Short: "Add a " + name,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				item, err := a.Store.AddProCon(ctx, args[0], side, args[1])
				if err != nil {
					return err
				}
				return printJSON(item)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <option-id> <item-id>",
		Short: "Remove a " + name,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Store.RemoveProCon(ctx, args[0], side, args[1]); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", args[1])
				return nil
			})
		},
	})
	return cmd
}

func variantCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "variant", Short: "Manage an option's variants"}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <option-id>",
		Short: "Add a variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				v, err := a.Store.AddVariant(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(v)
			})
		},
	})

	var label, tweaks, outcomes string
	update := &cobra.Command{
		Use:   "update <option-id> <variant-id>",
		Short: "Edit a variant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := cmd.Flags()
			patch := store.VariantPatch{
				Label:    changed[string](f, "label", label),
				Tweaks:   changed[string](f, "tweaks", tweaks),
				Outcomes: changed[string](f, "outcomes", outcomes),
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				v, err := a.Store.UpdateVariant(ctx, args[0], args[1], patch)
				if err != nil {
					return err
				}
				return printJSON(v)
			})
		},
	}
	update.Flags().StringVar(&label, "label", "", "variant label")
	update.Flags().StringVar(&tweaks, "tweaks", "", "what changes from the parent option")
	update.Flags().StringVar(&outcomes, "outcomes", "", "expected outcomes")
	cmd.AddCommand(update)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <option-id> <variant-id>",
		Short: "Remove a variant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				if err := a.Store.RemoveVariant(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", args[1])
				return nil
			})
		},
	})
	return cmd
}

func printOptions(opts []domain.Option) error {
	if viper.GetBool("json") {
		return printJSON(opts)
	}
	tw := newTable("ID", "Label", "Description", "Pros", "Cons", "Variants")
	for _, o := range opts {
		tw.AppendRow(table.Row{o.ID, o.Label, o.Description, len(o.Pros), len(o.Cons), len(o.Variants)})
	}
	tw.Render()
	return nil
}

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "snapshot", Short: "Freeze the option set size on today's date"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				snaps, err := a.Store.ListSnapshots(ctx)
				if err != nil {
					return err
				}
				return printSnapshots(snaps)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Take a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				snap, err := a.Store.CreateSnapshot(ctx)
				if err != nil {
					return err
				}
				return printSnapshots([]domain.Snapshot{snap})
			})
		},
	})
	return cmd
}

func printSnapshots(snaps []domain.Snapshot) error {
	if viper.GetBool("json") {
		return printJSON(snaps)
	}
	tw := newTable("ID", "Name", "Date", "Options")
	for _, s := range snaps {
		tw.AppendRow(table.Row{s.ID, s.Name, s.Date, s.OptionCount})
	}
	tw.Render()
	return nil
}
