package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/replica"
)

// --- Sync ---

func newBootstrapCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Load the replica, pulling from the Record Store when it is empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				res, err := r.Bootstrap(ctx, c.recordStore())
				if err != nil {
					return err
				}
				if _, err := r.AutoExpireMembers(ctx); err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
}

func newSyncCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replace the replica with the Record Store's data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				counts, err := r.SyncNow(ctx, c.recordStore())
				if err != nil {
					return err
				}
				return printJSON(cmd, counts)
			})
		},
	}
}

// --- Activity log ---

func newActivitiesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Show or clear the activity log",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List activities, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				activities := r.Activities()
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "TIME\tTYPE\tACTION\tSUBJECT\tDETAILS")
				shown := 0
				for i := len(activities) - 1; i >= 0; i-- {
					if limit > 0 && shown == limit {
						break
					}
					a := activities[i]
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", a.Timestamp.Format("2006-01-02 15:04"), a.Type, a.Action, a.SubjectName, a.Details)
					shown++
				}
				return nil
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 shows all)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				n, err := r.ClearActivities(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d activities\n", n)
				return nil
			})
		},
	}

	cmd.AddCommand(list, clearCmd)
	return cmd
}

func newExpireCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Mark active members past their expiry date as expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				n, err := r.AutoExpireMembers(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Expired %d members\n", n)
				return nil
			})
		},
	}
}

// --- Export / import ---

func newExportCmd(c *cli) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every collection as one JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				data, err := r.Export()
				if err != nil {
					return err
				}
				if outPath == "" || outPath == "-" {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
					return err
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", outPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newImportCmd(c *cli) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace every collection from an export document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if inPath == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(inPath)
			}
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				if err := r.Import(ctx, data); err != nil {
					return err
				}
				counts := r.Counts()
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d members, %d invoices\n", counts.Members, counts.Invoices)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Export file to read, - for stdin")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// --- Settings ---

func newPricingCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Show or change membership fees",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the current fees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				return printJSON(cmd, r.Pricing())
			})
		},
	}

	fees := map[string]*string{}
	set := &cobra.Command{
		Use:   "set",
		Short: "Change fees given in rupees, e.g. --monthly 2499",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				p := r.Pricing()
				targets := map[string]*domain.Money{
					"monthly":           &p.MonthlyFee,
					"quarterly":         &p.QuarterlyFee,
					"half-yearly":       &p.HalfYearlyFee,
					"yearly":            &p.YearlyFee,
					"personal-training": &p.PersonalTrainingFee,
				}
				for name, dst := range targets {
					if !cmd.Flags().Changed(name) {
						continue
					}
					v, err := domain.ParseMoney(*fees[name])
					if err != nil {
						return fmt.Errorf("invalid --%s: %w", name, err)
					}
					*dst = v
				}
				if err := r.SetPricing(ctx, p); err != nil {
					return err
				}
				return printJSON(cmd, p)
			})
		},
	}
	for _, name := range []string{"monthly", "quarterly", "half-yearly", "yearly", "personal-training"} {
		fees[name] = set.Flags().String(name, "", "Fee for "+name)
	}

	cmd.AddCommand(get, set)
	return cmd
}

func newTermsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Show or change the terms and conditions",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the terms and conditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), r.Terms())
				return err
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <text>",
		Short: "Replace the terms and conditions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				if err := r.SetTerms(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Updated terms and conditions")
				return nil
			})
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func newNextInvoiceIDCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "next-invoice-id",
		Short: "Allocate the next sequential invoice identifier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				id, err := r.NextInvoiceID(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
				return err
			})
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record, keeping pricing, terms and the invoice counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("reset deletes all records; pass --yes to confirm")
			}
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				if err := r.ClearAllData(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cleared all data")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deleting all records")
	return cmd
}
