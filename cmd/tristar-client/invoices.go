package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/replica"
)

func newInvoicesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Manage invoices in the local replica",
	}
	cmd.AddCommand(
		newInvoicesListCmd(c),
		newInvoicesAddCmd(c),
		newInvoicesStatusCmd(c),
		newInvoicesDeleteCmd(c),
	)
	return cmd
}

func newInvoicesListCmd(c *cli) *cobra.Command {
	var memberID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tMEMBER\tTOTAL\tSTATUS\tDUE")
				for _, inv := range r.Invoices() {
					if memberID != "" && inv.MemberID != memberID {
						continue
					}
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", inv.ID, inv.MemberName, inv.Total, inv.Status, formatDate(inv.DueDate))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&memberID, "member", "", "Only invoices of this member id")
	return cmd
}

// parseItem reads "description:quantity:unit price", e.g. "Monthly fee:1:1999".
func parseItem(raw string) (domain.LineItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 {
		return domain.LineItem{}, fmt.Errorf("invalid --item %q (expected description:quantity:price)", raw)
	}
	n := len(parts)
	qty, err := strconv.Atoi(strings.TrimSpace(parts[n-2]))
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("invalid quantity in --item %q", raw)
	}
	price, err := domain.ParseMoney(parts[n-1])
	if err != nil {
		return domain.LineItem{}, fmt.Errorf("invalid price in --item %q: %w", raw, err)
	}
	return domain.LineItem{
		Description: strings.Join(parts[:n-2], ":"),
		Quantity:    qty,
		UnitPrice:   price,
	}, nil
}

func newInvoicesAddCmd(c *cli) *cobra.Command {
	var (
		memberID, id, notes, status, due string
		rawItems                         []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an invoice; totals are computed from the items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv := domain.Invoice{
				ID:       id,
				MemberID: memberID,
				Notes:    notes,
				Status:   domain.InvoiceStatus(strings.ToLower(status)),
			}
			for _, raw := range rawItems {
				item, err := parseItem(raw)
				if err != nil {
					return err
				}
				inv.Items = append(inv.Items, item)
			}
			dueDate, err := parseDate("due", due)
			if err != nil {
				return err
			}
			inv.DueDate = dueDate
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				created, err := r.AddInvoice(ctx, inv)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added invoice %s total %s\n", created.ID, created.Total)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&memberID, "member", "", "Member id")
	flags.StringArrayVar(&rawItems, "item", nil, "Line item description:quantity:price (repeatable)")
	flags.StringVar(&id, "id", "", "Invoice id (default next #MP number)")
	flags.StringVar(&notes, "notes", "", "Notes")
	flags.StringVar(&status, "status", "", "Initial status (default pending)")
	flags.StringVar(&due, "due", "", "Due date YYYY-MM-DD (default 30 days)")
	_ = cmd.MarkFlagRequired("member")
	return cmd
}

func newInvoicesStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <pending|paid|overdue>",
		Short: "Change the payment status of an invoice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				inv, err := r.SetInvoiceStatus(ctx, args[0], domain.InvoiceStatus(strings.ToLower(args[1])))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s is %s\n", inv.ID, inv.Status)
				return nil
			})
		},
	}
}

func newInvoicesDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				if err := r.DeleteInvoice(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted invoice %s\n", args[0])
				return nil
			})
		},
	}
}
