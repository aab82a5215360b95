package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/replica"
)

func newMembersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage members in the local replica",
	}
	cmd.AddCommand(
		newMembersListCmd(c),
		newMembersAddCmd(c),
		newMembersUpdateCmd(c),
		newMembersDeleteCmd(c),
		newMembersCheckInCmd(c),
		newMembersRenewCmd(c),
	)
	return cmd
}

func newMembersListCmd(c *cli) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tNAME\tEMAIL\tPHONE\tTYPE\tSTATUS\tEXPIRY\tVISITS")
				for _, m := range r.Members() {
					if status != "" && string(m.Status) != status {
						continue
					}
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n", m.ID, m.Name, m.Email, m.Phone,
						m.MembershipType, m.Status, formatDate(m.ExpiryDate), m.TotalVisits)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only members with this status")
	return cmd
}

func newMembersAddCmd(c *cli) *cobra.Command {
	var name, email, phone, kind, start, trainer string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate("start", start)
			if err != nil {
				return err
			}
			m := domain.Member{
				Name:            name,
				Email:           email,
				Phone:           phone,
				MembershipType:  domain.MembershipType(strings.ToLower(kind)),
				StartDate:       startDate,
				AssignedTrainer: optional(cmd, "trainer", trainer),
			}
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				created, err := r.AddMember(ctx, m)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added member %s (expires %s)\n", created.ID, formatDate(created.ExpiryDate))
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "Member name")
	flags.StringVar(&email, "email", "", "Email address")
	flags.StringVar(&phone, "phone", "", "Phone number")
	flags.StringVar(&kind, "type", string(domain.MembershipMonthly), "Membership type: monthly, quarterly or annual")
	flags.StringVar(&start, "start", "", "Start date YYYY-MM-DD (default today)")
	flags.StringVar(&trainer, "trainer", "", "Assigned trainer id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newMembersUpdateCmd(c *cli) *cobra.Command {
	var name, email, phone, kind, status, trainer, start, expiry string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update member fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := domain.MemberPatch{
				Name:            optional(cmd, "name", name),
				Email:           optional(cmd, "email", email),
				Phone:           optional(cmd, "phone", phone),
				AssignedTrainer: optional(cmd, "trainer", trainer),
			}
			if cmd.Flags().Changed("type") {
				t := domain.MembershipType(strings.ToLower(kind))
				patch.MembershipType = &t
			}
			if cmd.Flags().Changed("status") {
				s := domain.MemberStatus(strings.ToLower(status))
				patch.Status = &s
			}
			if cmd.Flags().Changed("start") {
				t, err := parseDate("start", start)
				if err != nil {
					return err
				}
				patch.StartDate = &t
			}
			if cmd.Flags().Changed("expiry") {
				t, err := parseDate("expiry", expiry)
				if err != nil {
					return err
				}
				patch.ExpiryDate = &t
			}
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				m, err := r.UpdateMember(ctx, args[0], patch)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated member %s\n", m.ID)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "Member name")
	flags.StringVar(&email, "email", "", "Email address")
	flags.StringVar(&phone, "phone", "", "Phone number")
	flags.StringVar(&kind, "type", "", "Membership type")
	flags.StringVar(&status, "status", "", "Membership status")
	flags.StringVar(&trainer, "trainer", "", "Assigned trainer id (empty clears)")
	flags.StringVar(&start, "start", "", "Start date YYYY-MM-DD")
	flags.StringVar(&expiry, "expiry", "", "Expiry date YYYY-MM-DD")
	return cmd
}

func newMembersDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a member with its invoices and follow-ups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				if err := r.DeleteMember(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted member %s\n", args[0])
				return nil
			})
		},
	}
}

func newMembersCheckInCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <id>",
		Short: "Record a visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				_, m, err := r.AddCheckIn(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Checked in %s (visit %d)\n", m.Name, m.TotalVisits)
				return nil
			})
		},
	}
}

func newMembersRenewCmd(c *cli) *cobra.Command {
	var kind, start string
	cmd := &cobra.Command{
		Use:   "renew <id>",
		Short: "Start a new membership term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := parseDate("start", start)
			if err != nil {
				return err
			}
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				m, err := r.RenewMember(ctx, args[0], domain.MembershipType(strings.ToLower(kind)), startDate)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renewed %s until %s\n", m.Name, formatDate(m.ExpiryDate))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "type", string(domain.MembershipMonthly), "Membership type")
	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD (default today)")
	return cmd
}
