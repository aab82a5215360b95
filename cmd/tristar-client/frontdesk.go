package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tristar/fitness-hub/internal/domain"
	"tristar/fitness-hub/internal/replica"
)

// --- Follow-ups ---

func newFollowUpsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "followups",
		Aliases: []string{"follow-ups"},
		Short:   "Manage follow-up tasks",
	}
	cmd.AddCommand(
		newFollowUpsListCmd(c),
		newFollowUpsAddCmd(c),
		newFollowUpsCompleteCmd(c),
		newFollowUpsDeleteCmd(c),
	)
	return cmd
}

func newFollowUpsListCmd(c *cli) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List follow-ups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tSUBJECT\tTYPE\tPRIORITY\tSTATUS\tDUE")
				for _, f := range r.FollowUps() {
					if status != "" && string(f.Status) != status {
						continue
					}
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.SubjectName, f.Type, f.Priority, f.Status, formatDate(f.DueDate))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only follow-ups with this status")
	return cmd
}

func newFollowUpsAddCmd(c *cli) *cobra.Command {
	var memberID, visitorID, kind, priority, due, notes string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a follow-up for a member or a visitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDate("due", due)
			if err != nil {
				return err
			}
			if dueDate.IsZero() {
				dueDate = time.Now().UTC()
			}
			f := domain.FollowUp{
				MemberID:  optional(cmd, "member", memberID),
				VisitorID: optional(cmd, "visitor", visitorID),
				Type:      domain.FollowUpType(strings.ToLower(kind)),
				Priority:  domain.Priority(strings.ToLower(priority)),
				DueDate:   dueDate,
				Notes:     notes,
			}
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				created, err := r.AddFollowUp(ctx, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added follow-up %s for %s\n", created.ID, created.SubjectName)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&memberID, "member", "", "Member id")
	flags.StringVar(&visitorID, "visitor", "", "Visitor id")
	flags.StringVar(&kind, "type", string(domain.FollowUpGeneral), "Follow-up type, e.g. payment_reminder")
	flags.StringVar(&priority, "priority", string(domain.PriorityMedium), "Priority: low, medium or high")
	flags.StringVar(&due, "due", "", "Due date YYYY-MM-DD (default today)")
	flags.StringVar(&notes, "notes", "", "Notes")
	cmd.MarkFlagsMutuallyExclusive("member", "visitor")
	cmd.MarkFlagsOneRequired("member", "visitor")
	return cmd
}

func newFollowUpsCompleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a follow-up completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				f, err := r.CompleteFollowUp(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed follow-up %s\n", f.ID)
				return nil
			})
		},
	}
}

func newFollowUpsDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a follow-up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				if err := r.DeleteFollowUp(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted follow-up %s\n", args[0])
				return nil
			})
		},
	}
}

// --- Trainers ---

func newTrainersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trainers",
		Short: "Manage trainers",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List trainers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tNAME\tPHONE\tSPECIALIZATION\tSTATUS\tSESSIONS")
				for _, t := range r.Trainers() {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%d\n", t.ID, t.Name, t.Phone, t.Specialization, t.Status, t.TotalSessions)
				}
				return nil
			})
		},
	}

	var t domain.Trainer
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a trainer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				created, err := r.AddTrainer(ctx, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added trainer %s\n", created.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&t.Name, "name", "", "Trainer name")
	add.Flags().StringVar(&t.Phone, "phone", "", "Phone number")
	add.Flags().StringVar(&t.Email, "email", "", "Email address")
	add.Flags().StringVar(&t.Specialization, "specialization", "", "Specialization")
	add.Flags().IntVar(&t.Experience, "experience", 0, "Years of experience")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("phone")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a trainer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				if err := r.DeleteTrainer(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted trainer %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

// --- Visitors ---

func newVisitorsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visitors",
		Short: "Manage walk-in visitors",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List visitors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "ID\tNAME\tPHONE\tPURPOSE\tSTATUS\tCHECKED_IN")
				for _, v := range r.Visitors() {
					fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Phone, v.Purpose, v.Status, formatDate(v.CheckInTime))
				}
				return nil
			})
		},
	}

	var v domain.Visitor
	add := &cobra.Command{
		Use:   "add",
		Short: "Check in a visitor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				created, err := r.AddVisitor(ctx, v)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added visitor %s\n", created.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&v.Name, "name", "", "Visitor name")
	add.Flags().StringVar(&v.Phone, "phone", "", "Phone number")
	add.Flags().StringVar(&v.Email, "email", "", "Email address")
	add.Flags().StringVar(&v.Purpose, "purpose", "", "Purpose of the visit")
	add.Flags().StringVar(&v.HostMember, "host", "", "Host member name")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("phone")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a visitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withReplica(cmd, func(ctx context.Context, r *replica.Replica) error {
				if err := r.DeleteVisitor(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted visitor %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}
