package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/subscribers"
)

func newSubscribersCommand(ctx *commandContext) *cobra.Command {
	subsCmd := &cobra.Command{
		Use:     "subscribers",
		Aliases: []string{"subs"},
		Short:   "Manage the digest subscriber registry",
	}

	subsCmd.AddCommand(newSubscribersListCommand(ctx))
	subsCmd.AddCommand(newSubscribersAddCommand(ctx))
	subsCmd.AddCommand(newSubscribersRemoveCommand(ctx))

	return subsCmd
}

func (c *commandContext) withRegistry(fn func(*subscribers.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := subscribers.Open(cfg.Subscribers.DBPath)
	if err != nil {
		return fmt.Errorf("open subscriber registry: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newSubscribersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List subscribed chats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRegistry(func(store *subscribers.Store) error {
				subs, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(subs) == 0 {
					fmt.Fprintln(out, "No subscribers")
					return nil
				}
				rows := make([][]string, 0, len(subs))
				for _, sub := range subs {
					rows = append(rows, []string{
						strconv.FormatInt(sub.ChatID, 10),
						sub.SubscribedAt.Local().Format(time.RFC3339),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Chat ID", "Subscribed"},
					rows,
					[]columnAlignment{alignRight, alignLeft}))
				fmt.Fprintf(out, "%d subscriber(s)\n", len(subs))
				return nil
			})
		},
	}
}

func newSubscribersAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <chat-id>",
		Short: "Register a chat for digests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse chat id %q: %w", args[0], err)
			}
			return ctx.withRegistry(func(store *subscribers.Store) error {
				added, err := store.Add(cmd.Context(), chatID)
				if err != nil {
					return err
				}
				if !added {
					fmt.Fprintf(cmd.OutOrStdout(), "Chat %d is already subscribed\n", chatID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Subscribed chat %d\n", chatID)
				return nil
			})
		},
	}
}

func newSubscribersRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <chat-id>",
		Short: "Unregister a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse chat id %q: %w", args[0], err)
			}
			return ctx.withRegistry(func(store *subscribers.Store) error {
				removed, err := store.Remove(cmd.Context(), chatID)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Chat %d was not subscribed\n", chatID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unsubscribed chat %d\n", chatID)
				return nil
			})
		},
	}
}
