package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aidraw-backend/internal/models"
)

func newQuotaCmd(s *settings) *cobra.Command {
	var dailyQuota int

	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Show today's call count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openStore()
			if err != nil {
				return err
			}
			daily := dailyQuota
			if daily <= 0 {
				ctx, cancel := context.WithTimeout(cmd.Context(), s.v.GetDuration("timeout"))
				defer cancel()
				daily = fetchDailyQuota(ctx, s.client())
			}

			q := store.Quota()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "date:      %s\n", q.Date)
			fmt.Fprintf(out, "used:      %d\n", q.Used)
			fmt.Fprintf(out, "remaining: %d of %d\n", store.RemainingCount(daily), daily)
			if store.HasAccessPassword() || store.HasLLMConfig() {
				fmt.Fprintln(out, "unlimited: yes (access password or own key stored)")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&dailyQuota, "daily-quota", 0, "daily call ceiling (default: ask the server)")
	return cmd
}

func newPasswordCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the stored access password",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <password>",
			Short: "Store the access password",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := s.openStore()
				if err != nil {
					return err
				}
				if err := store.SetAccessPassword(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "access password saved")
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the access password",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := s.openStore()
				if err != nil {
					return err
				}
				if err := store.ClearAccessPassword(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "access password cleared")
				return nil
			},
		},
	)
	return cmd
}

func newLLMCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Manage your own provider configuration",
	}

	var cfg models.ProviderConfig
	set := &cobra.Command{
		Use:   "set",
		Short: "Store a provider configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := s.openStore()
			if err != nil {
				return err
			}
			if err := store.SetLLMConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "provider configuration saved")
			if !store.HasLLMConfig() {
				fmt.Fprintln(cmd.OutOrStdout(), "note: both --api-key and --base-url are needed before it is used")
			}
			return nil
		},
	}
	set.Flags().StringVar(&cfg.Provider, "provider", models.ProviderOpenAI, "openai, anthropic or deepseek")
	set.Flags().StringVar(&cfg.BaseURL, "base-url", "", "provider base URL")
	set.Flags().StringVar(&cfg.APIKey, "api-key", "", "provider API key")
	set.Flags().StringVar(&cfg.ModelID, "model", "", "model id")

	cmd.AddCommand(
		set,
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the provider configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := s.openStore()
				if err != nil {
					return err
				}
				if err := store.ClearLLMConfig(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "provider configuration cleared")
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored provider configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := s.openStore()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				stored := store.LLMConfig()
				if stored == nil {
					fmt.Fprintln(out, "no provider configuration stored")
					return nil
				}
				fmt.Fprintf(out, "provider: %s\n", stored.Provider)
				fmt.Fprintf(out, "base url: %s\n", stored.BaseURL)
				fmt.Fprintf(out, "api key:  %s\n", maskKey(stored.APIKey))
				fmt.Fprintf(out, "model:    %s\n", stored.ModelID)
				return nil
			},
		},
	)
	return cmd
}

// maskKey keeps the last four characters.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
