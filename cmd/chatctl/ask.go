package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"aidraw-backend/internal/client"
	"aidraw-backend/internal/clientstate"
	"aidraw-backend/internal/models"
)

func newAskCmd(s *settings) *cobra.Command {
	var (
		stream     bool
		system     string
		dailyQuota int
	)

	cmd := &cobra.Command{
		Use:   "ask <prompt>...",
		Short: "Send one prompt to the relay and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), s.v.GetDuration("timeout"))
			defer cancel()

			store, err := s.openStore()
			if err != nil {
				return err
			}
			c := s.client()

			daily := dailyQuota
			if daily <= 0 {
				daily = fetchDailyQuota(ctx, c)
			}

			creds := client.Credentials{AccessPassword: store.AccessPassword()}
			if store.HasLLMConfig() {
				creds.LLMConfig = store.LLMConfig()
			}
			if !store.HasQuotaRemaining(daily) && !store.HasAccessPassword() && !store.HasLLMConfig() {
				return errors.Errorf("daily quota of %d calls used up; set an access password or your own provider key", daily)
			}

			var messages []models.ChatMessage
			if system != "" {
				messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: system})
			}
			messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: strings.Join(args, " ")})

			out := cmd.OutOrStdout()
			var res *client.Result
			if stream {
				res, err = c.ChatStream(ctx, messages, creds, out)
				fmt.Fprintln(out)
			} else {
				res, err = c.Chat(ctx, messages, creds)
				if err == nil {
					fmt.Fprintln(out, res.Content)
				}
			}
			if err != nil {
				return err
			}

			if !res.QuotaExempt {
				if err := store.ConsumeQuota(); err != nil {
					return err
				}
			}
			log.WithFields(log.Fields{
				"exempt":    res.QuotaExempt,
				"remaining": store.RemainingCount(daily),
			}).Debug("call recorded")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&stream, "stream", "s", false, "print the reply as it arrives")
	cmd.Flags().StringVar(&system, "system", "", "system prompt")
	cmd.Flags().IntVar(&dailyQuota, "daily-quota", 0, "daily call ceiling (default: ask the server)")
	return cmd
}

func fetchDailyQuota(ctx context.Context, c *client.Client) int {
	info, err := c.ServerInfo(ctx)
	if err != nil {
		log.WithError(err).Warnf("could not read server config, assuming %d calls a day", clientstate.DefaultDailyQuota)
		return clientstate.DefaultDailyQuota
	}
	return info.DailyQuota
}
