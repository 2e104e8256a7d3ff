package main

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"aidraw-backend/internal/client"
	"aidraw-backend/internal/clientstate"
)

// settings resolves flags and AIDRAW_* environment variables.
type settings struct {
	v          *viper.Viper
	httpClient *http.Client
}

func (s *settings) server() string { return s.v.GetString("server") }

func (s *settings) openStore() (*clientstate.Store, error) {
	path := s.v.GetString("state")
	if path == "" {
		var err error
		if path, err = clientstate.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return clientstate.Open(path)
}

func (s *settings) client() *client.Client {
	return client.New(s.server(), s.httpClient)
}

func newRootCmd() *cobra.Command {
	s := &settings{
		v: viper.New(),
		// Streams may run for minutes; the request context bounds each call.
		httpClient: &http.Client{Timeout: 0},
	}
	s.v.SetEnvPrefix("aidraw")
	s.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Terminal client for the AI draw relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if s.v.GetBool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:8080", "relay base URL (env AIDRAW_SERVER)")
	flags.String("state", "", "state file (default ~/.aidraw/state.json, env AIDRAW_STATE)")
	flags.Duration("timeout", 5*time.Minute, "overall timeout for one call")
	flags.BoolP("verbose", "v", false, "debug logging")
	for _, name := range []string{"server", "state", "timeout", "verbose"} {
		s.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newAskCmd(s),
		newQuotaCmd(s),
		newPasswordCmd(s),
		newLLMCmd(s),
	)
	return root
}
