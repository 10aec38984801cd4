package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/chatmd/internal/api"
	"github.com/dgallion1/chatmd/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chatmd HTTP API",
	Long: `Serve starts the HTTP API with its export worker pool. An API key is
required (api_key in the config file or CHATMD_API_KEY).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		if cmd.Flags().Changed("port") {
			c.Port, _ = cmd.Flags().GetString("port")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
		return api.Run(cmd.Context(), c, log)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (default from config, "+config.EnvPrefix+"_PORT)")

	rootCmd.AddCommand(serveCmd)
}
