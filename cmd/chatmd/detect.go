package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/chatmd/internal/conversation"
	"github.com/dgallion1/chatmd/internal/dom"
)

var errNoConversation = errors.New(conversation.ReasonNoTurns)

var detectCmd = &cobra.Command{
	Use:   "detect [page.html]",
	Short: "Report whether a page contains a conversation",
	Long: `Detect exits with status 0 when the page holds at least one
conversation turn and with status 1 otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		doc, err := dom.Parse(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("parse html: %w", err)
		}
		if !conversation.Detect(doc) {
			return errNoConversation
		}
		fmt.Fprintln(cmd.OutOrStdout(), "conversation found")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
