package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const configTemplate = `# Dead man's switch monitor configuration.
owner: %d
recipients: [%s]
grace_days: %d

channels:
  telegram:
    token: "%s"
  # discord:
  #   token: ""
  #   channel_id: ""
  # slack:
  #   bot_token: ""
  #   channel_id: ""
  # github:
  #   token: ""
  #   owner: ""
  #   repo: ""

db:
  driver: sqlite
  path: deadman.db

# dashboard:
#   port: 8080
`

func newInitCmd() *cobra.Command {
	var (
		configPath string
		owner      int64
		recipients []int64
		graceDays  int
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long:  "Writes a deadman.yaml skeleton. Prompts for the Telegram bot token without echoing when stdin is a terminal; leave it blank to supply it via DMS_TELEGRAM_TOKEN instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, configPath, owner, recipients, graceDays)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deadman.yaml", "path to write")
	cmd.Flags().Int64Var(&owner, "owner", 0, "owner's numeric chat id")
	cmd.Flags().Int64SliceVar(&recipients, "recipient", nil, "recipient chat id (repeatable)")
	cmd.Flags().IntVar(&graceDays, "grace-days", 3, "grace period in days")
	return cmd
}

func runInit(cmd *cobra.Command, configPath string, owner int64, recipients []int64, graceDays int) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", configPath)
	}

	token, err := promptToken(cmd)
	if err != nil {
		return err
	}

	ids := make([]string, len(recipients))
	for i, r := range recipients {
		ids[i] = fmt.Sprintf("%d", r)
	}

	content := fmt.Sprintf(configTemplate, owner, strings.Join(ids, ", "), graceDays, token)
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", configPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s — fill in the remaining fields before running 'dms check'.\n", configPath)
	return nil
}

// promptToken reads the bot token, without echo on a real terminal.
func promptToken(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(cmd.OutOrStdout(), "Telegram bot token (hidden, blank to skip): ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimSpace(line), nil
}
