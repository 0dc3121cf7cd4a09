package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tulu-service/internal/apiclient"
	"tulu-service/internal/config"
	"tulu-service/internal/logger"
	"tulu-service/internal/tutor"
)

// NewAskCmd chats with the tutor through the API.
func NewAskCmd(configPath *string) *cobra.Command {
	var apiURL string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Chat with Tulu, the Turkish tutor",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			if apiURL != "" {
				cfg.Client.APIURL = apiURL
			}
			return runAsk(cmd.Context(), cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "API base url, e.g. http://localhost:8080/api")
	return cmd
}

func runAsk(ctx context.Context, cfg config.Config, log *logger.Logger, in io.Reader, out io.Writer) error {
	if cfg.Client.APIURL == "" {
		return fmt.Errorf("tutor needs client.api_url (or --api)")
	}
	conv := tutor.NewConversation(apiclient.New(cfg.Client.APIURL), log)
	fmt.Fprintf(out, "tulu> %s\n", conv.Messages()[0].Text)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		msg, ok := conv.Send(ctx, scanner.Text())
		if !ok {
			continue
		}
		fmt.Fprintf(out, "tulu> %s\n", msg.Text)
	}
}
