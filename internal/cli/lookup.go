package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tulu-service/internal/apiclient"
	"tulu-service/internal/config"
	"tulu-service/internal/content"
	"tulu-service/internal/domain"
	"tulu-service/internal/logger"
	"tulu-service/internal/transcript"
)

// NewLookupCmd shows a scene transcript and resolves tokens typed on stdin.
func NewLookupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup [sceneId]",
		Short: "Browse a scene transcript and look up its words",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			sceneID := ""
			if len(args) == 1 {
				sceneID = args[0]
			}
			return runLookup(cmd.Context(), cfg, log, sceneID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// sceneSource yields scenes for a client; one of the local bundle or the API.
type sceneSource interface {
	ListScenes(ctx context.Context) ([]domain.Scene, error)
}

type bundleScenes struct{ bundle content.Bundle }

func (b bundleScenes) ListScenes(context.Context) ([]domain.Scene, error) {
	return b.bundle.Scenes, nil
}

// clientSources picks exactly one source of truth: the API when configured,
// else the local bundle.
func clientSources(cfg config.Config, log *logger.Logger) (sceneSource, transcript.Lookuper, error) {
	if cfg.Client.APIURL != "" {
		client := apiclient.New(cfg.Client.APIURL)
		return client, transcript.NewRemoteDictionary(client, log), nil
	}
	bundle, err := content.LoadDir(cfg.Content.Dir)
	if err != nil {
		return nil, nil, err
	}
	return bundleScenes{bundle: bundle}, transcript.NewLocalDictionary(bundle.Dictionary), nil
}

func runLookup(ctx context.Context, cfg config.Config, log *logger.Logger, sceneID string, in io.Reader, out io.Writer) error {
	scenes, lookup, err := clientSources(cfg, log)
	if err != nil {
		return err
	}
	list, err := scenes.ListScenes(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return domain.ErrSceneNotFound
	}
	scene := list[0]
	if sceneID != "" {
		found := false
		for _, s := range list {
			if s.ID == sceneID {
				scene, found = s, true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", domain.ErrSceneNotFound, sceneID)
		}
	}

	fmt.Fprintf(out, "%s (%s)\n\n", scene.Title, scene.ID)
	for _, line := range transcript.TokenizeScene(scene) {
		surfaces := make([]string, 0, len(line))
		for _, tok := range line {
			surfaces = append(surfaces, tok.Surface)
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(surfaces, " "))
	}
	fmt.Fprintln(out, "\nType a word to look it up, empty line closes the popup, Ctrl-D quits.")

	engine := transcript.NewEngine(lookup)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		token := strings.TrimSpace(scanner.Text())
		if token == "" {
			engine.ClosePopup()
			continue
		}
		popup, ok := <-engine.SelectToken(ctx, token)
		if !ok {
			continue
		}
		e := popup.Entry
		fmt.Fprintf(out, "%s: %s\n  pronunciation: %s\n  example: %s\n", popup.Token, e.Meaning, e.Pronunciation, e.Example)
	}
	return scanner.Err()
}
