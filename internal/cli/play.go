package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tulu-service/internal/config"
	"tulu-service/internal/content"
	"tulu-service/internal/domain"
	"tulu-service/internal/quiz"
)

// NewPlayCmd runs a scene quiz in the terminal with the real delays.
func NewPlayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play <sceneId>",
		Short: "Take the quiz of a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer log.Sync()
			return runPlay(cmd.Context(), cfg, args[0], quiz.SystemScheduler, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runPlay(ctx context.Context, cfg config.Config, sceneID string, sched quiz.Scheduler, in io.Reader, out io.Writer) error {
	bundle, err := content.LoadDir(cfg.Content.Dir)
	if err != nil {
		return err
	}
	def, ok := bundle.Quizzes[sceneID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	timing := quiz.Timing{
		AdvanceDelay:    config.TTLDuration(cfg.Quiz.AdvanceDelay, quiz.DefaultTiming.AdvanceDelay),
		CompletionDelay: config.TTLDuration(cfg.Quiz.CompletionDelay, quiz.DefaultTiming.CompletionDelay),
	}
	session, err := quiz.Start(uuid.NewString(), def, timing, sched)
	if err != nil {
		return err
	}
	defer session.Close()

	views, cancel := session.Subscribe()
	defer cancel()

	answers := make(chan string)
	go func() {
		defer close(answers)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			answers <- strings.TrimSpace(scanner.Text())
		}
	}()

	var current quiz.View
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v, ok := <-views:
			if !ok {
				return nil
			}
			current = v
			printView(out, v)
			if v.Phase == quiz.PhaseCompleted {
				return nil
			}
		case line, ok := <-answers:
			if !ok {
				return nil
			}
			if current.Phase != quiz.PhaseAnswering || current.Question == nil {
				continue
			}
			n, err := strconv.Atoi(line)
			if err != nil {
				fmt.Fprintln(out, "enter an option number")
				continue
			}
			if _, ok := session.SelectAnswer(current.Question.ID, n-1); !ok {
				fmt.Fprintln(out, "answer ignored")
			}
		}
	}
}

func printView(out io.Writer, v quiz.View) {
	switch v.Phase {
	case quiz.PhaseAnswering:
		fmt.Fprintf(out, "\nQuestion %d of %d (score %d)\n%s\n", v.Index+1, v.Total, v.RunningScore, v.Question.Prompt)
		for i, opt := range v.Question.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
	case quiz.PhaseExplaining:
		marks := map[quiz.OptionState]string{
			quiz.OptionSelectedCorrect:    "✓",
			quiz.OptionSelectedIncorrect:  "✗",
			quiz.OptionCorrectNotSelected: "→",
		}
		for i, state := range v.Options {
			if m, ok := marks[state]; ok {
				fmt.Fprintf(out, "  %s %d) %s\n", m, i+1, v.Question.Options[i])
			}
		}
		if v.Explanation != "" {
			fmt.Fprintf(out, "  %s\n", v.Explanation)
		}
	case quiz.PhaseCompleted:
		fmt.Fprintf(out, "\nYou scored %d out of %d. %s\n", *v.Score, v.Total, v.Message)
	}
}
