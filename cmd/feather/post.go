package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/feather/internal/application/handlers"
	"github.com/ersonp/feather/internal/domain/entities"
)

func newRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scheduled action for today",
		Long:  "Publishes a quiz on the configured quiz weekday and a content post on every other day. Intended for cron.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				var result *handlers.CadenceResult
				err := lockUnlessDryRun(deps, dryRun, func() error {
					var err error
					result, err = deps.CadenceHandler.Handle(cmd.Context(), time.Now(), dryRun)
					return err
				})
				if err != nil {
					return err
				}
				switch {
				case result.Skipped:
					fmt.Fprintln(os.Stderr, "Quiz day, but there is not enough history for a quiz yet.")
				case result.Post != nil:
					printPostResult(os.Stderr, result.Post)
				case result.Quiz != nil:
					printQuizResult(os.Stderr, result.Quiz)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Build the publication without publishing or recording it")

	return cmd
}

func newPostCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Select, assemble and publish one species",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				var result *handlers.PostResult
				err := lockUnlessDryRun(deps, dryRun, func() error {
					var err error
					result, err = deps.PostHandler.Handle(cmd.Context(), handlers.PostOptions{DryRun: dryRun})
					return err
				})
				if err != nil {
					return err
				}
				if dryRun {
					printUnit(os.Stdout, result.Unit)
				}
				printPostResult(os.Stderr, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the content unit without publishing or recording it")

	return cmd
}

func newQuizCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Publish a quiz about recently featured species",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(func(deps *Deps) error {
				var result *handlers.QuizResult
				err := lockUnlessDryRun(deps, dryRun, func() error {
					var err error
					result, err = deps.QuizHandler.Handle(cmd.Context(), handlers.QuizOptions{DryRun: dryRun})
					return err
				})
				if err != nil {
					return err
				}
				if dryRun {
					printQuiz(os.Stdout, result.Quiz)
				}
				printQuizResult(os.Stderr, result)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the quiz without publishing it")

	return cmd
}

func lockUnlessDryRun(deps *Deps, dryRun bool, fn func() error) error {
	if dryRun {
		return fn()
	}
	return withRunLock(deps.RunLock, fn)
}

func printUnit(w io.Writer, u *entities.ContentUnit) {
	fmt.Fprintf(w, "Subject:     %s\n", u.Subject.Name)
	fmt.Fprintf(w, "Tier:        %s", u.CandidateTier)
	if u.Repeated {
		fmt.Fprint(w, " (repeat)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Description: %s\n", u.Description)
	if u.HasImage() {
		fmt.Fprintf(w, "Image:       %s (%s)\n", u.Image(), u.MediaSource)
	} else {
		fmt.Fprintln(w, "Image:       none")
	}
	fmt.Fprintf(w, "Facts (%s):\n", u.FactSource)
	for _, f := range u.Facts {
		fmt.Fprintf(w, "  - %s\n", f)
	}
}

func printQuiz(w io.Writer, q *entities.QuizRound) {
	fmt.Fprintf(w, "%s\n", q.Question)
	for i, opt := range q.Options {
		marker := " "
		if i == q.CorrectIndex {
			marker = "*"
		}
		fmt.Fprintf(w, " %s %d. %s\n", marker, i+1, opt)
	}
	if q.Explanation != "" {
		fmt.Fprintf(w, "%s\n", q.Explanation)
	}
}

func printPostResult(w io.Writer, r *handlers.PostResult) {
	if !r.Published {
		fmt.Fprintf(w, "Dry run: %s was not published.\n", r.Unit.Subject.Name)
		return
	}
	notes := []string{string(r.Unit.CandidateTier)}
	if r.Unit.GeneratedByFallback {
		notes = append(notes, "fallback content")
	}
	fmt.Fprintf(w, "Published %s (%s).\n", r.Unit.Subject.Name, strings.Join(notes, ", "))
}

func printQuizResult(w io.Writer, r *handlers.QuizResult) {
	if !r.Published {
		fmt.Fprintln(w, "Dry run: quiz was not published.")
		return
	}
	fmt.Fprintf(w, "Published %s quiz about %s.\n", r.Quiz.Kind, r.Quiz.CorrectSubject.Name)
}
