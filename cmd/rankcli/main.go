package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/unirank/rankbrowser/internal/cache"
	"github.com/unirank/rankbrowser/internal/config"
	"github.com/unirank/rankbrowser/internal/logger"
	"github.com/unirank/rankbrowser/internal/repository"
	"github.com/unirank/rankbrowser/internal/service"
	"github.com/unirank/rankbrowser/internal/state"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

func main() {
	app := cli.NewApp()
	app.Name = "rankcli"
	app.Usage = "browse university rankings from the terminal"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "backend, b",
			Usage:  "ranking API base `URL` (overrides BACKEND_URL)",
			EnvVar: "RANKCLI_BACKEND",
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "log backend calls to stderr",
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var s *session
	app.Before = func(c *cli.Context) error {
		cfg := config.Load()
		if u := c.String("backend"); u != "" {
			cfg.BackendURL = u
		}
		level := "warn"
		if c.Bool("debug") {
			level = "debug"
		}
		s = newSession(ctx, cfg, logger.New(os.Stderr, level, "pretty"))
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:  "list",
			Usage: "show the overall ranking",
			Action: func(c *cli.Context) error {
				return s.list(c)
			},
		},
		{
			Name:  "search",
			Usage: "filter universities; empty filters are ignored",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "name, n", Usage: "part of the English or Chinese `NAME`"},
				cli.StringFlag{Name: "rank-from", Usage: "lowest US rank"},
				cli.StringFlag{Name: "rank-to", Usage: "highest US rank"},
				cli.StringFlag{Name: "acceptance-from", Usage: "minimum acceptance rate"},
				cli.StringFlag{Name: "acceptance-to", Usage: "maximum acceptance rate"},
				cli.StringFlag{Name: "tuition-from", Usage: "minimum tuition"},
				cli.StringFlag{Name: "tuition-to", Usage: "maximum tuition"},
				cli.StringFlag{Name: "sat", Usage: "minimum SAT score"},
				cli.StringFlag{Name: "act", Usage: "minimum ACT score"},
				cli.StringFlag{Name: "gpa", Usage: "minimum GPA"},
			},
			Action: func(c *cli.Context) error {
				return s.search(c)
			},
		},
		{
			Name:      "show",
			Usage:     "show one university and its subject rankings",
			ArgsUsage: "<english name>",
			Action: func(c *cli.Context) error {
				return s.show(c)
			},
		},
		{
			Name:      "subjects",
			Usage:     "list subjects, or the specialties of one subject",
			ArgsUsage: "[subject]",
			Action: func(c *cli.Context) error {
				return s.subjectList(c)
			},
		},
		{
			Name:  "subject-search",
			Usage: "rank universities by subject and optional specialty",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "subject, s", Usage: "`SUBJECT` to search (required)"},
				cli.StringFlag{Name: "specialty, p", Usage: "restrict to one `SPECIALTY`"},
			},
			Action: func(c *cli.Context) error {
				return s.subjectSearch(c)
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newSession wires the same services the server uses, backed by an
// in-process cache.
func newSession(ctx context.Context, cfg *config.Config, log zerolog.Logger) *session {
	repo := repository.NewRankingRepository(cfg.BackendURL, cfg.BackendTimeout)
	return &session{
		ctx:      ctx,
		rankings: service.NewRankingService(repo, state.NewUniversities(), log),
		subjects: service.NewSubjectService(repo, cache.NewMemory(time.Minute), service.SubjectOptions{
			CatalogTTL:  cfg.CatalogCacheTTL,
			RankTTL:     cfg.RankCacheTTL,
			Concurrency: cfg.USNewsConcurrency,
		}, log),
		out:   os.Stdout,
		width: terminalWidth(),
	}
}

// terminalWidth is 0 when stdout is not a terminal, which disables truncation.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}
