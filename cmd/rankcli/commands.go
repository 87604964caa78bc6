package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/unirank/rankbrowser/internal/model"
	"github.com/unirank/rankbrowser/internal/service"
	"github.com/unirank/rankbrowser/internal/view"
	"github.com/urfave/cli"
)

var errMissingName = errors.New("show needs a university name")

// session runs one command against the ranking services and prints tables.
type session struct {
	ctx      context.Context
	rankings *service.RankingService
	subjects *service.SubjectService
	out      io.Writer
	// width caps printed line length; 0 means unlimited.
	width int
}

func (s *session) list(c *cli.Context) error {
	list, err := s.rankings.LoadOverallRanking(s.ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	return s.printList(list)
}

func (s *session) search(c *cli.Context) error {
	criteria := model.SearchCriteria{
		Name:               c.String("name"),
		RankFrom:           c.String("rank-from"),
		RankTo:             c.String("rank-to"),
		AcceptanceRateFrom: c.String("acceptance-from"),
		AcceptanceRateTo:   c.String("acceptance-to"),
		TuitionFrom:        c.String("tuition-from"),
		TuitionTo:          c.String("tuition-to"),
		SATFrom:            c.String("sat"),
		ACTFrom:            c.String("act"),
		GPAFrom:            c.String("gpa"),
	}
	list, err := s.rankings.Search(s.ctx, criteria)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	return s.printList(list)
}

func (s *session) show(c *cli.Context) error {
	name := strings.Join(c.Args(), " ")
	if name == "" {
		return cli.NewExitError(errMissingName.Error(), 1)
	}
	if err := s.rankings.EnsureLoaded(s.ctx); err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	sel, ok := s.rankings.Select(s.ctx, name)
	if !ok {
		return cli.NewExitError(fmt.Sprintf("no university named %q", name), 1)
	}
	return s.printSelection(sel)
}

func (s *session) subjectList(c *cli.Context) error {
	if subject := c.Args().First(); subject != "" {
		specialties, err := s.subjects.Specialties(s.ctx, subject)
		if err != nil {
			return cli.NewExitError(err.Error(), 2)
		}
		for _, sp := range specialties {
			fmt.Fprintln(s.out, sp)
		}
		return nil
	}

	catalog, err := s.subjects.Catalog(s.ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	for _, subject := range catalog.Subjects() {
		fmt.Fprintln(s.out, subject)
	}
	return nil
}

func (s *session) subjectSearch(c *cli.Context) error {
	res, err := s.subjects.Search(s.ctx, model.SubjectSearchRequest{
		Subject:   c.String("subject"),
		Specialty: c.String("specialty"),
	})
	switch {
	case errors.Is(err, service.ErrSubjectRequired):
		return cli.NewExitError("--subject is required", 1)
	case errors.Is(err, service.ErrNoMatch):
		fmt.Fprintln(s.out, "no matching universities")
		return nil
	case err != nil:
		return cli.NewExitError(err.Error(), 2)
	}
	return s.printResults(res)
}

// ─── Output ─────────────────────────────────────────────────────────────

func (s *session) printList(list []model.University) error {
	if len(list) == 0 {
		fmt.Fprintln(s.out, "no matching universities")
		return nil
	}
	tw := s.table()
	fmt.Fprintln(tw, "RANK\tUNIVERSITY\t名称")
	for _, r := range view.ListRows(list, "", "") {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Rank, r.EnglishName, r.ChineseName)
	}
	return tw.Flush()
}

func (s *session) printSelection(sel *service.Selection) error {
	tw := s.table()
	for _, r := range view.DetailRows(sel.University) {
		fmt.Fprintf(tw, "%s\t%s\n", r.Label, r.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(s.out)
	if sel.SubjectsErr != nil {
		fmt.Fprintf(s.out, "subject rankings unavailable: %v\n", sel.SubjectsErr)
		return nil
	}
	tw = s.table()
	fmt.Fprintln(tw, "SUBJECT\tRANK\tSPECIALTY\tRANK")
	for _, r := range view.SubjectRows(sel.Subjects) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Subject, r.OverallRank, r.Specialty, r.SpecialtyRank)
	}
	return tw.Flush()
}

func (s *session) printResults(res *service.SubjectResults) error {
	fmt.Fprintf(s.out, "%s (%d)\n", view.ResultsHeading(res.Subject, res.Specialty), res.Total)
	for _, g := range view.ResultGroups(res.Groups) {
		fmt.Fprintf(s.out, "\n%s\n", g.Specialty)
		tw := s.table()
		fmt.Fprintln(tw, "SUBJECT RANK\t名称\tUNIVERSITY\tSUBJECT\tOVERALL\tUS NEWS")
		for _, r := range g.Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.SubjectRanking, r.ChineseName, r.EnglishName, r.Subject, r.OverallRanking, r.USNewsRank)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) table() *tabwriter.Writer {
	return tabwriter.NewWriter(&clipWriter{w: s.out, width: s.width}, 0, 0, 2, ' ', 0)
}

// clipWriter cuts every line to width runes. tabwriter emits a line in
// several writes, so partial lines are held until their newline arrives.
type clipWriter struct {
	w       io.Writer
	width   int
	pending []byte
}

func (c *clipWriter) Write(p []byte) (int, error) {
	if c.width <= 0 {
		return c.w.Write(p)
	}
	c.pending = append(c.pending, p...)
	for {
		i := bytes.IndexByte(c.pending, '\n')
		if i < 0 {
			return len(p), nil
		}
		if _, err := io.WriteString(c.w, clip(string(c.pending[:i+1]), c.width)); err != nil {
			return 0, err
		}
		c.pending = c.pending[i+1:]
	}
}

func clip(line string, width int) string {
	body := strings.TrimSuffix(line, "\n")
	if utf8.RuneCountInString(body) <= width {
		return line
	}
	runes := []rune(body)
	out := string(runes[:width-1]) + "…"
	if len(body) != len(line) {
		out += "\n"
	}
	return out
}
