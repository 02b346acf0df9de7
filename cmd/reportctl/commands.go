package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/reading-reports-api/internal/service"
	"github.com/noah-isme/reading-reports-api/pkg/reportfile"
	"github.com/noah-isme/reading-reports-api/pkg/storage"
)

const commandTimeout = 10 * time.Minute

var errNothingToCombine = errors.New("no report files found, nothing to combine")

type rootOptions struct {
	dir          string
	fallbackDirs []string
	logger       *zap.Logger
}

func (o *rootOptions) locator() *reportfile.Locator {
	return reportfile.NewLocator(o.dir, o.fallbackDirs, o.logger)
}

func (o *rootOptions) combiner() (*service.CombineService, error) {
	locator := o.locator()
	store, err := storage.NewLocalStorage(locator.PrimaryRoot())
	if err != nil {
		return nil, err
	}
	return service.NewCombineService(locator, store, nil, o.logger), nil
}

type CombineCmd struct {
	opts *rootOptions
}

func NewCombineCmd(opts *rootOptions) *cobra.Command {
	cc := &CombineCmd{opts: opts}
	return &cobra.Command{
		Use:   "combine",
		Short: "Merge every export into one combined workbook",
		RunE:  cc.run,
	}
}

func (cc *CombineCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	combiner, err := cc.opts.combiner()
	if err != nil {
		return err
	}
	combiner.ConvertPending(ctx)
	workbook, err := combiner.Combine(ctx)
	if err != nil {
		return fmt.Errorf("combine reports: %w", err)
	}
	if workbook == nil {
		return errNothingToCombine
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", workbook.Path)
	for _, sheet := range workbook.Sheets {
		fmt.Fprintf(out, "  %-20s files=%d rows=%d\n", sheet.Name, sheet.Files, sheet.DataRows)
	}
	return nil
}

type SummaryCmd struct {
	opts *rootOptions
	view string
}

func NewSummaryCmd(opts *rootOptions) *cobra.Command {
	sc := &SummaryCmd{opts: opts}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a summary view as JSON",
		RunE:  sc.run,
	}
	cmd.Flags().StringVar(&sc.view, "view", "school", "View to print (school, classrooms, skills, top-readers, level-up)")
	return cmd
}

func (sc *SummaryCmd) run(cmd *cobra.Command, _ []string) error {
	summaries := service.NewSummaryService(sc.opts.locator(), sc.opts.logger)

	var view interface{}
	switch sc.view {
	case "school":
		view = summaries.SchoolSummary()
	case "classrooms":
		view = summaries.ClassroomSummaries()
	case "skills":
		view = summaries.SkillsSummary()
	case "top-readers":
		view = summaries.TopReaders()
	case "level-up":
		view = summaries.LevelUp()
	default:
		return fmt.Errorf("unknown view %q", sc.view)
	}
	return writeJSON(cmd.OutOrStdout(), view)
}

type ConvertCmd struct {
	opts *rootOptions
}

func NewConvertCmd(opts *rootOptions) *cobra.Command {
	cv := &ConvertCmd{opts: opts}
	return &cobra.Command{
		Use:   "convert",
		Short: "Convert CSV exports to xlsx",
		RunE:  cv.run,
	}
}

func (cv *ConvertCmd) run(cmd *cobra.Command, _ []string) error {
	combiner, err := cv.opts.combiner()
	if err != nil {
		return err
	}
	converted := combiner.ConvertPending(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "converted %d file(s)\n", converted)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
