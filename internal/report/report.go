package report

import (
	"github.com/charmbracelet/log"

	"tildabook/internal/scrape"
)

// Report is the operator-facing view of one finished run.
type Report struct {
	RunID        string
	Chapters     int
	Failed       []scrape.Failure
	FailedImages int
	OutputDir    string
}

func Build(sum scrape.Summary, outputDir string) Report {
	return Report{
		RunID:        sum.Meta.RunID,
		Chapters:     len(sum.Meta.Chapters),
		Failed:       sum.Failures,
		FailedImages: sum.FailedImages,
		OutputDir:    outputDir,
	}
}

func (r Report) HasFailures() bool {
	return len(r.Failed) > 0
}

func (r Report) Log(logger *log.Logger) {
	logger.Info("run complete",
		"run_id", r.RunID,
		"chapters", r.Chapters,
		"failed_chapters", len(r.Failed),
		"failed_images", r.FailedImages,
		"output", r.OutputDir,
	)
	for _, f := range r.Failed {
		logger.Error("chapter failed", "index", f.SequenceIndex, "url", f.URL, "err", f.Error)
	}
}
