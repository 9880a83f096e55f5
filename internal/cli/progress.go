package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/codecontext/internal/analysis"
)

// CLIProgressReporter reports analysis progress with a progress bar. All
// output goes to w, normally stderr, so the report on stdout stays clean.
type CLIProgressReporter struct {
	w              io.Writer
	fileBar        *progressbar.ProgressBar
	totalFiles     int
	processedFiles int
}

// NewCLIProgressReporter creates a reporter writing to w.
func NewCLIProgressReporter(w io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{w: w}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	fmt.Fprintln(c.w, "Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files, manifests int) {
	fmt.Fprintf(c.w, "Analyzing %s source files (%s package.json)\n", formatNumber(files), formatNumber(manifests))
}

func (c *CLIProgressReporter) OnFileProcessingStart(totalFiles int) {
	c.totalFiles = totalFiles
	c.processedFiles = 0
	if totalFiles == 0 {
		c.fileBar = nil
		return
	}

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.w),
		progressbar.OptionSetDescription("Analyzing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.w)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	if c.fileBar != nil {
		c.processedFiles++
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats *analysis.Stats) {
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	fmt.Fprintf(c.w, "✓ Analysis complete: %s declarations in %s files (%.1fs)\n",
		formatNumber(stats.Declarations), formatNumber(stats.Files), stats.DurationSeconds)
	if stats.CacheHits > 0 {
		fmt.Fprintf(c.w, "  Served from cache: %s files\n", formatNumber(stats.CacheHits))
	}
	if stats.Problems > 0 {
		fmt.Fprintf(c.w, "  Problems: %s (see report)\n", formatNumber(stats.Problems))
	}
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
