package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"skyarea/internal/driver"
)

var numberPrinter = message.NewPrinter(language.English)

func renderSummary(res *driver.Result) string {
	rows := [][]string{
		{"Run ID", res.RunID},
		{"Samples", fmt.Sprintf("%s of %s", numberPrinter.Sprintf("%d", res.UsedPoints), numberPrinter.Sprintf("%d", res.TotalPoints))},
		{"Posterior", posteriorSource(res)},
		{"Clusters", fmt.Sprintf("%d", res.Clusters)},
		{"Sky map nside", fmt.Sprintf("%d", res.Nside)},
	}
	for i, level := range res.Levels {
		rows = append(rows, []string{
			fmt.Sprintf("%g%% area", 100*level),
			numberPrinter.Sprintf("%.1f deg²", res.Areas[i]),
		})
	}
	if res.PValue != nil {
		rows = append(rows, []string{"Injection p-value", fmt.Sprintf("%.4f", *res.PValue)})
	}
	rows = append(rows, []string{"Elapsed", res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond).String()})

	var b strings.Builder
	b.WriteString(renderTable("Sky localization", []string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")

	outputs := make([][]string, 0, len(res.Outputs))
	for _, out := range res.Outputs {
		outputs = append(outputs, []string{
			filepath.Base(out.Path),
			numberPrinter.Sprintf("%d", out.Size),
			shortDigest(out.SHA256),
		})
	}
	b.WriteString(renderTable("Outputs", []string{"Output", "Bytes", "SHA256"}, outputs, []columnAlignment{alignLeft, alignRight, alignLeft}))
	return b.String()
}

func posteriorSource(res *driver.Result) string {
	if res.Loaded {
		return "loaded"
	}
	if res.Attempts == 1 {
		return "built (1 attempt)"
	}
	return fmt.Sprintf("built (%d attempts)", res.Attempts)
}

func shortDigest(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
