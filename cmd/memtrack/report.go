package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/memtrack/track"
)

type leakJSON struct {
	Address string `json:"address"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Size    uint64 `json:"size"`
}

type reportJSON struct {
	Leaks  []leakJSON `json:"leaks"`
	Blocks int        `json:"blocks"`
	Bytes  uint64     `json:"bytes"`
}

func toReportJSON(rep *track.Report) reportJSON {
	out := reportJSON{Leaks: []leakJSON{}}
	if rep == nil {
		return out
	}
	for _, l := range rep.Leaks {
		out.Leaks = append(out.Leaks, leakJSON{
			Address: fmt.Sprintf("0x%x", l.Addr),
			File:    l.Site.File,
			Line:    l.Site.Line,
			Size:    l.Size,
		})
	}
	out.Blocks = len(rep.Leaks)
	out.Bytes = rep.Bytes
	return out
}

type reportStyles struct {
	alert lipgloss.Style
	ok    lipgloss.Style
	label lipgloss.Style
}

func newReportStyles() reportStyles {
	if noColor {
		plain := lipgloss.NewStyle()
		return reportStyles{alert: plain, ok: plain, label: plain}
	}
	return reportStyles{
		alert: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		label: lipgloss.NewStyle().Bold(true),
	}
}

// printReport renders rep as JSON or as the text leak report.
func printReport(rep *track.Report) error {
	if jsonOut {
		return printJSON(toReportJSON(rep))
	}

	st := newReportStyles()
	p := message.NewPrinter(language.English)

	if rep.Empty() {
		printInfo("%s\n", st.ok.Render("No memory leaks detected"))
		return nil
	}

	printInfo("%s\n", st.alert.Render("Detected memory leaks!"))
	for _, l := range rep.Leaks {
		file := l.Site.File
		if !verbose {
			file = filepath.Base(file)
		}
		printInfo("\n%s 0x%x\n%s(%d)\n%s %s\n",
			st.label.Render("Pointer:"), l.Addr,
			file, l.Site.Line,
			st.label.Render("Size:"), p.Sprintf("%d", l.Size))
	}
	printInfo("\n%s\n", p.Sprintf("%d bytes leaked in %d blocks", rep.Bytes, len(rep.Leaks)))
	return nil
}
