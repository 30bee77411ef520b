package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

type kindStyle struct {
	label  string
	colors text.Colors
}

var kindStyles = map[statusKind]kindStyle{
	statusInfo:  {"INFO", text.Colors{text.FgBlue}},
	statusOK:    {"OK", text.Colors{text.FgGreen}},
	statusWarn:  {"WARN", text.Colors{text.FgYellow}},
	statusError: {"ERROR", text.Colors{text.FgRed}},
}

const reportLabelWidth = 20

// report collects the sectioned "label: [KIND] message" output of status and
// doctor.
type report struct {
	colorize bool
	lines    []string
}

func newReport(out io.Writer) *report {
	return &report{colorize: isTerminal(out)}
}

// section starts a titled block, separated from the previous one by a blank line.
func (r *report) section(title string) {
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(heading))
	r.lines = append(r.lines, r.paint(text.Colors{text.FgBlue, text.Bold}, heading), r.paint(text.Colors{text.FgBlue}, rule))
}

func (r *report) line(label string, kind statusKind, message string) {
	style, ok := kindStyles[kind]
	if !ok {
		style = kindStyles[statusInfo]
	}
	tag := "[" + style.label + "]"
	if message != "" {
		tag += " " + message
	}
	r.lines = append(r.lines, r.paint(style.colors, fmt.Sprintf("  %-*s %s", reportLabelWidth, label+":", tag)))
}

func (r *report) paint(colors text.Colors, s string) string {
	if !r.colorize {
		return s
	}
	return colors.Sprint(s)
}

func (r *report) write(out io.Writer) {
	fmt.Fprintln(out, strings.Join(r.lines, "\n"))
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
