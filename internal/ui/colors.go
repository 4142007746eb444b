package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	movieStyle   lipgloss.Style
	seriesStyle  lipgloss.Style
	pathStyle    lipgloss.Style
	headerStyle  lipgloss.Style
)

func init() {
	initStyles()
}

func initStyles() {
	if !IsTerminal() {
		plain := lipgloss.NewStyle()
		successStyle, errorStyle, warningStyle = plain, plain, plain
		infoStyle, dimStyle, pathStyle, headerStyle = plain, plain, plain, plain
		movieStyle, seriesStyle = plain, plain
		return
	}

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	movieStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	seriesStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
}

func Success(text string) string { return successStyle.Render(text) }
func Error(text string) string   { return errorStyle.Render(text) }
func Warning(text string) string { return warningStyle.Render(text) }
func Info(text string) string    { return infoStyle.Render(text) }
func Dim(text string) string     { return dimStyle.Render(text) }
func Movie(text string) string   { return movieStyle.Render(text) }
func Series(text string) string  { return seriesStyle.Render(text) }
func Path(text string) string    { return pathStyle.Render(text) }

func SuccessMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Success("✓")+" "+fmt.Sprintf(format, args...))
}

func ErrorMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Error("✗")+" "+fmt.Sprintf(format, args...))
}

func WarningMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Warning("⚠")+" "+fmt.Sprintf(format, args...))
}

func InfoMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Info("ℹ")+" "+fmt.Sprintf(format, args...))
}
