package main

import "github.com/charmbracelet/lipgloss"

var (
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	emphasisStyle = lipgloss.NewStyle().Bold(true)
)

func successText(s string) string  { return successStyle.Render(s) }
func errorText(s string) string    { return errorStyle.Render(s) }
func warningText(s string) string  { return warningStyle.Render(s) }
func infoText(s string) string     { return infoStyle.Render(s) }
func emphasisText(s string) string { return emphasisStyle.Render(s) }
