package main

import "github.com/charmbracelet/lipgloss"

var (
	idStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")) // Grey

	okStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")) // Green

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red
)
