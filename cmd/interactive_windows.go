//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableVT turns on virtual terminal processing so arrow keys arrive as
// ANSI sequences and the lipgloss colors render on the Windows console.
func enableVT() {
	addConsoleMode(os.Stdin, windows.ENABLE_VIRTUAL_TERMINAL_INPUT)
	addConsoleMode(os.Stdout, windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}

// addConsoleMode sets flag on f's console. It reports false when f is not
// a console (redirected input or output).
func addConsoleMode(f *os.File, flag uint32) bool {
	h := windows.Handle(f.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	if mode&flag != 0 {
		return true
	}
	return windows.SetConsoleMode(h, mode|flag) == nil
}
