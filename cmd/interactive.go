package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/term"
)

// picker moves a cursor over lines with the arrow keys; Enter calls open
// with the selected index in cooked mode.
type picker struct {
	lines  []string
	header string
	open   func(i int)

	selected int
	offset   int
	height   int
}

// window keeps the selection inside the visible page.
func (p *picker) window() (from, to int) {
	if p.height <= 0 || len(p.lines) <= p.height {
		return 0, len(p.lines)
	}
	if p.selected < p.offset {
		p.offset = p.selected
	}
	if p.selected >= p.offset+p.height {
		p.offset = p.selected - p.height + 1
	}
	return p.offset, p.offset + p.height
}

func (p *picker) up() bool {
	if p.selected == 0 {
		return false
	}
	p.selected--
	return true
}

func (p *picker) down() bool {
	if p.selected >= len(p.lines)-1 {
		return false
	}
	p.selected++
	return true
}

func (p *picker) draw(w io.Writer) {
	// raw mode needs explicit carriage returns
	fmt.Fprint(w, "\033[H\033[2J")
	if p.header != "" {
		fmt.Fprint(w, styles.Header.Render(p.header)+"\r\n")
	}
	from, to := p.window()
	for i := from; i < to; i++ {
		if i == p.selected {
			fmt.Fprint(w, styles.Title.Render("> "+p.lines[i])+"\r\n")
		} else {
			fmt.Fprint(w, "  "+p.lines[i]+"\r\n")
		}
	}
	fmt.Fprint(w, styles.Muted.Render(fmt.Sprintf("(%d/%d  ↑/↓ to navigate, Enter to view details, Esc to quit)", p.selected+1, len(p.lines))))
}

// run takes over the terminal until Esc or Ctrl-C.
func (p *picker) run() error {
	if len(p.lines) == 0 {
		return nil
	}
	if runtime.GOOS == "windows" {
		enableVT()
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("browse needs an interactive terminal")
	}
	if _, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		// header and footer lines
		p.height = h - 3
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("interactive selection not supported on this terminal: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	reader := bufio.NewReader(os.Stdin)
	out := os.Stdout

	enter := func() error {
		_ = term.Restore(fd, oldState)
		fmt.Fprintln(out)
		p.open(p.selected)

		fmt.Fprint(out, "\n(press Enter to return)")
		_, _ = bufio.NewReader(os.Stdin).ReadBytes('\n')

		if oldState, err = term.MakeRaw(fd); err != nil {
			return err
		}
		reader = bufio.NewReader(os.Stdin)
		p.draw(out)
		return nil
	}

	p.draw(out)
	for {
		b1, err := reader.ReadByte()
		if err != nil {
			return nil
		}
		// Windows console arrows arrive as 0 or 224 followed by a code
		if b1 == 0 || b1 == 224 {
			b2, _ := reader.ReadByte()
			switch b2 {
			case 72:
				if p.up() {
					p.draw(out)
				}
			case 80:
				if p.down() {
					p.draw(out)
				}
			case 13:
				if err := enter(); err != nil {
					return err
				}
			}
			continue
		}

		switch b1 {
		case 27: // ESC or CSI sequence
			if reader.Buffered() == 0 {
				fmt.Fprint(out, "\r\n")
				return nil
			}
			b2, _ := reader.ReadByte()
			if b2 != '[' || reader.Buffered() == 0 {
				continue
			}
			b3, _ := reader.ReadByte()
			switch b3 {
			case 'A':
				if p.up() {
					p.draw(out)
				}
			case 'B':
				if p.down() {
					p.draw(out)
				}
			}
		case 'k':
			if p.up() {
				p.draw(out)
			}
		case 'j':
			if p.down() {
				p.draw(out)
			}
		case '\r', '\n':
			if err := enter(); err != nil {
				return err
			}
		case 3, 'q': // Ctrl-C
			fmt.Fprint(out, "\r\n")
			return nil
		}
	}
}
