package models

import "fmt"

type Progress struct {
	Completed int
	Total     int
	Percent   int
}

func (p Progress) String() string {
	return fmt.Sprintf("%d%% (%d/%d)", p.Percent, p.Completed, p.Total)
}

// Bar renders a fixed-width text progress bar.
func (p Progress) Bar(width int) string {
	if width <= 0 {
		return ""
	}
	filled := p.Percent * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}
