package ui2d

import "time"

// Console shows recent messages in the bottom-left corner, newest last.
// Lines disappear after TTL.
type Console struct {
	MaxLines int
	TTL      time.Duration

	lines []consoleLine
}

type consoleLine struct {
	text    string
	expires time.Time
}

// NewConsole creates a console keeping up to maxLines for ttl each.
func NewConsole(maxLines int, ttl time.Duration) *Console {
	return &Console{MaxLines: maxLines, TTL: ttl}
}

// Push appends msg. The oldest line is dropped when the console is full.
func (c *Console) Push(msg string, now time.Time) {
	c.lines = append(c.lines, consoleLine{text: msg, expires: now.Add(c.TTL)})
	if c.MaxLines > 0 && len(c.lines) > c.MaxLines {
		c.lines = c.lines[len(c.lines)-c.MaxLines:]
	}
}

// Lines returns the messages still visible at now.
func (c *Console) Lines(now time.Time) []string {
	c.expire(now)
	out := make([]string, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.text
	}
	return out
}

func (c *Console) expire(now time.Time) {
	n := 0
	for _, l := range c.lines {
		if now.Before(l.expires) {
			c.lines[n] = l
			n++
		}
	}
	c.lines = c.lines[:n]
}

// Draw paints the visible lines on canvas.
func (c *Console) Draw(canvas Canvas, now time.Time) {
	lines := c.Lines(now)
	if len(lines) == 0 {
		return
	}
	_, screenH := canvas.GetScreenSize()
	_, lineH := canvas.MeasureText("M", textScale)
	lineH += 2

	var width float32
	for _, l := range lines {
		w, _ := canvas.MeasureText(l, textScale)
		width = max(width, w)
	}

	h := lineH*float32(len(lines)) + padding
	y := float32(screenH) - h - padding
	canvas.DrawRect(padding, y, width+padding*2, h, ColorPanelBg)
	for i, l := range lines {
		canvas.DrawText(padding*2, y+padding/2+float32(i)*lineH, l, textScale, ColorWarning)
	}
}
