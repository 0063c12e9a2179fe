// Package color provides utilities for coloring text output in the terminal.
package color

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Enabled toggles ANSI output for every Color.
var Enabled = false

const (
	gray   = "\x1b[90m"
	green  = "\x1b[32m"
	red    = "\x1b[31m"
	yellow = "\x1b[93m"

	bold = "\x1b[1m"

	reset = "\x1b[0m"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Color represents styled text with a specific color and formatting styles.
type Color struct {
	text   string
	color  string
	styles []string
}

func Text(s ...string) *Color {
	return &Color{text: strings.Join(s, " ")}
}

func (c *Color) applyStyle(styles ...string) *Color {
	c.styles = append(c.styles, styles...)
	return c
}

func (c *Color) Bold() *Color {
	return c.applyStyle(bold)
}

func (c *Color) String() string {
	if !Enabled || (c.color == "" && len(c.styles) == 0) {
		return c.text
	}

	return strings.Join(c.styles, "") + c.color + c.text + reset
}

func Gray(arg ...any) *Color {
	return addColor(gray, arg...)
}

func Green(arg ...any) *Color {
	return addColor(green, arg...)
}

func Red(arg ...any) *Color {
	return addColor(red, arg...)
}

func Yellow(arg ...any) *Color {
	return addColor(yellow, arg...)
}

// Hex colors text with a "#RRGGBB" value as a 24-bit foreground. Invalid
// values leave the text uncolored.
func Hex(hex string, arg ...any) *Color {
	r, g, b, ok := ParseHex(hex)
	if !ok {
		return addColor("", arg...)
	}

	return addColor(fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b), arg...)
}

// ParseHex parses "#RRGGBB" or "#RGB".
func ParseHex(s string) (r, g, b uint8, ok bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}

	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func addColor(c string, arg ...any) *Color {
	return &Color{text: join(arg...), color: c}
}

func join(text ...any) string {
	str := make([]string, 0, len(text))
	for _, t := range text {
		str = append(str, fmt.Sprint(t))
	}

	return strings.Join(str, " ")
}

// RemoveANSICodes removes ANSI codes from a given string.
func RemoveANSICodes(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}
