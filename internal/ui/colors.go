package ui

import (
	"regexp"
	"strings"
)

// ansi colors
const (
	colorDim     = "\033[90m"
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// json colors
const (
	colorKey     = colorCyan
	colorString  = colorGreen
	colorNumber  = colorYellow
	colorBool    = colorMagenta
	colorNull    = colorDim
	colorBracket = colorReset
)

var (
	pathParamRe = regexp.MustCompile(`\{([^}]+)\}`)
	ansiRe      = regexp.MustCompile("\033\\[[0-9;]*m")
)

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

func colorizeMethod(method string) string {
	method = strings.ToUpper(method)
	var color string
	switch method {
	case "GET":
		color = colorBlue
	case "POST":
		color = colorGreen
	case "PUT":
		color = colorYellow
	case "DELETE":
		color = colorRed
	case "PATCH":
		color = colorCyan
	case "HEAD":
		color = colorMagenta
	default:
		color = colorReset
	}
	return color + padRight(method, 7) + colorReset
}

// colorizeStatus colors a response code by class. "default" and ranges
// such as "4XX" are colored by their first digit.
func colorizeStatus(code string) string {
	var color string
	switch {
	case strings.HasPrefix(code, "2"):
		color = colorGreen
	case strings.HasPrefix(code, "4"):
		color = colorYellow
	case strings.HasPrefix(code, "5"):
		color = colorRed
	default:
		color = colorReset
	}
	return color + code + colorReset
}

func highlightPathParams(path string) string {
	return pathParamRe.ReplaceAllString(path, colorCyan+"{$1}"+colorReset)
}

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}
