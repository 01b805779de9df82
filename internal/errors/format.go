package errors

import (
	"fmt"
	"strings"
)

// FormatWithSource formats err followed by the lines of source around the
// error location, with a caret under the column. Errors without a location
// are formatted alone.
func FormatWithSource(err error, source string, radius int) string {
	if err == nil {
		return ""
	}
	var we *WikiError
	if !As(err, &we) || we.Line <= 0 {
		return err.Error()
	}

	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteByte('\n')
	for _, line := range contextLines(strings.Split(source, "\n"), we.Line-1, we.Column, radius) {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func contextLines(lines []string, index, column, radius int) []string {
	if index >= len(lines) {
		return nil
	}
	start := max(0, index-radius)
	end := min(len(lines), index+radius+1)
	width := len(fmt.Sprint(end))

	var out []string
	for i := start; i < end; i++ {
		prefix := "  "
		if i == index {
			prefix = "> "
		}
		out = append(out, fmt.Sprintf("%s%*d | %s", prefix, width, i+1, lines[i]))
		if i == index && column > 0 {
			out = append(out, fmt.Sprintf("  %s | %s^", strings.Repeat(" ", width), strings.Repeat(" ", column-1)))
		}
	}
	return out
}
