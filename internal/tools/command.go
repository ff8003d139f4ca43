package tools

import "strings"

// CommandLine renders an argv as a copy-pasteable shell command for logs.
func CommandLine(name string, args []string) string {
	var builder strings.Builder
	builder.WriteString(shellEscape(name))
	for _, arg := range args {
		builder.WriteByte(' ')
		builder.WriteString(shellEscape(arg))
	}
	return builder.String()
}

func shellEscape(value string) string {
	if value == "" {
		return "''"
	}
	if !strings.ContainsAny(value, " \t\n'\"\\$`*?[]{}()<>|&;#~!") {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}
