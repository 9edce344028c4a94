package bmeta

import (
	"fmt"
	"io"
)

const defaultBuildMeta = "N/A" // Значение по умолчанию

// Print Распечатывает версию, дату и комит сборки в w. Пустые значения заменяются на N/A.
func Print(w io.Writer, version, date, commit string) {
	_, _ = fmt.Fprintf(w, "Build version: %s\n", orDefault(version))
	_, _ = fmt.Fprintf(w, "Build date: %s\n", orDefault(date))
	_, _ = fmt.Fprintf(w, "Build commit: %s\n", orDefault(commit))
}

func orDefault(v string) string {
	if v == "" {
		return defaultBuildMeta
	}
	return v
}
