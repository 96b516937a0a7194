package config

import (
	"fmt"
	"os"
	"strings"
)

// SetEnvValue rewrites a single KEY=VALUE line in the env file at path,
// leaving every other line untouched and preserving the file's line-ending
// style. When the key is absent the line is appended; when the file is
// absent it is created with just that line.
func SetEnvValue(path, key, value string) error {
	line := key + "=" + value

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return os.WriteFile(path, []byte(line+"\n"), 0o600)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	eol := "\n"
	if strings.Contains(string(data), "\r\n") {
		eol = "\r\n"
	}

	text := string(data)
	trailingEOL := strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, eol)

	lines := strings.Split(text, eol)
	replaced := false
	for i, existing := range lines {
		trimmed := strings.TrimSpace(existing)
		if strings.HasPrefix(trimmed, key+"=") {
			if trimmed == line {
				return nil
			}
			lines[i] = line
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, line)
	}

	out := strings.Join(lines, eol)
	if trailingEOL || !replaced {
		out += eol
	}
	if err := os.WriteFile(path, []byte(out), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
