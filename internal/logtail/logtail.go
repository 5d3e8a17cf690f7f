package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error; maxLines <= 0 returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one log line with its level recognized.
type Entry struct {
	Raw   string
	Level slog.Level
	// Known is false when no level marker was found.
	Known bool
}

// maxLevelField bounds how far into a text line the level marker may sit,
// after the date and time.
const maxLevelField = 4

// Parse recognizes the level of a line written by any of nestview's log
// formats: tint text (INF), charm pretty (INFO) or slog JSON.
func Parse(line string) Entry {
	e := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var rec struct {
			Level string `json:"level"`
		}
		if json.Unmarshal([]byte(trimmed), &rec) == nil {
			e.Level, e.Known = levelFromToken(rec.Level)
		}
		return e
	}
	fields := strings.Fields(trimmed)
	if len(fields) > maxLevelField {
		fields = fields[:maxLevelField]
	}
	for _, field := range fields {
		if lvl, ok := levelFromToken(field); ok {
			e.Level, e.Known = lvl, true
			return e
		}
	}
	return e
}

func levelFromToken(tok string) (slog.Level, bool) {
	switch strings.ToUpper(strings.Trim(tok, "[]:")) {
	case "DBG", "DEBU", "DEBUG":
		return slog.LevelDebug, true
	case "INF", "INFO":
		return slog.LevelInfo, true
	case "WRN", "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERR", "ERRO", "ERROR":
		return slog.LevelError, true
	}
	return 0, false
}

// Filter keeps entries at or above min. Lines without a recognized level are
// kept so multi-line output is not split apart.
func Filter(entries []Entry, min slog.Level) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Known || e.Level >= min {
			out = append(out, e)
		}
	}
	return out
}

// ParseAll parses every line.
func ParseAll(lines []string) []Entry {
	out := make([]Entry, len(lines))
	for i, line := range lines {
		out[i] = Parse(line)
	}
	return out
}
