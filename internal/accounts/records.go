package accounts

import (
	"bytes"
	"log/slog"
	"strings"
)

// parseRecords reads the username to hash mapping out of the raw file content.
// Malformed or duplicate lines are skipped, the first record of a username wins.
func parseRecords(path string, raw []byte) map[string]string {
	users := make(map[string]string)

	for i, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		username, hash, ok := strings.Cut(line, recordDelimiter)
		if !ok || hash == "" || ValidateUsername(username) != nil {
			slog.Warn("Skipped malformed account record.",
				"file", path,
				"line", i+1,
			)

			continue
		}

		if _, exists := users[username]; exists {
			slog.Warn("Skipped duplicate account record.",
				"file", path,
				"line", i+1,
				"user", username,
			)

			continue
		}

		users[username] = hash
	}

	return users
}

// appendRecord returns the raw content with a new record line appended, making
// sure the previous content is newline-terminated first.
func appendRecord(raw []byte, username string, hash []byte) []byte {
	var buf bytes.Buffer

	buf.Grow(len(raw) + len(username) + len(hash) + 2) //nolint:mnd
	buf.Write(raw)

	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		buf.WriteByte('\n')
	}

	buf.WriteString(username)
	buf.WriteString(recordDelimiter)
	buf.Write(hash)
	buf.WriteByte('\n')

	return buf.Bytes()
}
