// package formatter provides functions to export playlist snapshots to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/mixtape/internal/editor"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the short names and a few common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// ExportToCSV converts a snapshot to CSV with columns: Position, Title, Artist, Duration, Service, Source ID
func ExportToCSV(s editor.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Duration", "Service", "Source ID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range s.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.Title,
			track.Artist,
			strconv.Itoa(track.DurationSeconds),
			string(track.Service),
			track.SourceID,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a snapshot to a Markdown document
func ExportToMarkdown(s editor.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title(s))
	fmt.Fprintf(&buf, "**Media**: %s\n", s.ModeLabel)
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(s.Tracks))
	fmt.Fprintf(&buf, "**Length**: %s / %s\n\n", shared.FormatDuration(s.Total), shared.FormatDuration(s.Capacity))

	buf.WriteString("## Tracks\n\n")
	for i, track := range s.Tracks {
		artist := ""
		if track.Artist != "" {
			artist = track.Artist + " - "
		}
		fmt.Fprintf(&buf, "%d. %s%s [%s] `%s`\n", i+1, artist, track.Title, shared.FormatDuration(track.DurationSeconds), track.Service)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a snapshot to plain text
func ExportToText(s editor.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s (%s)\n", title(s), s.ModeLabel)
	fmt.Fprintf(&buf, "Length: %s / %s (%s remaining)\n", shared.FormatDuration(s.Total), shared.FormatDuration(s.Capacity), shared.FormatDuration(s.Remaining))
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(s.Tracks))

	for i, track := range s.Tracks {
		fmt.Fprintf(&buf, "%2d. %-40s %s\n", i+1, label(track.Artist, track.Title), shared.FormatDuration(track.DurationSeconds))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the snapshot as indented JSON
func ExportToJSON(s editor.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders s in the given format.
func Export(s editor.Snapshot, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(s)
	case FormatMarkdown:
		return ExportToMarkdown(s)
	case FormatText:
		return ExportToText(s)
	case FormatJSON:
		return ExportToJSON(s)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
	}
}

// Write renders s and writes it to w.
func Write(w io.Writer, s editor.Snapshot, f Format) error {
	data, err := Export(s, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteFile renders s to path. An empty path defaults to mixtape.{format}.
func WriteFile(s editor.Snapshot, f Format, path string) (string, error) {
	if path == "" {
		path = "mixtape." + string(f)
	}

	data, err := Export(s, f)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

func title(s editor.Snapshot) string {
	if s.Title == "" {
		return "Untitled Mixtape"
	}
	return s.Title
}

func label(artist, title string) string {
	if artist == "" {
		return title
	}
	return artist + " - " + title
}
