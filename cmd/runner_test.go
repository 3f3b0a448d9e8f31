package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	tu "github.com/desertthunder/mixtape/internal/testing"
)

func testRunner(t *testing.T, driver string) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Store.Driver = driver
	config.Database.Path = filepath.Join(t.TempDir(), "mixtape.db")
	config.Redis.Addr = ""

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: services.NewMockCatalog(),
		Logger:  shared.NewLogger(&bytes.Buffer{}),
		Output:  output,
	})
	return runner, output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			catalog := services.NewMockCatalog()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Catalog:    catalog,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.catalogService() != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("without API key uses mock catalog", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.YouTube.APIKey = ""
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(&bytes.Buffer{})})

			if _, ok := runner.catalogService().(*services.MockCatalog); !ok {
				t.Errorf("expected mock catalog, got %T", runner.catalogService())
			}
		})

		t.Run("with API key uses YouTube catalog", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.YouTube.APIKey = "test-key"
			runner := NewRunner(RunnerOpts{Config: config})

			if _, ok := runner.catalogService().(*services.YouTubeCatalog); !ok {
				t.Errorf("expected YouTube catalog, got %T", runner.catalogService())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.NewLimitedWriter(1, 0, &bytes.Buffer{})})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "serve", "catalog", "playlist", "tui"} {
			if !names[want] {
				t.Errorf("expected %q to be registered", want)
			}
		}
	})
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown driver", func(t *testing.T) {
		runner, _ := testRunner(t, "mongo")

		_, err := runner.openSession(ctx, false)
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		runner, _ := testRunner(t, "memory")
		runner.config.Playlist.Mode = "vinyl"

		_, err := runner.openSession(ctx, false)
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("memory store starts empty", func(t *testing.T) {
		runner, _ := testRunner(t, "memory")

		s, err := runner.openSession(ctx, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer s.Close()

		snapshot := s.editor.Snapshot()
		if len(snapshot.Tracks) != 0 {
			t.Errorf("expected empty playlist, got %d tracks", len(snapshot.Tracks))
		}
		if snapshot.Capacity != models.ModeCD.Capacity() {
			t.Errorf("capacity = %d, want %d", snapshot.Capacity, models.ModeCD.Capacity())
		}
	})

	t.Run("sqlite store survives a restart", func(t *testing.T) {
		runner, _ := testRunner(t, "sqlite")

		first, err := runner.openSession(ctx, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, title := range []string{"Teardrop", "Royals", "Team"} {
			if _, err := first.editor.AddTrack(ctx, models.NewTrack(title, "", 200, models.ServiceMock)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if err := first.editor.DeleteTrack(ctx, 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first.Close()

		second, err := runner.openSession(ctx, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer second.Close()

		snapshot := second.editor.Snapshot()
		if len(snapshot.Tracks) != 2 {
			t.Fatalf("expected 2 tracks after reload, got %d", len(snapshot.Tracks))
		}
		if snapshot.Tracks[0].Title != "Teardrop" || snapshot.Tracks[1].Title != "Team" {
			t.Errorf("unexpected order: %s, %s", snapshot.Tracks[0].Title, snapshot.Tracks[1].Title)
		}
		if snapshot.Total != 400 {
			t.Errorf("total = %d, want 400", snapshot.Total)
		}
		if snapshot.CanUndo {
			t.Error("expected history to start empty after reload")
		}
	})
}

func TestCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("catalog search", func(t *testing.T) {
		runner, output := testRunner(t, "memory")

		if err := catalogCommand(runner).Run(ctx, []string{"catalog", "search", "daft"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, `Mock results for "daft"`) {
			t.Errorf("expected header, got %q", result)
		}
		if !strings.Contains(result, "Daft Punk - Get Lucky [6:09] SP") {
			t.Errorf("expected Get Lucky in results, got %q", result)
		}
	})

	t.Run("catalog search as JSON", func(t *testing.T) {
		runner, output := testRunner(t, "memory")

		if err := catalogCommand(runner).Run(ctx, []string{"catalog", "search", "--json", "--pretty=false", "lorde"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), `"title":"Royals"`) {
			t.Errorf("expected Royals in JSON, got %q", output.String())
		}
	})

	t.Run("playlist show", func(t *testing.T) {
		runner, output := testRunner(t, "memory")

		if err := playlistCommand(runner).Run(ctx, []string{"playlist", "show"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Playlist: My Summer Mix (74min)") {
			t.Errorf("expected playlist header, got %q", result)
		}
		if !strings.Contains(result, "Tracks: 0") {
			t.Errorf("expected empty track count, got %q", result)
		}
	})

	t.Run("playlist export to file", func(t *testing.T) {
		runner, output := testRunner(t, "sqlite")

		s, err := runner.openSession(ctx, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := s.editor.AddTrack(ctx, models.NewTrack("Archangel", "Burial", 230, models.ServiceBandcamp)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s.Close()

		path := filepath.Join(t.TempDir(), "mix.csv")
		if err := playlistCommand(runner).Run(ctx, []string{"playlist", "export", "--format", "csv", "--output", path}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		tu.AssertFileExists(t, path)
		if content := tu.MustReadFile(t, path); !strings.Contains(content, "1,Archangel,Burial,230,BC,") {
			t.Errorf("unexpected CSV content: %q", content)
		}
		if !strings.Contains(output.String(), "Exported 1 tracks") {
			t.Errorf("expected confirmation, got %q", output.String())
		}
	})

	t.Run("playlist export rejects unknown format", func(t *testing.T) {
		runner, _ := testRunner(t, "memory")

		err := playlistCommand(runner).Run(ctx, []string{"playlist", "export", "--format", "xml"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("playlist import", func(t *testing.T) {
		runner, output := testRunner(t, "memory")
		path := filepath.Join(t.TempDir(), "queries.txt")
		if err := os.WriteFile(path, []byte("# mix\nget lucky\nroyals\nzzz\n"), 0644); err != nil {
			t.Fatalf("failed to write queries: %v", err)
		}

		if err := playlistCommand(runner).Run(ctx, []string{"playlist", "import", "--rate", "1000", path}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Imported 2 of 3 (1 not found, 0 did not fit, 0 failed)") {
			t.Errorf("expected import summary, got %q", result)
		}
		if !strings.Contains(result, "Length: 9:19 / 74:00") {
			t.Errorf("expected length line, got %q", result)
		}
	})

	t.Run("playlist import without file", func(t *testing.T) {
		runner, _ := testRunner(t, "memory")

		err := playlistCommand(runner).Run(ctx, []string{"playlist", "import"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("setup config", func(t *testing.T) {
		runner, _ := testRunner(t, "memory")
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := setupCommand(runner).Run(ctx, []string{"setup", "config", "--output", path}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, path)

		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("written config does not load: %v", err)
		}
		if err := setupCommand(runner).Run(ctx, []string{"setup", "config", "--output", path}); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("setup database", func(t *testing.T) {
		runner, _ := testRunner(t, "sqlite")

		if err := setupCommand(runner).Run(ctx, []string{"setup", "database"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, runner.config.Database.Path)
	})
}
