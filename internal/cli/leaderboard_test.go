package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"geoplay-service/internal/app"
	"geoplay-service/internal/domain"
	"geoplay-service/internal/infra/sqlite"
	"github.com/rs/zerolog"
)

func TestWriteLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	entries := []domain.LeaderboardEntry{
		{ID: "a", Score: 120, Accuracy: 92, Mode: domain.ModeCountry, Difficulty: domain.DifficultyHard, Date: time.Date(2024, 11, 22, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Score: 45, Accuracy: 60, Mode: domain.ModeCity, Difficulty: domain.DifficultyEasy, Date: time.Date(2024, 11, 23, 0, 0, 0, 0, time.UTC)},
	}
	if err := writeLeaderboard(&buf, entries); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "1") || !strings.Contains(lines[1], "120") || !strings.Contains(lines[1], "2024-11-22") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}

func TestPrintLeaderboardFromSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "board.db")
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	board := app.NewLeaderboard(store, zerolog.Nop())
	if _, err := board.Record(ctx, domain.LeaderboardEntry{ID: "x", Score: 77, Mode: domain.ModeState, Difficulty: domain.DifficultyMedium, Accuracy: 88}); err != nil {
		t.Fatalf("record: %v", err)
	}
	_ = store.Close()

	t.Setenv("GEOPLAY_STORAGE_DRIVER", "sqlite")
	t.Setenv("GEOPLAY_SQLITE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")

	var buf bytes.Buffer
	if err := printLeaderboard(ctx, &buf, filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "77") {
		t.Fatalf("expected recorded score in output, got %q", buf.String())
	}
}

func TestPrintLeaderboardEmptyMemory(t *testing.T) {
	var buf bytes.Buffer
	if err := printLeaderboard(context.Background(), &buf, ""); err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "no games recorded" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
