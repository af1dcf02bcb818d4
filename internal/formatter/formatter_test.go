package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotease/internal/matching"
	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
	th "github.com/desertthunder/spotease/internal/testing"
)

func sampleReport() *Report {
	hello := models.Track{ID: "s1", Name: "Hello", Artist: "Adele", Platform: models.Spotify}
	helloNE := models.Track{ID: "n2", Name: "Hello", Artist: "Adele", Platform: models.Netease}
	shape := models.Track{ID: "s2", Name: "Shape of You", Artist: "Ed Sheeran", Platform: models.Spotify}
	shapeNE := models.Track{ID: "n1", Name: "Shape Of You", Artist: "Ed Sheeran", Platform: models.Netease}
	pipe := models.Track{ID: "s3", Name: "A | B", Artist: "Nobody", Platform: models.Spotify}
	sunny := models.Track{ID: "n9", Name: "晴天", Artist: "周杰伦", Platform: models.Netease}

	pairs := []models.TrackPair{
		{Spotify: &hello, Netease: &helloNE, Confidence: 1, Persisted: true},
		{Spotify: &shape, Netease: &shapeNE, Confidence: 0.934},
		{Spotify: &pipe},
		{Netease: &sunny},
	}
	return &Report{Title: "link-1", Source: models.Spotify, Pairs: pairs, Summary: matching.Summarize(pairs)}
}

func TestStatus(t *testing.T) {
	r := sampleReport()
	want := []string{StatusPersisted, StatusMatched, StatusSpotifyOnly, StatusNeteaseOnly}
	for i, pair := range r.Pairs {
		if got := Status(pair); got != want[i] {
			t.Errorf("pair %d: expected %q, got %q", i, want[i], got)
		}
	}

	elsewhere := r.Pairs[1]
	elsewhere.PairedElsewhere = true
	if got := Status(elsewhere); got != StatusPairedElsewhere {
		t.Errorf("expected %q, got %q", StatusPairedElsewhere, got)
	}

	r.Summary.Elsewhere = 1
	text, err := ExportToText(r, Options{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(string(text), "1 matched tracks are already paired elsewhere") {
		t.Errorf("expected paired-elsewhere note, got %q", text)
	}

	if got := Confidence(r.Pairs[1]); got != "0.93" {
		t.Errorf("expected 0.93, got %q", got)
	}
	if got := Confidence(r.Pairs[2]); got != "" {
		t.Errorf("one-sided pairs have no confidence, got %q", got)
	}
	if got := Describe(nil); got != "" {
		t.Errorf("expected empty description, got %q", got)
	}
	if got := Describe(&models.Track{Name: "Untitled"}); got != "Untitled" {
		t.Errorf("expected bare name, got %q", got)
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"TXT", FormatText},
		{"csv", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{" json ", FormatJSON},
	}
	for _, tt := range tc {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseFormat("yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleReport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("CSV output should parse: %v", err)
		}
		if len(records) != 5 {
			t.Fatalf("expected header and 4 rows, got %d", len(records))
		}

		header := strings.Join(records[0], ",")
		if header != "Status,Spotify ID,Spotify,NetEase ID,NetEase,Confidence" {
			t.Errorf("CSV headers wrong, got: %s", header)
		}
		if got := strings.Join(records[2], ","); got != "matched,s2,Ed Sheeran - Shape of You,n1,Ed Sheeran - Shape Of You,0.93" {
			t.Errorf("unexpected matched row: %s", got)
		}
		if records[4][0] != StatusNeteaseOnly || records[4][1] != "" || records[4][3] != "n9" {
			t.Errorf("unexpected netease only row: %v", records[4])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleReport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# link-1",
			"**Source**: Spotify",
			"**Tracks**: 4",
			"**Persisted**: 1, **Matched**: 1, **Spotify only**: 1, **NetEase only**: 1",
			"| Status | Spotify | NetEase | Confidence |",
			"| persisted | Adele - Hello | Adele - Hello | 1.00 |",
			`| spotify only | Nobody - A \| B |  |  |`,
			"| netease only |  | 周杰伦 - 晴天 |  |",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleReport(), Options{})
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"Reconciliation: link-1",
			"Source: Spotify",
			"Tracks: 4 (persisted 1, matched 1, spotify only 1, netease only 1)",
			"  1. persisted    Adele - Hello <-> Adele - Hello (1.00)",
			"  3. spotify only Nobody - A | B",
			"  4. netease only 周杰伦 - 晴天",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Text missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToText Colorized", func(t *testing.T) {
		data, err := ExportToText(sampleReport(), Options{Colorize: true})
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}
		if !strings.Contains(string(data), "Adele - Hello") {
			t.Errorf("colorized output should keep track text, got:\n%s", data)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(sampleReport())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded struct {
			Title   string `json:"title"`
			Source  string `json:"source"`
			Pairs   []models.TrackPair
			Summary matching.Summary
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("JSON output should parse: %v", err)
		}
		if decoded.Title != "link-1" || decoded.Source != "SPOTIFY" || len(decoded.Pairs) != 4 {
			t.Errorf("unexpected JSON: %s", data)
		}
		if decoded.Summary.Total != 4 || !decoded.Pairs[0].Persisted {
			t.Errorf("summary and persisted flag should round trip, got %+v", decoded)
		}
	})

	t.Run("Export Unknown Format", func(t *testing.T) {
		if _, err := Export(sampleReport(), Format("yaml"), Options{}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestCandidatesAndPairings(t *testing.T) {
	t.Run("ExportCandidates", func(t *testing.T) {
		output := string(ExportCandidates([]models.Track{
			{ID: "n5", Name: "Hello", Artist: "Lionel Richie", Album: "Can't Slow Down", DurationMs: 251000},
			{ID: "n2", Name: "Hello", Artist: "Adele"},
		}))

		if !strings.Contains(output, "1. Lionel Richie - Hello (Can't Slow Down) [4:11] n5") {
			t.Errorf("unexpected first candidate, got:\n%s", output)
		}
		if !strings.Contains(output, "2. Adele - Hello [-] n2") {
			t.Errorf("unexpected second candidate, got:\n%s", output)
		}
	})

	t.Run("ExportCandidates Empty", func(t *testing.T) {
		if got := string(ExportCandidates(nil)); got != "No candidates found\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	pairing := models.NewPairing(1, "s1", "n2")
	pairing.SetID("p1")

	t.Run("ExportPairings", func(t *testing.T) {
		data, err := ExportPairings([]*models.Pairing{pairing})
		if err != nil {
			t.Fatalf("ExportPairings failed: %v", err)
		}
		output := string(data)
		if !strings.HasPrefix(output, "ID,Spotify ID,NetEase ID,Created\n") || !strings.Contains(output, "p1,s1,n2,") {
			t.Errorf("unexpected CSV:\n%s", output)
		}
	})

	t.Run("PairingsToJSON", func(t *testing.T) {
		data, err := PairingsToJSON([]*models.Pairing{pairing})
		if err != nil {
			t.Fatalf("PairingsToJSON failed: %v", err)
		}
		output := string(data)
		for _, want := range []string{`"id": "p1"`, `"sequence": 1`, `"spotify_track_id": "s1"`, `"netease_track_id": "n2"`} {
			if !strings.Contains(output, want) {
				t.Errorf("JSON missing %s, got:\n%s", want, output)
			}
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteReport", func(t *testing.T) {
		var buf strings.Builder
		if err := WriteReport(&buf, sampleReport(), FormatCSV, Options{}); err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "Status,") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("WriteReport Failing Writer", func(t *testing.T) {
		if err := WriteReport(&th.FWriter{}, sampleReport(), FormatText, Options{}); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("WriteReport Limited Writer", func(t *testing.T) {
		var buf strings.Builder
		w := th.NewLimitedWriter(0, 0, &buf)
		if err := WriteReport(&w, sampleReport(), FormatMarkdown, Options{}); err == nil {
			t.Error("expected write error once the limit is reached")
		}
	})

	t.Run("WriteReportFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.md")
		got, err := WriteReportFile(sampleReport(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteReportFile failed: %v", err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "# link-1") {
			t.Errorf("unexpected file content:\n%s", content)
		}
	})

	t.Run("WriteReportFile Default Path", func(t *testing.T) {
		dir := t.TempDir()
		r := sampleReport()
		r.Title = filepath.Join(dir, "link-1")

		got, err := WriteReportFile(r, FormatText, "")
		if err != nil {
			t.Fatalf("WriteReportFile failed: %v", err)
		}
		if got != r.Title+"_report.txt" {
			t.Errorf("unexpected default path %s", got)
		}
		if _, err := os.Stat(got); err != nil {
			t.Errorf("expected file at %s: %v", got, err)
		}
	})

	t.Run("WriteReportFile Bad Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.csv")
		if _, err := WriteReportFile(sampleReport(), FormatCSV, path); err == nil {
			t.Error("expected error writing into a missing directory")
		}
	})
}
