// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/spotease/internal/models"
	"github.com/desertthunder/spotease/internal/shared"
)

// MockCatalog is a test double for [services.Catalog] backed by in-memory playlists.
type MockCatalog struct {
	mu sync.Mutex

	PlatformValue models.Platform
	Tracks        map[string][]models.Track // playlist id -> tracks
	Results       map[string][]models.Track // search query -> results
	PlaylistList  []models.Playlist

	TracksErr error
	AddErr    error
	SearchErr error

	Added       map[string][]string // playlist id -> ids passed to AddTracks
	Queries     []string
	TracksCalls int
}

// NewMockCatalog creates an empty catalog for platform.
func NewMockCatalog(platform models.Platform) *MockCatalog {
	return &MockCatalog{
		PlatformValue: platform,
		Tracks:        map[string][]models.Track{},
		Results:       map[string][]models.Track{},
		Added:         map[string][]string{},
	}
}

func (m *MockCatalog) Name() string { return "mock " + m.PlatformValue.Label() }
func (m *MockCatalog) Platform() models.Platform { return m.PlatformValue }

func (m *MockCatalog) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TracksCalls++
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return append([]models.Track(nil), m.Tracks[playlistID]...), nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Added[playlistID] = append(m.Added[playlistID], trackIDs...)
	for _, id := range trackIDs {
		m.Tracks[playlistID] = append(m.Tracks[playlistID], models.Track{ID: id, Platform: m.PlatformValue})
	}
	return nil
}

func (m *MockCatalog) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	results := m.Results[query]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockCatalog) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return m.PlaylistList, nil
}

// AddedTo returns the ids added to playlistID.
func (m *MockCatalog) AddedTo(playlistID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Added[playlistID]...)
}

// MemoryPairingStore is an in-memory [models.PairingStore] with the same uniqueness rules as the SQLite repository.
type MemoryPairingStore struct {
	mu       sync.Mutex
	pairings []*models.Pairing
	seq      int

	CreateErr error
	FindErr   error
}

func NewMemoryPairingStore(pairs ...[2]string) *MemoryPairingStore {
	s := &MemoryPairingStore{}
	for _, p := range pairs {
		if _, err := s.Create(context.Background(), p[0], p[1]); err != nil {
			panic(err)
		}
	}
	return s
}

func (s *MemoryPairingStore) Create(ctx context.Context, spotifyTrackID, neteaseTrackID string) (*models.Pairing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if spotifyTrackID == "" || neteaseTrackID == "" {
		return nil, fmt.Errorf("%w: both spotify and netease track ids are required", shared.ErrInvalidArgument)
	}
	for _, p := range s.pairings {
		if p.SpotifyTrackID() == spotifyTrackID {
			return nil, fmt.Errorf("%w: spotify track %s is already paired with another track", shared.ErrAlreadyPaired, spotifyTrackID)
		}
		if p.NeteaseTrackID() == neteaseTrackID {
			return nil, fmt.Errorf("%w: netease track %s is already paired with another track", shared.ErrAlreadyPaired, neteaseTrackID)
		}
	}

	s.seq++
	p := models.NewPairing(s.seq, spotifyTrackID, neteaseTrackID)
	p.SetID(fmt.Sprintf("pairing-%d", s.seq))
	s.pairings = append(s.pairings, p)
	return p, nil
}

func (s *MemoryPairingStore) FindAll(ctx context.Context) ([]*models.Pairing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	return append([]*models.Pairing(nil), s.pairings...), nil
}

func (s *MemoryPairingStore) DeleteByEitherID(ctx context.Context, spotifyTrackID, neteaseTrackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spotifyTrackID == "" && neteaseTrackID == "" {
		return fmt.Errorf("%w: a spotify or netease track id is required", shared.ErrInvalidArgument)
	}

	kept := s.pairings[:0]
	for _, p := range s.pairings {
		if (spotifyTrackID == "" || p.SpotifyTrackID() == spotifyTrackID) &&
			(neteaseTrackID == "" || p.NeteaseTrackID() == neteaseTrackID) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == len(s.pairings) {
		return fmt.Errorf("%w: no pairing references spotify=%q netease=%q", shared.ErrNotFound, spotifyTrackID, neteaseTrackID)
	}
	s.pairings = kept
	return nil
}

// Len returns the number of stored pairings.
func (s *MemoryPairingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pairings)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
