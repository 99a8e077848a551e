package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"staffhub-report/internal/models"
)

// ArtifactStore manages generated report files: writing them to the artifact
// directory, producing download URLs, deleting each file after a grace
// period once delivery has been attempted, and sweeping out anything older
// than the global retention threshold.
type ArtifactStore struct {
	dir     string
	baseURL string

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewArtifactStore creates the artifact directory if needed
func NewArtifactStore(dir, baseURL string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &ArtifactStore{
		dir:     dir,
		baseURL: baseURL,
		stopCh:  make(chan struct{}),
	}, nil
}

// Save writes the artifact's rendered bytes to disk and returns the path
func (s *ArtifactStore) Save(a *models.Artifact) (string, error) {
	path := filepath.Join(s.dir, filepath.Base(a.FileName))
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}

// Path resolves an artifact file name to its on-disk path, rejecting
// anything that escapes the artifact directory
func (s *ArtifactStore) Path(fileName string) (string, error) {
	cleaned := filepath.Base(fileName)
	if cleaned == "." || cleaned == ".." || cleaned != fileName {
		return "", fmt.Errorf("invalid artifact name: %s", fileName)
	}
	path := filepath.Join(s.dir, cleaned)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("artifact not found: %w", err)
	}
	return path, nil
}

// DownloadURL builds the action URL delivered with DOWNLOAD_LINK notifications
func (s *ArtifactStore) DownloadURL(fileName string) string {
	return s.baseURL + "/api/artifacts/download/" + filepath.Base(fileName)
}

// DeleteAfter schedules a single-shot deletion of one artifact after the
// delivery grace period
func (s *ArtifactStore) DeleteAfter(path string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("WARNING: Failed to remove artifact %s: %v", path, err)
		}
	})
}

// StartSweep launches the periodic age-based sweep over the artifact
// directory. The sweep uses the global maxAge threshold.
func (s *ArtifactStore) StartSweep(interval, maxAge time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed, err := s.Sweep(time.Now().Add(-maxAge))
				if err != nil {
					log.Printf("ERROR: Artifact sweep failed: %v", err)
				} else if removed > 0 {
					log.Printf("Artifact sweep removed %d expired file(s)", removed)
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Sweep deletes artifacts modified before the cutoff and reports how many
// were removed
func (s *ArtifactStore) Sweep(cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read artifact directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(s.dir, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Printf("WARNING: Failed to sweep artifact %s: %v", path, err)
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// Stop halts the periodic sweep
func (s *ArtifactStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}
