package artifact

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/echocat/slf4g"
	"github.com/google/uuid"

	"github.com/blaubaer/voice-recorder/pkg/audio"
	"github.com/blaubaer/voice-recorder/pkg/session"
)

const fileNameTimeLayout = "20060102150405"

// Directory writes every recording in its playable form into Path and
// publishes it as file:// URL. Recordings of earlier runs are picked up by
// Initialize.
type Directory struct {
	Path string

	mutex   sync.RWMutex
	entries map[uuid.UUID]*directoryEntry
}

type directoryEntry struct {
	file     string
	artifact session.Artifact
}

func NewDirectory(conf DirectoryConfiguration) *Directory {
	return &Directory{
		Path: conf.Path,
	}
}

func (this *Directory) Initialize() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if err := os.MkdirAll(this.Path, 0700); err != nil {
		return fmt.Errorf("cannot create artifact directory %q: %w", this.Path, err)
	}
	matches, err := filepath.Glob(filepath.Join(this.Path, "*_*.*"))
	if err != nil {
		return fmt.Errorf("cannot scan artifact directory %q: %w", this.Path, err)
	}

	this.entries = make(map[uuid.UUID]*directoryEntry, len(matches))
	for _, match := range matches {
		entry, ok := parseDirectoryEntry(match)
		if !ok {
			continue
		}
		this.entries[entry.artifact.ID] = entry
	}

	log.With("path", this.Path).
		With("recordings", len(this.entries)).
		Debug("Artifact directory scanned.")
	return nil
}

func parseDirectoryEntry(file string) (*directoryEntry, bool) {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	timestamp, plainId, ok := strings.Cut(strings.TrimSuffix(base, ext), "_")
	if !ok {
		return nil, false
	}
	startedAt, err := time.ParseInLocation(fileNameTimeLayout, timestamp, time.Local)
	if err != nil {
		return nil, false
	}
	id, err := uuid.Parse(plainId)
	if err != nil {
		return nil, false
	}
	contentType := mime.TypeByExtension(ext)
	switch {
	case strings.EqualFold(ext, ".wav"):
		contentType = audio.ContentTypeWAV
	case contentType == "":
		contentType = "application/octet-stream"
	}
	return &directoryEntry{
		file: file,
		artifact: session.Artifact{
			ID:          id,
			ContentType: contentType,
			StartedAt:   startedAt,
		},
	}, true
}

func (this *Directory) Publish(a *session.Artifact) (string, error) {
	data, contentType, err := a.Playable()
	if err != nil {
		return "", fmt.Errorf("cannot prepare recording %v for storage: %w", a.ID, err)
	}

	file := filepath.Join(this.Path, a.StartedAt.Local().Format(fileNameTimeLayout)+"_"+a.ID.String()+a.Extension())
	if err := os.WriteFile(file, data, 0600); err != nil {
		return "", fmt.Errorf("cannot write recording %v: %w", a.ID, err)
	}

	meta := *a
	meta.Data = nil
	meta.ContentType = contentType

	this.mutex.Lock()
	if this.entries == nil {
		this.entries = make(map[uuid.UUID]*directoryEntry)
	}
	this.entries[a.ID] = &directoryEntry{file: file, artifact: meta}
	this.mutex.Unlock()

	return fileURL(file)
}

func fileURL(file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path of %q: %w", file, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Get reads the recording back from disk in its playable form.
func (this *Directory) Get(id uuid.UUID) (*session.Artifact, bool) {
	this.mutex.RLock()
	entry, ok := this.entries[id]
	this.mutex.RUnlock()
	if !ok {
		return nil, false
	}

	data, err := os.ReadFile(entry.file)
	if err != nil {
		log.WithError(err).
			With("file", entry.file).
			Warn("Cannot read recording.")
		return nil, false
	}

	result := entry.artifact
	result.Data = data
	if result.URL == "" {
		result.URL, _ = fileURL(entry.file)
	}
	return &result, true
}

func (this *Directory) Resolve(plain string) (*session.Artifact, bool) {
	u, err := url.Parse(plain)
	if err != nil || u.Scheme != "file" {
		return nil, false
	}
	entry, ok := parseDirectoryEntry(filepath.FromSlash(u.Path))
	if !ok {
		return nil, false
	}
	return this.Get(entry.artifact.ID)
}

func (this *Directory) Revoke(id uuid.UUID) bool {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	entry, ok := this.entries[id]
	if !ok {
		return false
	}
	delete(this.entries, id)
	if err := os.Remove(entry.file); err != nil && !os.IsNotExist(err) {
		log.WithError(err).
			With("file", entry.file).
			Warn("Cannot remove recording.")
	}
	return true
}

// List returns the metadata of all recordings, oldest first, without data.
func (this *Directory) List() []*session.Artifact {
	this.mutex.RLock()
	defer this.mutex.RUnlock()

	result := make([]*session.Artifact, 0, len(this.entries))
	for _, entry := range this.entries {
		v := entry.artifact
		if v.URL == "" {
			v.URL, _ = fileURL(entry.file)
		}
		result = append(result, &v)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.Before(result[j].StartedAt)
	})
	return result
}
