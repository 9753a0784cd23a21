package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"pkt.systems/pslog"
	"pkt.systems/repline/schema"
)

// SessionSnapshot captures one session's transcript and history for
// persistence across restarts.
type SessionSnapshot struct {
	Target    schema.TargetID `json:"target"`
	Source    string          `json:"source,omitempty"`
	Dedicated bool            `json:"dedicated,omitempty"`
	Lines     []string        `json:"lines"`
	Pending   string          `json:"pending,omitempty"`
	History   []string        `json:"history,omitempty"`
}

// Store persists session snapshots to disk, one file per target.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a persistent store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a persistent store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Load reads a session snapshot from disk.
func (s *Store) Load(target schema.TargetID) (SessionSnapshot, bool, error) {
	path := s.pathForTarget(target)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("state load miss", "target", target)
			}
			return SessionSnapshot{}, false, nil
		}
		if s.log != nil {
			s.log.Warn("state load failed", "target", target, "err", err)
		}
		return SessionSnapshot{}, false, err
	}
	var snapshot SessionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		if s.log != nil {
			s.log.Warn("state load failed", "target", target, "err", err)
		}
		return SessionSnapshot{}, false, err
	}
	if s.log != nil {
		s.log.Debug("state load ok", "target", target, "lines", len(snapshot.Lines))
	}
	return snapshot, true, nil
}

// Save writes a session snapshot to disk.
func (s *Store) Save(target schema.TargetID, snapshot SessionSnapshot) error {
	path := s.pathForTarget(target)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return s.saveFailed(target, err)
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return s.saveFailed(target, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "state-*.json")
	if err != nil {
		return s.saveFailed(target, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return s.saveFailed(target, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return s.saveFailed(target, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return s.saveFailed(target, err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return s.saveFailed(target, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return s.saveFailed(target, err)
	}
	if s.log != nil {
		s.log.Trace("state save ok", "target", target, "lines", len(snapshot.Lines))
	}
	return nil
}

// Delete removes a session snapshot from disk. Missing files are not an
// error.
func (s *Store) Delete(target schema.TargetID) error {
	path := s.pathForTarget(target)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		if s.log != nil {
			s.log.Warn("state delete failed", "target", target, "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Debug("state delete ok", "target", target)
	}
	return nil
}

func (s *Store) saveFailed(target schema.TargetID, err error) error {
	if s.log != nil {
		s.log.Warn("state save failed", "target", target, "err", err)
	}
	return err
}

func (s *Store) pathForTarget(target schema.TargetID) string {
	name := sanitize(string(target))
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(s.dir, name+".json")
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}
