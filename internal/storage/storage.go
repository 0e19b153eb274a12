package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alexflint/go-filemutex"

	"github.com/Tiliavir/punchclock/internal/model"
	"github.com/Tiliavir/punchclock/internal/timecalc"
)

// IOError reports a failed read or write of the store file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("storage error %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Store is the flat-file history of daily entries.
//
// The document is read from disk on every call; nothing is cached between
// calls. Read-modify-write cycles are serialized in-process by a mutex and
// across processes by a lock file next to the store.
type Store struct {
	path   string
	mu     sync.Mutex
	flock  *filemutex.FileMutex
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for recovery warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open prepares a Store rooted at path. The file itself is not created
// until Init or the first write.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, &IOError{Op: "creating directories for", Path: path, Err: err}
	}
	fm, err := filemutex.New(path + ".lock")
	if err != nil {
		return nil, &IOError{Op: "opening lock for", Path: path, Err: err}
	}
	s := &Store{
		path:   path,
		flock:  fm,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the location of the store file.
func (s *Store) Path() string { return s.path }

// Close releases the lock file handle.
func (s *Store) Close() error {
	return s.flock.Close()
}

func (s *Store) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flock.Lock(); err != nil {
		return &IOError{Op: "locking", Path: s.path, Err: err}
	}
	defer func() {
		if err := s.flock.Unlock(); err != nil {
			s.logger.Warn("unlock store", slog.String("path", s.path), slog.Any("error", err))
		}
	}()
	return fn()
}

// Init writes an empty document if the store file does not exist yet.
func (s *Store) Init() error {
	return s.withLock(func() error {
		_, err := os.Stat(s.path)
		if err == nil {
			return nil
		}
		if !os.IsNotExist(err) {
			return &IOError{Op: "checking", Path: s.path, Err: err}
		}
		s.logger.Info("creating store", slog.String("path", s.path))
		return s.save(model.Document{Entries: []model.DailyEntry{}})
	})
}

// Load returns the whole document. A missing or corrupt file yields an empty
// document.
func (s *Store) Load() (model.Document, error) {
	var doc model.Document
	err := s.withLock(func() error {
		var err error
		doc, err = s.load()
		return err
	})
	return doc, err
}

// Save replaces the whole document.
func (s *Store) Save(doc model.Document) error {
	return s.withLock(func() error { return s.save(doc) })
}

// ListEntries returns every entry in storage order, which is chronological
// because entries are only ever appended for new dates.
func (s *Store) ListEntries() ([]model.DailyEntry, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}

// GetOrCreateToday returns the entry for the current local date, appending
// and persisting an empty one if none exists.
func (s *Store) GetOrCreateToday() (model.DailyEntry, error) {
	var entry model.DailyEntry
	err := s.withLock(func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		key := timecalc.DateKey(s.now())
		if i := indexOf(doc.Entries, key); i >= 0 {
			entry = doc.Entries[i]
			return nil
		}
		entry = model.NewDailyEntry(key)
		doc.Entries = append(doc.Entries, entry)
		return s.save(doc)
	})
	return entry, err
}

// SetField stamps the named punch of today's entry with the current local
// time and persists the store. Calling it again overwrites the punch.
// Unknown names return a *model.InvalidFieldError without touching the store.
func (s *Store) SetField(name string) (model.DailyEntry, error) {
	field, err := model.ParseField(name)
	if err != nil {
		return model.DailyEntry{}, err
	}

	var entry model.DailyEntry
	err = s.withLock(func() error {
		doc, err := s.load()
		if err != nil {
			return err
		}
		now := s.now()
		key := timecalc.DateKey(now)
		i := indexOf(doc.Entries, key)
		if i < 0 {
			doc.Entries = append(doc.Entries, model.NewDailyEntry(key))
			i = len(doc.Entries) - 1
		}
		doc.Entries[i].Set(field, timecalc.ClockKey(now))
		entry = doc.Entries[i]
		return s.save(doc)
	})
	return entry, err
}

func indexOf(entries []model.DailyEntry, date string) int {
	for i, e := range entries {
		if e.Date == date {
			return i
		}
	}
	return -1
}

func (s *Store) load() (model.Document, error) {
	empty := model.Document{Entries: []model.DailyEntry{}}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return empty, nil
	}
	if err != nil {
		return model.Document{}, &IOError{Op: "reading", Path: s.path, Err: err}
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		// Lenient recovery: keep the bad bytes aside and carry on empty.
		backupPath := s.corruptBackupPath()
		if renameErr := os.Rename(s.path, backupPath); renameErr != nil {
			s.logger.Warn("backing up corrupt store", slog.String("path", s.path), slog.Any("error", renameErr))
		}
		s.logger.Warn("corrupt store recovered as empty",
			slog.String("path", s.path),
			slog.String("backup", backupPath),
			slog.Any("error", err))
		return empty, nil
	}
	if doc.Entries == nil {
		doc.Entries = []model.DailyEntry{}
	}
	return doc, nil
}

// corruptBackupPath returns a fresh "<path>.corrupt-<unix nanos>" name.
// Earlier backups are never overwritten.
func (s *Store) corruptBackupPath() string {
	base := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().UnixNano())
	candidate := base
	for n := 1; ; n++ {
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// save atomically writes doc: temp file then rename.
func (s *Store) save(doc model.Document) error {
	if doc.Entries == nil {
		doc.Entries = []model.DailyEntry{}
	}
	now := s.now()
	doc.LastUpdated = &now

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &IOError{Op: "marshalling", Path: s.path, Err: err}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return &IOError{Op: "writing", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "renaming", Path: tmpPath, Err: err}
	}
	return nil
}

// IsIOError reports whether err is, or wraps, an *IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
