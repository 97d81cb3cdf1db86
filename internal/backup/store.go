// Package backup snapshots files before the engine mutates them. One apply
// run produces one session; restoring a session writes every captured file
// back byte for byte. Sessions live under <repo>/.delog/backups and are
// serialized with msgpack so arbitrary file bytes round-trip without
// encoding concerns.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const sessionExt = ".bak.msgpack"

// Entry は退避された 1 ファイル分のスナップショット。
type Entry struct {
	Path    string `msgpack:"path"` // repo-relative, slash-separated
	Content []byte `msgpack:"content"`
	Mode    uint32 `msgpack:"mode"`
}

// Session は 1 回の apply 実行で退避されたファイル群。
type Session struct {
	ID        string    `msgpack:"id"`
	CreatedAt time.Time `msgpack:"created_at"`
	Entries   []Entry   `msgpack:"entries"`
}

type Store struct {
	repoDir string
	root    string
}

// Open returns the backup store rooted in repoDir. Nothing is created on
// disk until a session is saved.
func Open(repoDir string) *Store {
	return &Store{
		repoDir: repoDir,
		root:    filepath.Join(repoDir, ".delog", "backups"),
	}
}

// Dir returns the on-disk location of the store.
func (s *Store) Dir() string { return s.root }

// Begin opens a new in-memory session.
func (s *Store) Begin(now time.Time) *Session {
	if now.IsZero() {
		now = time.Now()
	}
	return &Session{
		ID:        now.UTC().Format("20060102-150405.000000000"),
		CreatedAt: now.UTC(),
	}
}

// Add captures the pre-edit content of one repo-relative file.
func (sess *Session) Add(rel string, content []byte, mode os.FileMode) {
	cp := make([]byte, len(content))
	copy(cp, content)
	sess.Entries = append(sess.Entries, Entry{
		Path:    filepath.ToSlash(rel),
		Content: cp,
		Mode:    uint32(mode.Perm()),
	})
}

// Save persists the session. Empty sessions are not written.
func (s *Store) Save(sess *Session) error {
	if sess == nil || len(sess.Entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("backup dir: %w", err)
	}
	data, err := msgpack.Marshal(sess)
	if err != nil {
		return fmt.Errorf("backup encode: %w", err)
	}
	path := filepath.Join(s.root, sess.ID+sessionExt)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("backup write: %w", err)
	}
	return nil
}

// Sessions lists stored session IDs, oldest first.
func (s *Store) Sessions() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, sessionExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, sessionExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Latest returns the most recent session ID, or "" when none exist.
func (s *Store) Latest() (string, error) {
	ids, err := s.Sessions()
	if err != nil || len(ids) == 0 {
		return "", err
	}
	return ids[len(ids)-1], nil
}

// Load reads one session back.
func (s *Store) Load(id string) (*Session, error) {
	data, err := os.ReadFile(filepath.Join(s.root, id+sessionExt))
	if err != nil {
		return nil, fmt.Errorf("backup read: %w", err)
	}
	var sess Session
	if err := msgpack.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("backup decode: %w", err)
	}
	return &sess, nil
}

// Restore writes every file of the session back into the repository and
// returns the number of files restored. Files restore to their captured
// content and permissions; a failure on one file aborts with the error so
// the caller can retry.
func (s *Store) Restore(id string) (int, error) {
	sess, err := s.Load(id)
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, e := range sess.Entries {
		full := filepath.Join(s.repoDir, filepath.FromSlash(e.Path))
		mode := os.FileMode(e.Mode)
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(full, e.Content, mode); err != nil {
			return restored, fmt.Errorf("restore %s: %w", e.Path, err)
		}
		restored++
	}
	return restored, nil
}
