package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	contractx "github.com/tanpawarit/agentic-bank/agent/contract"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileSink appends one JSON line per event to session_<id>.jsonl under dir.
type FileSink struct {
	dir string
	mu  sync.Mutex
}

var _ contractx.AuditSink = (*FileSink)(nil)

func NewFileSink(dir string) (*FileSink, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("audit directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Path returns the log file used for a session. Safe ids are used as is;
// any other id is sanitised and suffixed with a digest of the raw id after
// '~', which no safe id contains.
func (s *FileSink) Path(sessionID string) string {
	name := unsafeFileChars.ReplaceAllString(sessionID, "_")
	if name != sessionID || name == "" {
		sum := sha256.Sum256([]byte(sessionID))
		name += "~" + hex.EncodeToString(sum[:6])
	}
	return filepath.Join(s.dir, "session_"+name+".jsonl")
}

func (s *FileSink) Record(_ context.Context, event contractx.AuditEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.Path(event.SessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write audit file: %w", err)
	}
	return f.Close()
}
