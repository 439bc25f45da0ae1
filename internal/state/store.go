// Package state provides the persistent compile cache for leaplua.
// It records compile runs and the Lua produced for each source file, keyed
// by the file's content hash and the options it was compiled with.
package state

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/leapstack-labs/leaplua/pkg/diag"
)

// Store is the interface implemented by compile caches.
type Store interface {
	GetUnit(ctx context.Context, path, optionsKey string) (*Unit, error)
	PutUnit(ctx context.Context, u *Unit) error
	ClearUnits(ctx context.Context) (int64, error)

	CreateRun(ctx context.Context, id, target, libraryImport string) (*Run, error)
	CompleteRun(ctx context.Context, id string, stats RunStats) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	Close() error
}

// Unit is the cached compilation of one source file.
type Unit struct {
	Path        string
	OptionsKey  string
	ContentHash string
	Lua         string
	Helpers     []string
	Diagnostics []diag.Diagnostic
	UpdatedAt   time.Time
}

// Run is one invocation of the compile command.
type Run struct {
	ID            string     `json:"id" yaml:"id"`
	Target        string     `json:"target" yaml:"target"`
	LibraryImport string     `json:"library_import" yaml:"library_import"`
	StartedAt     time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	RunStats      `yaml:",inline"`
}

// RunStats counts the files of a finished run.
type RunStats struct {
	Files  int `json:"files" yaml:"files"`
	Failed int `json:"failed" yaml:"failed"`
	Cached int `json:"cached" yaml:"cached"`
}

// ContentHash returns the hex SHA-256 of src.
func ContentHash(src []byte) string {
	h := sha256.Sum256(src)
	return hex.EncodeToString(h[:])
}
