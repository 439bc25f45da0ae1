package ui

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/leaplua/pkg/core"
)

// broadcaster fans out changed source paths to every open /updates stream.
// Listeners that fall behind miss intermediate paths; each one re-lists the
// project on the next value it receives.
type broadcaster struct {
	mu        sync.RWMutex
	listeners map[chan string]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{
		listeners: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel receiving changed paths.
// The caller must call Unsubscribe when done.
func (b *broadcaster) Subscribe() chan string {
	ch := make(chan string, 1)
	b.mu.Lock()
	b.listeners[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (b *broadcaster) Unsubscribe(ch chan string) {
	b.mu.Lock()
	delete(b.listeners, ch)
	b.mu.Unlock()
	close(ch)
}

// Broadcast sends path to all listeners without blocking.
func (b *broadcaster) Broadcast(path string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.listeners {
		select {
		case ch <- path:
		default:
		}
	}
}

func isSourceFile(name string) bool {
	return strings.HasSuffix(name, core.SourceExt)
}

// listSources returns the slash-separated paths of the source files below
// root, relative to root and sorted.
func listSources(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSourceFile(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
