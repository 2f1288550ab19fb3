// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package docs

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/mentor-tui/internal/state"
)

// settleDelay is how long a file must stay quiet before it is imported,
// so partially written files are not picked up mid-copy.
const settleDelay = 500 * time.Millisecond

// Watcher auto-imports files dropped into a directory as documents.
type Watcher struct {
	dir        string
	dispatcher *state.Dispatcher
	fsw        *fsnotify.Watcher
}

// NewWatcher watches dir for new study materials. The directory is
// created if missing.
func NewWatcher(dir string, d *state.Dispatcher) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{dir: dir, dispatcher: d, fsw: fsw}, nil
}

// Run processes events until the context is cancelled. Import failures
// surface as error toasts, never as a stopped watcher.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	// Pending paths, keyed by path, holding the last write time.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settleDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if w.ignorable(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("DOCS | watcher error | err=%v", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < settleDelay {
					continue
				}
				delete(pending, path)
				w.importFile(path)
			}
		}
	}
}

// ignorable filters hidden files, temp files, and directories.
func (w *Watcher) ignorable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") || strings.HasSuffix(base, "~") {
		return true
	}
	info, err := os.Stat(path)
	return err != nil || info.IsDir()
}

func (w *Watcher) importFile(path string) {
	// A document with the same name is already imported; skip re-imports
	// triggered by editors touching the file.
	name := filepath.Base(path)
	for _, d := range w.dispatcher.State().Documents {
		if d.Name == name {
			return
		}
	}

	doc, err := FromFile(path)
	if err != nil {
		log.Printf("DOCS | import failed | file=%s err=%v", name, err)
		w.dispatcher.Dispatch(state.AddToast{Toast: state.NewToast(state.ToastError, err.Error())})
		return
	}

	w.dispatcher.Dispatch(state.AddDocument{Document: doc})
	w.dispatcher.Dispatch(state.AddToast{Toast: state.NewToast(state.ToastSuccess, "Content indexed successfully")})
	log.Printf("DOCS | imported | file=%s kind=%s bytes=%d", name, doc.Kind, len(doc.Content))
}
