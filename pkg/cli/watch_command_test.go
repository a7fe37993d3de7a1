//go:build !integration

package cli

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestRelevantWatchEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"yaml write", fsnotify.Event{Name: "doc.yaml", Op: fsnotify.Write}, true},
		{"yml create", fsnotify.Event{Name: "doc.yml", Op: fsnotify.Create}, true},
		{"yaml rename", fsnotify.Event{Name: "doc.yaml", Op: fsnotify.Rename}, true},
		{"uppercase extension", fsnotify.Event{Name: "doc.YAML", Op: fsnotify.Write}, true},
		{"chmod only", fsnotify.Event{Name: "doc.yaml", Op: fsnotify.Chmod}, false},
		{"remove only", fsnotify.Event{Name: "doc.yaml", Op: fsnotify.Remove}, false},
		{"editor swap file", fsnotify.Event{Name: ".doc.yaml.swp", Op: fsnotify.Write}, false},
		{"unrelated file", fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevantWatchEvent(tt.event); got != tt.want {
				t.Errorf("relevantWatchEvent(%s %v) = %v, want %v", tt.event.Name, tt.event.Op, got, tt.want)
			}
		})
	}
}
