package messages

import (
	"twinpane/internal/conflict"
	"twinpane/internal/fsys"
	"twinpane/internal/operation"
	"twinpane/internal/scheduler"
	"twinpane/internal/watch"
)

type ErrorMsg struct {
	Err error
}

// StatusMsg replaces the status line text
type StatusMsg struct {
	Text  string
	Level Level
}

// Level picks the style of a status line
type Level int

const (
	Info Level = iota
	Success
	Warning
	Failure
)

type ProgressMsg struct {
	Progress operation.Progress
}

type CompletionMsg struct {
	Completion scheduler.Completion
}

// ConflictMsg arrives when a running operation waits on a collision decision
type ConflictMsg struct {
	Pending *conflict.Pending
}

type DirectoryChangeMsg struct {
	Change watch.Change
}

type DrivesMsg struct {
	Mounts []fsys.Mount
	Error  error
}

// ExternalDoneMsg follows a viewer or editor process exiting
type ExternalDoneMsg struct {
	Program string
	Err     error
}
