package metrics

import "time"

// FileOutcome labels what happened to one content file.
type FileOutcome string

const (
	FileRendered FileOutcome = "rendered"
	FileCopied   FileOutcome = "copied"
	FileRemoved  FileOutcome = "removed"
	FileFailed   FileOutcome = "failed"
)

// WatchAction labels how the watch loop handled a settled path.
type WatchAction string

const (
	WatchProcess   WatchAction = "process"
	WatchCascade   WatchAction = "cascade"
	WatchIgnore    WatchAction = "ignore"
	WatchDirAdded  WatchAction = "dir_added"
	WatchFullBuild WatchAction = "full_build"
)

// RunnerResult labels the lifecycle of an external runner process.
type RunnerResult string

const (
	RunnerSucceeded RunnerResult = "succeeded"
	RunnerFailed    RunnerResult = "failed"
	RunnerSpawnFail RunnerResult = "spawn_failed"
)

// BuildOutcome labels the end state of a full build.
type BuildOutcome string

const (
	BuildSuccess  BuildOutcome = "success"
	BuildWarning  BuildOutcome = "warning"
	BuildCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for builds, the watch loop and runners.
// Implementations must be safe for concurrent use; runners report from their own goroutines.
type Recorder interface {
	IncFile(outcome FileOutcome)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	IncStaleRemoved()
	IncWatchEvent(action WatchAction)
	IncRunner(result RunnerResult)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncFile(FileOutcome)                {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)       {}
func (NoopRecorder) IncStaleRemoved()                   {}
func (NoopRecorder) IncWatchEvent(WatchAction)          {}
func (NoopRecorder) IncRunner(RunnerResult)             {}
