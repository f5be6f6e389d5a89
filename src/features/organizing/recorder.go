package organizing

import "time"

// Recorder receives counters from the organizer. The metrics feature
// implements it.
type Recorder interface {
	FileMoved(category string)
	MoveFailed(kind string)
	EventReceived(kind string)
	ScanFinished(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) FileMoved(string)           {}
func (nopRecorder) MoveFailed(string)          {}
func (nopRecorder) EventReceived(string)       {}
func (nopRecorder) ScanFinished(time.Duration) {}
