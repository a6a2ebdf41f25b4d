package driver

// Stage is the part of per-file analysis an Event refers to.
type Stage uint8

const (
	StageLoad Stage = iota
	StageCheck
)

// Status of a file in a progress Event.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusCached
	StatusError
)

// Event is sent on Options.Progress while files are analysed.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

func (o *Options) emit(file string, stage Stage, status Status) {
	if o.Progress == nil {
		return
	}
	o.Progress <- Event{File: file, Stage: stage, Status: status}
}
