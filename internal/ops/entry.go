package ops

import "context"

// EntryStatus is the state of a local file compared to the bucket manifest.
// The scanner marks every regular file StatusNew; the comparer refines it.
type EntryStatus int

const (
	StatusNew EntryStatus = iota
	StatusModified
	StatusOk
	StatusUnsupported
)

func (s EntryStatus) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusOk:
		return "unchanged"
	case StatusUnsupported:
		return "unsupported"
	}
	return "unknown"
}

// OpAction represents any action that has been performed on a file.
type OpAction int

const (
	NoAction OpAction = iota
	Uploaded
	Planned
	Failed
)

func (a OpAction) String() string {
	switch a {
	case NoAction:
		return "none"
	case Uploaded:
		return "uploaded"
	case Planned:
		return "planned"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// EntryInfo is the meta-data of a local file plus the decisions the stages
// made about it. It is passed between stages so each can decide if its
// operation applies or can be skipped.
type EntryInfo struct {
	Status        EntryStatus
	Key           string
	Path          string
	Hash          string
	RawSize       int64
	UploadedSize  int64
	ModTime       int64
	ContentType   string
	Action        OpAction
	ActionMessage string
}

// candidate reports if the entry is a regular file nothing has failed on yet.
func (info *EntryInfo) candidate() bool {
	return info.Status != StatusUnsupported && info.Action != Failed
}

// send passes info downstream. It returns false once ctx is done, after which
// the stage must stop.
func send(ctx context.Context, out chan<- *EntryInfo, info *EntryInfo) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- info:
		return true
	}
}
