package deploy

import (
	"fmt"
	"io"
	"time"

	humanize "github.com/dustin/go-humanize"
	json "github.com/goccy/go-json"

	"github.com/studio1767/webotron/internal/etag"
	"github.com/studio1767/webotron/internal/ops"
)

// FileResult is the outcome for one local file.
type FileResult struct {
	Key         string     `json:"key"`
	Status      string     `json:"status"`
	Action      string     `json:"action"`
	Size        int64      `json:"size"`
	Parts       int64      `json:"parts,omitempty"`
	ModTime     *time.Time `json:"modTime,omitempty"`
	ETag        string     `json:"etag,omitempty"`
	ContentType string     `json:"contentType,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// DeleteResult is the outcome for one remote object without a local file.
type DeleteResult struct {
	Key    string `json:"key"`
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}

// Report collects per-file outcomes of a sync and the totals over them.
type Report struct {
	Bucket    string        `json:"bucket"`
	Root      string        `json:"root"`
	DryRun    bool          `json:"dryRun"`
	ChunkSize int64         `json:"chunkSize"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`

	RemoteObjects int   `json:"remoteObjects"`
	RemoteBytes   int64 `json:"remoteBytes"`

	Total         int   `json:"total"`
	Unchanged     int   `json:"unchanged"`
	New           int   `json:"new"`
	Modified      int   `json:"modified"`
	Unsupported   int   `json:"unsupported"`
	Uploaded      int   `json:"uploaded"`
	Planned       int   `json:"planned"`
	Failed        int   `json:"failed"`
	BytesUploaded int64 `json:"bytesUploaded"`

	Deleted        int `json:"deleted"`
	DeletesPlanned int `json:"deletesPlanned"`
	DeletesFailed  int `json:"deletesFailed"`

	Files   []FileResult   `json:"files"`
	Removed []DeleteResult `json:"removed,omitempty"`
}

func (r *Report) addFile(info *ops.EntryInfo) {
	r.Total++

	switch info.Status {
	case ops.StatusOk:
		r.Unchanged++
	case ops.StatusNew:
		r.New++
	case ops.StatusModified:
		r.Modified++
	case ops.StatusUnsupported:
		r.Unsupported++
	}

	switch info.Action {
	case ops.Uploaded:
		r.Uploaded++
		r.BytesUploaded += info.UploadedSize
	case ops.Planned:
		r.Planned++
	case ops.Failed:
		r.Failed++
	}

	result := FileResult{
		Key:         info.Key,
		Status:      info.Status.String(),
		Action:      info.Action.String(),
		Size:        info.RawSize,
		ETag:        info.Hash,
		ContentType: info.ContentType,
		Error:       info.ActionMessage,
	}
	if info.Hash != "" {
		result.Parts = etag.Chunks(info.RawSize, r.ChunkSize)
	}
	if info.ModTime != 0 {
		mtime := time.Unix(info.ModTime, 0)
		result.ModTime = &mtime
	}
	r.Files = append(r.Files, result)
}

func (r *Report) addDelete(result DeleteResult) {
	switch result.Action {
	case actionDeleted:
		r.Deleted++
	case actionPlanned:
		r.DeletesPlanned++
	case actionFailed:
		r.DeletesFailed++
	}
	r.Removed = append(r.Removed, result)
}

// Failures reports if any file or delete failed.
func (r *Report) Failures() int {
	return r.Failed + r.DeletesFailed
}

// UploadedKeys returns the keys that were uploaded, in completion order.
func (r *Report) UploadedKeys() []string {
	var keys []string
	for _, f := range r.Files {
		if f.Action == ops.Uploaded.String() {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// DeletedKeys returns the keys that were deleted.
func (r *Report) DeletedKeys() []string {
	var keys []string
	for _, d := range r.Removed {
		if d.Action == actionDeleted {
			keys = append(keys, d.Key)
		}
	}
	return keys
}

// MarshalJSON renders the duration as a string rather than nanoseconds.
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(&struct {
		Alias
		Duration string `json:"duration"`
	}{
		Alias:    Alias(r),
		Duration: r.Duration.String(),
	})
}

// WriteJSON writes the indented report to w.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// String returns the console summary.
func (r *Report) String() string {
	return fmt.Sprintf(
		"Sync Summary\n"+
			" files:\n"+
			"        total: %d\n"+
			"    unchanged: %d\n"+
			"          new: %d\n"+
			"     modified: %d\n"+
			"  unsupported: %d\n"+
			" actions:\n"+
			"     uploaded: %d (%s)\n"+
			"      planned: %d\n"+
			"       failed: %d\n"+
			"      deleted: %d (%d planned, %d failed)\n"+
			" duration: %s",
		r.Total,
		r.Unchanged,
		r.New,
		r.Modified,
		r.Unsupported,
		r.Uploaded, humanize.Bytes(uint64(r.BytesUploaded)),
		r.Planned,
		r.Failed,
		r.Deleted, r.DeletesPlanned, r.DeletesFailed,
		r.Duration.Round(time.Millisecond),
	)
}
