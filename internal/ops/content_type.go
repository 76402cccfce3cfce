package ops

import (
	"mime"
	"path"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultContentType = "text/plain"

// ContentType derives the media type from the key's extension. If the
// extension is unknown and sniff is set, the file content at fpath is
// inspected instead; otherwise DefaultContentType is used.
func ContentType(key, fpath string, sniff bool) string {
	if ctype := mime.TypeByExtension(path.Ext(key)); ctype != "" {
		return ctype
	}

	if sniff && fpath != "" {
		if mt, err := mimetype.DetectFile(fpath); err == nil && mt != nil {
			return mt.String()
		}
	}

	return DefaultContentType
}
