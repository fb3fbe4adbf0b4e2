package zip

import (
	"archive/zip"
	"bytes"
)

// Clip is one file destined for a review bundle.
type Clip struct {
	Filename string
	Data     []byte
}

// ArchiveClips packs clips into a single zip archive. Entries that cannot be
// created are skipped; a write failure aborts the whole archive.
func ArchiveClips(clips []Clip) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, clip := range clips {
		w, err := zw.Create(clip.Filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(clip.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
