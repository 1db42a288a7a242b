package opml

import (
	"archive/zip"
	"io"
	"strings"

	"github.com/andynu/outline/internal/outline"
)

// ZipEntry is one *.opml member of a zip-backup archive, parsed and ready
// to become its own document.
type ZipEntry struct {
	Name  string
	Nodes []ImportedNode
}

// ParseZipBackup opens a zip archive (e.g. a Dynalist full-backup export)
// and parses every *.opml entry, per spec §4.5's zip-backup import. Entries
// that fail to parse are reported individually rather than aborting the
// whole archive, since a backup with one corrupt file still has value in
// the rest.
func ParseZipBackup(r io.ReaderAt, size int64) ([]ZipEntry, []error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, []error{outline.NewError(outline.ErrParse, "zip backup", err)}
	}

	var entries []ZipEntry
	var errs []error
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(strings.ToLower(f.Name), ".opml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			errs = append(errs, outline.NewError(outline.ErrIO, f.Name, err))
			continue
		}
		nodes, perr := Parse(rc)
		rc.Close()
		if perr != nil {
			errs = append(errs, perr)
			continue
		}
		entries = append(entries, ZipEntry{Name: f.Name, Nodes: nodes})
	}
	return entries, errs
}
