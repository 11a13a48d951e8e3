package efs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"

	"github.com/moffa90/go-sahara/images"
	"github.com/moffa90/go-sahara/protocol"
)

// DefaultDir is where the modem's EFS images are loaded from at boot.
const DefaultDir = "/tombstones/qcks"

// UnknownTokenError is returned for a filename that is not a sync token.
// The loader checks the allow-list first, so this only fires on direct use.
type UnknownTokenError struct {
	Filename [protocol.FilenameSize]byte
}

func (e *UnknownTokenError) Error() string {
	return fmt.Sprintf("no EFS file for %q", protocol.FilenameString(e.Filename))
}

// tokenImages maps each sync token to the image that is loaded from the synced file.
var tokenImages = map[[protocol.FilenameSize]byte]uint32{
	protocol.SyncEFS1: images.IDEFS1,
	protocol.SyncEFS2: images.IDEFS2,
}

// DirSink writes synced EFS blobs into a directory, one file per token.
// With DefaultDir the files are the ones the next boot uploads as images
// efs1 and efs2.
type DirSink struct {
	dir string
}

// NewDirSink returns a DirSink writing into dir. An empty dir means DefaultDir.
//
// Example:
//
//	sink := efs.NewDirSink("")
//	l := loader.New(port, loader.WithSink(sink))
func NewDirSink(dir string) *DirSink {
	if dir == "" {
		dir = DefaultDir
	}
	return &DirSink{dir: dir}
}

// Dir returns the directory blobs are written to.
func (s *DirSink) Dir() string {
	return s.dir
}

// Path returns the file the blob for filename is written to.
func (s *DirSink) Path(filename [protocol.FilenameSize]byte) (string, error) {
	id, ok := tokenImages[filename]
	if !ok {
		return "", &UnknownTokenError{Filename: filename}
	}
	img, err := images.Lookup(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, filepath.Base(img.Path)), nil
}

// WriteEFSBlob replaces the file for filename with data.
// The blob is written to a temporary file in the same directory and renamed
// over the target, so a reader never sees a partial image.
func (s *DirSink) WriteEFSBlob(filename [protocol.FilenameSize]byte, address uint32, data []byte) error {
	path, err := s.Path(filename)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create EFS directory %s", s.dir)
	}

	if err := renameio.WriteFile(path, data, 0o644, renameio.WithStaticPermissions(0o644)); err != nil {
		return errors.Wrapf(err, "write EFS blob for address 0x%08x to %s", address, path)
	}
	return nil
}
