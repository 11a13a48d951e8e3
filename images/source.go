package images

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultRoot is the directory image paths are resolved against.
const DefaultRoot = "/"

// ShortReadError is returned when an image file holds fewer bytes than requested.
// The local images are trusted build artifacts, so this indicates a corrupt or
// truncated file rather than a condition worth retrying.
type ShortReadError struct {
	Path   string
	Offset uint32
	Want   uint32
	Got    int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("short read from %s at offset %d: got %d of %d bytes",
		e.Path, e.Offset, e.Got, e.Want)
}

// FileSource serves image data from files on the host.
// Every read opens and closes the file, so no descriptor outlives a request.
type FileSource struct {
	root string
}

// NewFileSource returns a FileSource that resolves table paths under root.
// An empty root means DefaultRoot.
//
// Example:
//
//	src := images.NewFileSource("/vendor")
//	data, err := src.ReadImage(images.IDApps, 0, 4096)
func NewFileSource(root string) *FileSource {
	if root == "" {
		root = DefaultRoot
	}
	return &FileSource{root: root}
}

// Path returns the host path for image id.
func (s *FileSource) Path(id uint32) (string, error) {
	img, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, img.Path), nil
}

// ReadImage reads exactly size bytes of image id starting at offset.
func (s *FileSource) ReadImage(id, offset, size uint32) ([]byte, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open image %d", id)
	}
	defer func() { _ = f.Close() }()

	data := make([]byte, size)
	n, err := f.ReadAt(data, int64(offset))
	if n < int(size) {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(err, "read image %d", id)
		}
		return nil, &ShortReadError{Path: path, Offset: offset, Want: size, Got: n}
	}

	return data, nil
}

// Status describes whether an image file is present on the host.
type Status struct {
	Image Image
	Path  string
	Size  int64
	Err   error
}

// Inventory stats every image in the table.
func (s *FileSource) Inventory() []Status {
	all := All()
	out := make([]Status, 0, len(all))
	for _, img := range all {
		st := Status{Image: img, Path: filepath.Join(s.root, img.Path)}
		fi, err := os.Stat(st.Path)
		if err != nil {
			st.Err = err
		} else {
			st.Size = fi.Size()
		}
		out = append(out, st)
	}
	return out
}
