package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeImage creates the file for image id under root with the given content.
func writeImage(t *testing.T, root string, id uint32, data []byte) string {
	t.Helper()

	img, err := Lookup(id)
	require.NoError(t, err)

	path := filepath.Join(root, img.Path)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLookupTable(t *testing.T) {
	want := map[uint32]string{
		6:  "/firmware/image/apps.mbn",
		8:  "/firmware/image/dsp1.mbn",
		12: "/firmware/image/dsp2.mbn",
		16: "/tombstones/qcks/efs1.bin",
		17: "/tombstones/qcks/efs2.bin",
		20: "/tombstones/qcks/efs3.bin",
		21: "/firmware/image/sbl1.mbn",
		22: "/firmware/image/sbl2.mbn",
		23: "/firmware/image/rpm.mbn",
		28: "/firmware/image/dsp3.mbn",
		29: "/tombstones/qcks/acdb.bin",
	}

	requireT := require.New(t)
	for id := uint32(0); id <= 255; id++ {
		img, err := Lookup(id)
		path, known := want[id]
		if known {
			requireT.NoError(err, "id %d", id)
			requireT.Equal(path, img.Path)
			requireT.Equal(id, img.ID)
			continue
		}

		var ue *UnknownImageError
		requireT.ErrorAs(err, &ue, "id %d", id)
		requireT.Equal(id, ue.ID)
	}
}

func TestAllSorted(t *testing.T) {
	requireT := require.New(t)

	all := All()
	requireT.Len(all, 11)
	for i := 1; i < len(all); i++ {
		requireT.Less(all[i-1].ID, all[i].ID)
	}
}

func TestReadImage(t *testing.T) {
	root := t.TempDir()
	content := make([]byte, 8192)
	for i := range content {
		content[i] = byte(i % 251)
	}
	writeImage(t, root, IDApps, content)

	tests := []struct {
		name    string
		id      uint32
		offset  uint32
		size    uint32
		want    []byte
		wantErr any
	}{
		{name: "start of file", id: IDApps, offset: 0, size: 4096, want: content[:4096]},
		{name: "middle of file", id: IDApps, offset: 100, size: 50, want: content[100:150]},
		{name: "exact end", id: IDApps, offset: 4096, size: 4096, want: content[4096:]},
		{name: "zero size", id: IDApps, offset: 0, size: 0, want: []byte{}},
		{name: "past end", id: IDApps, offset: 8000, size: 400, wantErr: &ShortReadError{}},
		{name: "unknown id", id: 7, size: 1, wantErr: &UnknownImageError{}},
	}

	src := NewFileSource(root)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireT := require.New(t)

			data, err := src.ReadImage(tt.id, tt.offset, tt.size)
			switch tt.wantErr.(type) {
			case *ShortReadError:
				var se *ShortReadError
				requireT.ErrorAs(err, &se)
				requireT.Equal(tt.size, se.Want)
				return
			case *UnknownImageError:
				var ue *UnknownImageError
				requireT.ErrorAs(err, &ue)
				return
			}
			requireT.NoError(err)
			requireT.Equal(tt.want, data)
		})
	}
}

func TestReadImageMissingFile(t *testing.T) {
	requireT := require.New(t)

	src := NewFileSource(t.TempDir())
	_, err := src.ReadImage(IDSBL1, 0, 16)
	requireT.Error(err)
	requireT.ErrorIs(err, os.ErrNotExist)
}

func TestInventory(t *testing.T) {
	requireT := require.New(t)

	root := t.TempDir()
	writeImage(t, root, IDRPM, []byte("rpm"))

	for _, st := range NewFileSource(root).Inventory() {
		if st.Image.ID == IDRPM {
			requireT.NoError(st.Err)
			requireT.EqualValues(3, st.Size)
			continue
		}
		requireT.ErrorIs(st.Err, os.ErrNotExist)
	}
}

func TestNewFileSourceDefaultRoot(t *testing.T) {
	requireT := require.New(t)

	path, err := NewFileSource("").Path(IDApps)
	requireT.NoError(err)
	requireT.Equal("/firmware/image/apps.mbn", path)
}
