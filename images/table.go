package images

import (
	"fmt"
	"sort"
)

// Image identifiers requested by the modem boot ROM.
const (
	IDApps uint32 = 6
	IDDSP1 uint32 = 8
	IDDSP2 uint32 = 12
	IDEFS1 uint32 = 16
	IDEFS2 uint32 = 17
	IDEFS3 uint32 = 20
	IDSBL1 uint32 = 21
	IDSBL2 uint32 = 22
	IDRPM  uint32 = 23
	IDDSP3 uint32 = 28
	IDACDB uint32 = 29
)

// Image describes one entry of the image table.
type Image struct {
	// ID is the identifier the modem uses in data requests
	ID uint32

	// Name is a short human-readable name (apps, sbl1, ...)
	Name string

	// Path is the absolute path of the image on the host, before any root prefix
	Path string
}

// table maps every known image id to its image. Unknown ids are an error.
var table = map[uint32]Image{
	IDApps: {ID: IDApps, Name: "apps", Path: "/firmware/image/apps.mbn"},
	IDDSP1: {ID: IDDSP1, Name: "dsp1", Path: "/firmware/image/dsp1.mbn"},
	IDDSP2: {ID: IDDSP2, Name: "dsp2", Path: "/firmware/image/dsp2.mbn"},
	IDEFS1: {ID: IDEFS1, Name: "efs1", Path: "/tombstones/qcks/efs1.bin"},
	IDEFS2: {ID: IDEFS2, Name: "efs2", Path: "/tombstones/qcks/efs2.bin"},
	IDEFS3: {ID: IDEFS3, Name: "efs3", Path: "/tombstones/qcks/efs3.bin"},
	IDSBL1: {ID: IDSBL1, Name: "sbl1", Path: "/firmware/image/sbl1.mbn"},
	IDSBL2: {ID: IDSBL2, Name: "sbl2", Path: "/firmware/image/sbl2.mbn"},
	IDRPM:  {ID: IDRPM, Name: "rpm", Path: "/firmware/image/rpm.mbn"},
	IDDSP3: {ID: IDDSP3, Name: "dsp3", Path: "/firmware/image/dsp3.mbn"},
	IDACDB: {ID: IDACDB, Name: "acdb", Path: "/tombstones/qcks/acdb.bin"},
}

// UnknownImageError is returned for an image id that is not in the table.
type UnknownImageError struct {
	ID uint32
}

func (e *UnknownImageError) Error() string {
	return fmt.Sprintf("unknown image id %d", e.ID)
}

// Lookup returns the image registered for id.
func Lookup(id uint32) (Image, error) {
	img, ok := table[id]
	if !ok {
		return Image{}, &UnknownImageError{ID: id}
	}
	return img, nil
}

// All returns every image in the table ordered by id.
func All() []Image {
	all := make([]Image, 0, len(table))
	for _, img := range table {
		all = append(all, img)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
