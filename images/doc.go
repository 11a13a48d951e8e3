// Package images maps SAHARA image identifiers to firmware files on the host.
//
// # Image Table
//
// The modem boot ROM asks for images by numeric id. The table is fixed:
//
//	 6  apps  /firmware/image/apps.mbn
//	 8  dsp1  /firmware/image/dsp1.mbn
//	12  dsp2  /firmware/image/dsp2.mbn
//	16  efs1  /tombstones/qcks/efs1.bin
//	17  efs2  /tombstones/qcks/efs2.bin
//	20  efs3  /tombstones/qcks/efs3.bin
//	21  sbl1  /firmware/image/sbl1.mbn
//	22  sbl2  /firmware/image/sbl2.mbn
//	23  rpm   /firmware/image/rpm.mbn
//	28  dsp3  /firmware/image/dsp3.mbn
//	29  acdb  /tombstones/qcks/acdb.bin
//
// Any other id yields an *UnknownImageError. There is no default image.
//
// # Usage
//
// Read a slice of an image:
//
//	src := images.NewFileSource("")
//	data, err := src.ReadImage(images.IDApps, 0, 4096)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The root passed to NewFileSource is prepended to every table path, which
// allows staging images in a directory other than /.
//
// # Error Handling
//
// ReadImage returns:
//   - *UnknownImageError for ids outside the table
//   - *ShortReadError if the file ends before offset+size
//   - wrapped os errors if the file cannot be opened or read
package images
