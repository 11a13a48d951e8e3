// Package efs stores the EFS regions a booted modem hands back over the
// memory debug channel.
//
// DirSink implements loader.Sink. Each of the two sync tokens maps to one
// file; by default these are the efs1 and efs2 images the next boot uploads:
//
//	/boot/modem_fs1  ->  /tombstones/qcks/efs1.bin
//	/boot/modem_fs2  ->  /tombstones/qcks/efs2.bin
//
// Files are replaced atomically.
package efs
