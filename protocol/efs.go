package protocol

import "bytes"

// Sync tokens are the only memory table filenames the host will service.
// They are compared byte for byte against the full 20-byte field.
var (
	// SyncEFS1 names the first modem filesystem copy
	SyncEFS1 = filename("/boot/modem_fs1")

	// SyncEFS2 names the second modem filesystem copy
	SyncEFS2 = filename("/boot/modem_fs2")
)

// filename returns s NUL padded to FilenameSize bytes.
func filename(s string) [FilenameSize]byte {
	var f [FilenameSize]byte
	copy(f[:], s)
	return f
}

// IsSyncToken reports whether name equals one of the two sync tokens.
func IsSyncToken(name [FilenameSize]byte) bool {
	return name == SyncEFS1 || name == SyncEFS2
}

// FilenameString returns the printable part of a filename field, up to the first NUL.
// It is meant for logging only; access checks use IsSyncToken.
func FilenameString(name [FilenameSize]byte) string {
	if i := bytes.IndexByte(name[:], 0); i >= 0 {
		return string(name[:i])
	}
	return string(name[:])
}
