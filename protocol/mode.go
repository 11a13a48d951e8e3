package protocol

// isTransferMode reports whether mode belongs to the image transfer family.
func isTransferMode(mode uint32) bool {
	return mode == ModeTransferPending || mode == ModeTransferComplete
}

// ValidateMode checks the mode received in a hello against the mode the host expects.
//
// TransferPending and TransferComplete are interchangeable. Every other mode
// must match exactly.
func ValidateMode(got, expected uint32) error {
	if isTransferMode(got) && isTransferMode(expected) {
		return nil
	}
	if got == expected {
		return nil
	}
	return &ModeMismatchError{Expected: expected, Got: got}
}
