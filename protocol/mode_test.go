package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateMode(t *testing.T) {
	tests := []struct {
		name     string
		got      uint32
		expected uint32
		wantErr  bool
	}{
		{name: "pending for complete", got: ModeTransferPending, expected: ModeTransferComplete},
		{name: "complete for pending", got: ModeTransferComplete, expected: ModeTransferPending},
		{name: "memory debug for pending", got: ModeMemoryDebug, expected: ModeTransferPending, wantErr: true},
		{name: "pending for memory debug", got: ModeTransferPending, expected: ModeMemoryDebug, wantErr: true},
		{name: "command for memory debug", got: ModeCommand, expected: ModeMemoryDebug, wantErr: true},
		{name: "unknown for pending", got: 0x42, expected: ModeTransferPending, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireT := require.New(t)

			err := ValidateMode(tt.got, tt.expected)
			if !tt.wantErr {
				requireT.NoError(err)
				return
			}
			var me *ModeMismatchError
			requireT.ErrorAs(err, &me)
			requireT.Equal(tt.got, me.Got)
			requireT.Equal(tt.expected, me.Expected)
		})
	}
}

func TestValidateModeIdentity(t *testing.T) {
	requireT := require.New(t)

	for mode := uint32(0); mode < 16; mode++ {
		requireT.NoError(ValidateMode(mode, mode), "mode %d", mode)
	}
}
