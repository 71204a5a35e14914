package kernel_test

import (
	"testing"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneNumber(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		wantErr  error
	}{
		{"9110000000", "9110000000", nil},
		{"+91 98765-43210", "919876543210", nil},
		{"", "", errs.ErrValueIsRequired},
		{"91abc00000", "", errs.ErrValueIsInvalid},
		{"1234", "", errs.ErrValueIsOutOfRange},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			p, err := kernel.NewPhoneNumber(tc.input)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, p.String())
		})
	}
}
