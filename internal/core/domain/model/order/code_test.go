package order_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"orderbot/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestCodeGenerator(t *testing.T) {
	now := time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)

	t.Run("deterministic with a fixed reader", func(t *testing.T) {
		g := order.NewCodeGeneratorWithReader(bytes.NewReader([]byte{0, 1, 31, 32}))

		code, err := g.Generate(now)

		require.NoError(t, err)
		assert.Equal(t, order.Code("EO250825AB9A"), code)
		_, err = order.ParseCode(code.String())
		require.NoError(t, err)
	})

	t.Run("crypto reader yields parseable codes", func(t *testing.T) {
		g := order.NewCodeGenerator()
		for range 20 {
			code, err := g.Generate(now)
			require.NoError(t, err)
			_, err = order.ParseCode(code.String())
			require.NoError(t, err, code)
		}
	})

	t.Run("random source failure propagates", func(t *testing.T) {
		_, err := order.NewCodeGeneratorWithReader(failingReader{}).Generate(now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entropy exhausted")
	})
}

func TestParseCode(t *testing.T) {
	for _, bad := range []string{"", "EO2508251A2B", "XX250825ABCD", "EO250825abcd", "EO250825ABCDE"} {
		_, err := order.ParseCode(bad)
		require.Error(t, err, bad)
	}
}
