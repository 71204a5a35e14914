package commands_test

import (
	"testing"

	"orderbot/internal/core/application/usecases/commands"
	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProcessVerificationCommand(t *testing.T) {
	token := kernel.NewUUID()

	cmd, err := commands.NewProcessVerificationCommand(token, order.DecisionReject)

	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.True(t, cmd.Token().IsEqual(token))
	assert.Equal(t, order.DecisionReject, cmd.Decision())
}

func TestNewProcessVerificationCommand_Invalid(t *testing.T) {
	_, err := commands.NewProcessVerificationCommand(kernel.UUID{}, order.DecisionVerify)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	_, err = commands.NewProcessVerificationCommand(kernel.NewUUID(), order.Decision(0))
	require.Error(t, err)
}

func TestProcessVerificationCommand_Validate_ZeroValue(t *testing.T) {
	var cmd commands.ProcessVerificationCommand

	require.ErrorIs(t, cmd.Validate(), commands.ErrProcessVerificationCommandIsNotConstructed)
}
