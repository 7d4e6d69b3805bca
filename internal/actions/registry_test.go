package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touchbase/internal/types"
)

// stubHandler is a trivial CommandHandler for registry tests.
type stubHandler struct {
	tag      types.CommandTag
	executed []*types.Action
	err      error
}

func (s *stubHandler) Tag() types.CommandTag { return s.tag }

func (s *stubHandler) Execute(_ context.Context, action *types.Action) error {
	if s.err != nil {
		return s.err
	}
	s.executed = append(s.executed, action)
	return nil
}

func TestRegistry_DispatchByTag(t *testing.T) {
	followup := &stubHandler{tag: types.CommandFollowUp}
	sms := &stubHandler{tag: types.CommandTag("sms")}
	registry := NewRegistry(followup, sms)

	action := &types.Action{ID: "act_1", Command: types.Command{Tag: types.CommandTag("sms")}}
	require.NoError(t, registry.Dispatch(context.Background(), action))

	assert.Empty(t, followup.executed)
	require.Len(t, sms.executed, 1)
	assert.Equal(t, "act_1", sms.executed[0].ID)
}

func TestRegistry_UnknownTag(t *testing.T) {
	registry := NewRegistry(&stubHandler{tag: types.CommandFollowUp})

	action := &types.Action{ID: "act_1", Command: types.Command{Tag: types.CommandTag("carrier_pigeon")}}
	err := registry.Dispatch(context.Background(), action)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), "carrier_pigeon")
}

func TestRegistry_HandlerErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	registry := NewRegistry(&stubHandler{tag: types.CommandFollowUp, err: boom})

	action := &types.Action{Command: types.Command{Tag: types.CommandFollowUp}}
	err := registry.Dispatch(context.Background(), action)
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	first := &stubHandler{tag: types.CommandFollowUp}
	second := &stubHandler{tag: types.CommandFollowUp}
	registry := NewRegistry(first)
	registry.Register(second)

	action := &types.Action{Command: types.Command{Tag: types.CommandFollowUp}}
	require.NoError(t, registry.Dispatch(context.Background(), action))

	assert.Empty(t, first.executed)
	assert.Len(t, second.executed, 1)
}
