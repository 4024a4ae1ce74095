package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/traumalab/trial-monitor-api/internal/dto"
)

type fakeParticipantWriter struct {
	created map[string]interface{}
	updated map[string]interface{}
	err     error
}

func (f *fakeParticipantWriter) CreateParticipant(_ context.Context, payload map[string]interface{}) error {
	f.created = payload
	return f.err
}

func (f *fakeParticipantWriter) UpdateParticipant(_ context.Context, payload map[string]interface{}) error {
	f.updated = payload
	return f.err
}

func TestRegisterSendsOnlyProvidedFields(t *testing.T) {
	writer := &fakeParticipantWriter{}
	svc := NewParticipantService(writer, nil, zap.NewNop())

	err := svc.Register(context.Background(), dto.RegisterParticipantRequest{
		Nickname:   "alma",
		EmpaticaID: "emp-7",
	})
	require.NoError(t, err)
	require.NotNil(t, writer.created)

	assert.Equal(t, "alma", writer.created["nickName"])
	assert.Equal(t, "emp-7", writer.created["empaticaId"])
	assert.NotContains(t, writer.created, "phone")
	assert.NotContains(t, writer.created, "firebaseId")
	assert.NotContains(t, writer.created, "trialStartingDate")
}

func TestRegisterLocalizesTrialStart(t *testing.T) {
	writer := &fakeParticipantWriter{}
	svc := NewParticipantService(writer, nil, zap.NewNop())

	err := svc.Register(context.Background(), dto.RegisterParticipantRequest{
		Nickname:       "alma",
		TrialStartDate: "2024-01-01",
		TrialStartTime: "09:30",
	})
	require.NoError(t, err)

	// Israel is UTC+2 in January, so the RFC3339 form carries the offset.
	assert.Equal(t, "2024-01-01T09:30:00+02:00", writer.created["trialStartingDate"])
}

func TestRegisterDateWithoutTimeAnchorsAtMidnight(t *testing.T) {
	writer := &fakeParticipantWriter{}
	svc := NewParticipantService(writer, nil, zap.NewNop())

	err := svc.Register(context.Background(), dto.RegisterParticipantRequest{
		Nickname:       "alma",
		TrialStartDate: "2024-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00:00+02:00", writer.created["trialStartingDate"])
}

func TestRegisterRejectsTimeWithoutDate(t *testing.T) {
	writer := &fakeParticipantWriter{}
	svc := NewParticipantService(writer, nil, zap.NewNop())

	err := svc.Register(context.Background(), dto.RegisterParticipantRequest{
		Nickname:       "alma",
		TrialStartTime: "09:30",
	})
	assert.Error(t, err)
	assert.Nil(t, writer.created)
}

func TestRegisterRequiresNickname(t *testing.T) {
	svc := NewParticipantService(&fakeParticipantWriter{}, nil, zap.NewNop())

	assert.Error(t, svc.Register(context.Background(), dto.RegisterParticipantRequest{}))
}

func TestRegisterRejectsBadPhone(t *testing.T) {
	svc := NewParticipantService(&fakeParticipantWriter{}, nil, zap.NewNop())

	err := svc.Register(context.Background(), dto.RegisterParticipantRequest{
		Nickname: "alma",
		Phone:    "not-a-phone",
	})
	assert.Error(t, err)
}

func TestUpdateSendsSparsePatch(t *testing.T) {
	writer := &fakeParticipantWriter{}
	svc := NewParticipantService(writer, nil, zap.NewNop())

	active := false
	err := svc.Update(context.Background(), "p-1", dto.UpdateParticipantRequest{
		IsActive: &active,
	})
	require.NoError(t, err)
	require.NotNil(t, writer.updated)

	assert.Equal(t, "p-1", writer.updated["patientId"])
	assert.Equal(t, false, writer.updated["isActive"])
	assert.NotContains(t, writer.updated, "nickName")
	assert.NotContains(t, writer.updated, "phone")
}

func TestUpdateOmitsUnsetActivityFlag(t *testing.T) {
	writer := &fakeParticipantWriter{}
	svc := NewParticipantService(writer, nil, zap.NewNop())

	err := svc.Update(context.Background(), "p-1", dto.UpdateParticipantRequest{
		Nickname: "renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", writer.updated["nickName"])
	assert.NotContains(t, writer.updated, "isActive")
}

func TestUpdateRequiresPatientID(t *testing.T) {
	svc := NewParticipantService(&fakeParticipantWriter{}, nil, zap.NewNop())

	assert.Error(t, svc.Update(context.Background(), "", dto.UpdateParticipantRequest{}))
}

func TestUpdatePropagatesUpstreamFailure(t *testing.T) {
	writer := &fakeParticipantWriter{err: assert.AnError}
	svc := NewParticipantService(writer, nil, zap.NewNop())

	err := svc.Update(context.Background(), "p-1", dto.UpdateParticipantRequest{Nickname: "x"})
	assert.ErrorIs(t, err, assert.AnError)
}
