package account

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhealth/consult-api/internal/model"
	"github.com/schoolhealth/consult-api/internal/repository/memory"
	"github.com/schoolhealth/consult-api/pkg/apperror"
)

type fakeProvider struct {
	calls int
	err   error
}

func (p *fakeProvider) Provision(_ context.Context, identifier, _ string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "acct-" + identifier, nil
}

func newTestService(t *testing.T) (*Service, *fakeProvider, uuid.UUID) {
	t.Helper()

	centers := memory.NewCenterRepository()
	center := &model.Center{Name: "Riverside High", Address: "1 River Rd"}
	require.NoError(t, centers.Create(context.Background(), center))

	provider := &fakeProvider{}
	return NewService(provider, memory.NewProfileRepository(), centers), provider, center.ID
}

func newProvisionRequest(identifier string, centerID uuid.UUID) *model.ProvisionAccountRequest {
	return &model.ProvisionAccountRequest{
		Identifier:   identifier,
		Credential:   "s3cret-enough",
		DisplayAlias: "river_otter",
		CenterIDs:    []string{centerID.String()},
		Course:       "4th ESO",
		BirthDate:    "2010-04-12",
	}
}

func TestProvisionCreatesProfile(t *testing.T) {
	svc, provider, centerID := newTestService(t)

	profile, err := svc.Provision(context.Background(), newProvisionRequest("student-1", centerID))
	require.NoError(t, err)

	assert.Equal(t, "acct-student-1", profile.AccountRef)
	assert.Equal(t, "river_otter", profile.DisplayAlias)
	require.Len(t, profile.CenterIDs, 1)
	assert.Equal(t, centerID, profile.CenterIDs[0])
	assert.Equal(t, 1, provider.calls)

	found, err := svc.Lookup(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, profile.AccountRef, found.AccountRef)
}

func TestProvisionRejectsDuplicateIdentifier(t *testing.T) {
	svc, provider, centerID := newTestService(t)

	_, err := svc.Provision(context.Background(), newProvisionRequest("student-1", centerID))
	require.NoError(t, err)

	_, err = svc.Provision(context.Background(), newProvisionRequest("student-1", centerID))
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	assert.Equal(t, 1, provider.calls, "duplicate must not reach the provider")
}

func TestProvisionRejectsBadBirthDate(t *testing.T) {
	svc, _, centerID := newTestService(t)

	req := newProvisionRequest("student-1", centerID)
	req.BirthDate = "12/04/2010"

	_, err := svc.Provision(context.Background(), req)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestProvisionRejectsUnknownCenter(t *testing.T) {
	svc, provider, _ := newTestService(t)

	req := newProvisionRequest("student-1", uuid.New())
	_, err := svc.Provision(context.Background(), req)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
	assert.Equal(t, 0, provider.calls)
}

func TestProvisionSurfacesProviderFailure(t *testing.T) {
	svc, provider, centerID := newTestService(t)
	provider.err = errors.New("provider down")

	_, err := svc.Provision(context.Background(), newProvisionRequest("student-1", centerID))
	require.Error(t, err)

	_, err = svc.Lookup(context.Background(), "student-1")
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound), "failed provisioning must not store a profile")
}

func TestLookupUnknownIdentifier(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Lookup(context.Background(), "ghost")
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}
