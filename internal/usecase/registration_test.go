package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/state"
)

func TestRegistrationForm_PasswordMismatchHaltsAtStepOne(t *testing.T) {
	form := NewRegistrationForm()

	err := form.SubmitCredentials(Credentials{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2"})

	require.ErrorIs(t, err, domainerrors.ErrPasswordMismatch)
	assert.Equal(t, StepCredentials, form.Step)
	assert.Empty(t, form.Email)
}

func TestRegistrationForm_FullFlow(t *testing.T) {
	form := NewRegistrationForm()

	require.NoError(t, form.SubmitCredentials(Credentials{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"}))
	require.NoError(t, form.SubmitDetails(PersonalDetails{FirstName: "Ann", LastName: "Lee", VesselIMO: "9321483"}))

	email, password, details, err := form.Complete(PortSelection{Role: entity.RoleBuyer, PortIDs: []string{"NLRTM"}})
	require.NoError(t, err)

	assert.Equal(t, "a@b.co", email)
	assert.Equal(t, "secret1", password)
	assert.Equal(t, "Ann", details.FirstName)
	assert.Equal(t, "9321483", details.VesselIMO)
	assert.Empty(t, details.FederatedUID)
	require.NoError(t, ValidateRegistration(email, password, details))
}

func TestRegistrationForm_RejectsOutOfOrderSteps(t *testing.T) {
	form := NewRegistrationForm()

	err := form.SubmitDetails(PersonalDetails{FirstName: "Ann", LastName: "Lee"})
	assert.ErrorIs(t, err, domainerrors.ErrRegistrationIncomplete)

	_, _, _, err = form.Complete(PortSelection{Role: entity.RoleSeller, PortIDs: []string{"DEHAM"}})
	assert.ErrorIs(t, err, domainerrors.ErrRegistrationIncomplete)
}

func TestRegistrationForm_InvalidDetails(t *testing.T) {
	form := NewRegistrationForm()
	require.NoError(t, form.SubmitCredentials(Credentials{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"}))

	err := form.SubmitDetails(PersonalDetails{FirstName: "Ann", LastName: "Lee", VesselMMSI: "12"})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Equal(t, StepDetails, form.Step)
}

func TestResumeRegistration_StartsAtPortsWithPrefilledIdentity(t *testing.T) {
	form := ResumeRegistration(state.PendingIdentity{UID: "g1", Email: "g@b.co", FirstName: "Gia", LastName: "Ro"})

	assert.Equal(t, StepPorts, form.Step)
	assert.Equal(t, "Gia", form.FirstName)

	email, password, details, err := form.Complete(PortSelection{Role: entity.RoleSeller, PortIDs: []string{"DEHAM"}})
	require.NoError(t, err)
	assert.Equal(t, "g@b.co", email)
	assert.Empty(t, password)
	assert.Equal(t, "g1", details.FederatedUID)
	assert.NoError(t, ValidateRegistration(email, password, details))
}
