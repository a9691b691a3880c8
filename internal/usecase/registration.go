package usecase

import (
	"github.com/go-playground/validator/v10"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
	"harbor/internal/state"
)

// Registration wizard steps
const (
	StepCredentials = 1
	StepDetails     = 2
	StepPorts       = 3
)

//nolint:gochecknoglobals
var validate = validator.New(validator.WithRequiredStructEnabled())

// Credentials is step 1 of the registration wizard.
type Credentials struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// PersonalDetails is step 2 of the registration wizard.
type PersonalDetails struct {
	FirstName  string `json:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	VesselIMO  string `json:"vesselIMO" validate:"omitempty,numeric,len=7"`
	VesselMMSI string `json:"vesselMMSI" validate:"omitempty,numeric,len=9"`
}

// PortSelection is step 3 of the registration wizard.
type PortSelection struct {
	Role    entity.Role `json:"role" validate:"required,oneof=BUYER SELLER"`
	PortIDs []string    `json:"portIds" validate:"required,min=1,dive,required"`
}

// RegistrationForm is the state of one multi-step registration. Steps are
// submitted in order; a federated sign-up resumes directly at StepPorts.
type RegistrationForm struct {
	Step      int    `json:"step"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Federated bool   `json:"federated"`

	password     string
	details      PersonalDetails
	federatedUID string
}

// NewRegistrationForm starts a registration at step 1.
func NewRegistrationForm() *RegistrationForm {
	return &RegistrationForm{Step: StepCredentials}
}

// ResumeRegistration continues the registration of a federated identity at
// step 3 with its identity fields prefilled.
func ResumeRegistration(pending state.PendingIdentity) *RegistrationForm {
	return &RegistrationForm{
		Step:      StepPorts,
		Email:     pending.Email,
		FirstName: pending.FirstName,
		LastName:  pending.LastName,
		Federated: true,
		details: PersonalDetails{
			FirstName: pending.FirstName,
			LastName:  pending.LastName,
		},
		federatedUID: pending.UID,
	}
}

// SubmitCredentials completes step 1. Mismatched passwords keep the form at step 1.
func (f *RegistrationForm) SubmitCredentials(c Credentials) error {
	if err := f.expectStep(StepCredentials); err != nil {
		return err
	}
	if c.Password != c.ConfirmPassword {
		return errors.WithStack(domainerrors.ErrPasswordMismatch)
	}
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	f.Email = c.Email
	f.password = c.Password
	f.Step = StepDetails

	return nil
}

// SubmitDetails completes step 2.
func (f *RegistrationForm) SubmitDetails(d PersonalDetails) error {
	if err := f.expectStep(StepDetails); err != nil {
		return err
	}
	if err := validate.Struct(d); err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	f.details = d
	f.FirstName = d.FirstName
	f.LastName = d.LastName
	f.Step = StepPorts

	return nil
}

// Complete validates step 3 and returns everything SignUp needs.
func (f *RegistrationForm) Complete(p PortSelection) (email, password string, details RegistrationDetails, err error) {
	if err := f.expectStep(StepPorts); err != nil {
		return "", "", RegistrationDetails{}, err
	}
	if err := validate.Struct(p); err != nil {
		return "", "", RegistrationDetails{}, errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	details = RegistrationDetails{
		FirstName:    f.details.FirstName,
		LastName:     f.details.LastName,
		Phone:        f.details.Phone,
		VesselIMO:    f.details.VesselIMO,
		VesselMMSI:   f.details.VesselMMSI,
		Role:         p.Role,
		PortIDs:      p.PortIDs,
		FederatedUID: f.federatedUID,
	}

	return f.Email, f.password, details, nil
}

func (f *RegistrationForm) expectStep(step int) error {
	if f.Step != step {
		return errors.Wrapf(domainerrors.ErrRegistrationIncomplete, "registration is at step %d, not %d", f.Step, step)
	}

	return nil
}

// ValidateRegistration checks the account fields SignUp receives.
func ValidateRegistration(email, password string, details RegistrationDetails) error {
	if details.FederatedUID == "" {
		if err := validate.Struct(Credentials{Email: email, Password: password, ConfirmPassword: password}); err != nil {
			return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
		}
	}
	if err := validate.Struct(details); err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	return nil
}

// ValidateInput checks any input struct with validate tags.
func ValidateInput(input any) error {
	if err := validate.Struct(input); err != nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, err.Error())
	}

	return nil
}
