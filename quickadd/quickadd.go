// Package quickadd creates customers, installers and materials from raw form input.
package quickadd

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kendall-kelly/hantverk-dashboard/apiclient"
	"github.com/kendall-kelly/hantverk-dashboard/logger"
	"github.com/kendall-kelly/hantverk-dashboard/models"
	"github.com/kendall-kelly/hantverk-dashboard/utils"
)

const (
	CustomerCreatedMessage  = "Kund skapad"
	InstallerCreatedMessage = "Montör skapad"
	MaterialCreatedMessage  = "Material skapat"
	// FailureMessage is shown when the backend rejects a create without a detail
	FailureMessage = "Något gick fel"
)

// ErrNotReady is returned when a required field is still blank
var ErrNotReady = errors.New("required fields are missing")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Creator is the subset of the backend used here. *apiclient.Client implements it.
type Creator interface {
	CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (*models.Customer, error)
	CreateInstaller(ctx context.Context, req models.CreateInstallerRequest) (*models.Installer, error)
	CreateMaterial(ctx context.Context, req models.CreateMaterialRequest) (*models.Material, error)
}

// Refresher reloads reference data after a create
type Refresher interface {
	Refresh(ctx context.Context) error
}

// CustomerForm is the raw "Ny kund" input
type CustomerForm struct {
	Name    string
	Company string
	Email   string
	Phone   string
}

// Ready reports whether the save action is enabled
func (f CustomerForm) Ready() bool {
	return !utils.IsBlank(f.Name)
}

// Request builds the create request; blank optional fields are omitted
func (f CustomerForm) Request() (models.CreateCustomerRequest, error) {
	req := models.CreateCustomerRequest{
		Name:    strings.TrimSpace(f.Name),
		Company: strings.TrimSpace(f.Company),
		Email:   strings.TrimSpace(f.Email),
		Phone:   strings.TrimSpace(f.Phone),
	}
	return req, check(f.Ready(), req)
}

// InstallerForm is the raw "Ny montör" input. Skills is a comma separated list.
type InstallerForm struct {
	Name   string
	Email  string
	Phone  string
	Skills string
}

func (f InstallerForm) Ready() bool {
	return !utils.IsBlank(f.Name)
}

func (f InstallerForm) Request() (models.CreateInstallerRequest, error) {
	req := models.CreateInstallerRequest{
		Name:   strings.TrimSpace(f.Name),
		Email:  strings.TrimSpace(f.Email),
		Phone:  strings.TrimSpace(f.Phone),
		Skills: splitSkills(f.Skills),
	}
	return req, check(f.Ready(), req)
}

// MaterialForm is the raw "Nytt material" input.
// Blank or malformed price and stock become 0 and a blank unit becomes "st".
type MaterialForm struct {
	SKU   string
	Name  string
	Price string
	Unit  string
	Stock string
}

func (f MaterialForm) Ready() bool {
	return !utils.IsBlank(f.SKU) && !utils.IsBlank(f.Name)
}

func (f MaterialForm) Request() (models.CreateMaterialRequest, error) {
	unit := strings.TrimSpace(f.Unit)
	if unit == "" {
		unit = models.DefaultUnit
	}
	req := models.CreateMaterialRequest{
		SKU:   strings.TrimSpace(f.SKU),
		Name:  strings.TrimSpace(f.Name),
		Price: utils.NumberOrZero(f.Price).InexactFloat64(),
		Unit:  unit,
		Stock: utils.NumberOrZero(f.Stock).InexactFloat64(),
	}
	return req, check(f.Ready(), req)
}

func check(ready bool, req any) error {
	if !ready {
		return ErrNotReady
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	parts := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		parts = append(parts, fmt.Sprintf("%s %s", fieldErr.Field(), validationMessage(fieldErr)))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(parts, ", "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}

func splitSkills(raw string) []string {
	var skills []string
	for _, skill := range strings.Split(raw, ",") {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	return skills
}

// Result is what the form shows after a save attempt
type Result struct {
	Message string
	// RefreshErr is set when the entity was created but reloading reference data failed
	RefreshErr error
}

// Service submits quick-add forms and refreshes reference data after each success
type Service struct {
	creator   Creator
	refresher Refresher
	log       *logger.Logger
}

func NewService(creator Creator, refresher Refresher, log *logger.Logger) *Service {
	return &Service{creator: creator, refresher: refresher, log: log}
}

// AddCustomer validates and submits a customer form
func (s *Service) AddCustomer(ctx context.Context, form CustomerForm) (Result, error) {
	req, err := form.Request()
	if err != nil {
		return Result{}, err
	}
	if _, err := s.creator.CreateCustomer(ctx, req); err != nil {
		return Result{}, s.failure(ctx, "customer", err)
	}
	return s.success(ctx, "customer", CustomerCreatedMessage), nil
}

// AddInstaller validates and submits an installer form
func (s *Service) AddInstaller(ctx context.Context, form InstallerForm) (Result, error) {
	req, err := form.Request()
	if err != nil {
		return Result{}, err
	}
	if _, err := s.creator.CreateInstaller(ctx, req); err != nil {
		return Result{}, s.failure(ctx, "installer", err)
	}
	return s.success(ctx, "installer", InstallerCreatedMessage), nil
}

// AddMaterial validates and submits a material form
func (s *Service) AddMaterial(ctx context.Context, form MaterialForm) (Result, error) {
	req, err := form.Request()
	if err != nil {
		return Result{}, err
	}
	if _, err := s.creator.CreateMaterial(ctx, req); err != nil {
		return Result{}, s.failure(ctx, "material", err)
	}
	return s.success(ctx, "material", MaterialCreatedMessage), nil
}

// Error carries the message the form should show after a failed create
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (s *Service) failure(ctx context.Context, entity string, err error) error {
	s.log.Warn(s.log.WithField(ctx, "entity", entity), "quickadd.failed", err)
	return &Error{Message: apiclient.DetailOr(err, FailureMessage), Err: err}
}

func (s *Service) success(ctx context.Context, entity, message string) Result {
	ctx = s.log.WithField(ctx, "entity", entity)
	s.log.Info(ctx, "quickadd.created")

	result := Result{Message: message}
	if s.refresher != nil {
		result.RefreshErr = s.refresher.Refresh(ctx)
	}
	return result
}
