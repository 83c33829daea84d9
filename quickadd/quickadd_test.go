package quickadd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kendall-kelly/hantverk-dashboard/apiclient"
	"github.com/kendall-kelly/hantverk-dashboard/models"
)

type fakeCreator struct {
	customers  []models.CreateCustomerRequest
	installers []models.CreateInstallerRequest
	materials  []models.CreateMaterialRequest
	err        error
}

func (f *fakeCreator) CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (*models.Customer, error) {
	f.customers = append(f.customers, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Customer{ID: "c1", Name: req.Name}, nil
}

func (f *fakeCreator) CreateInstaller(ctx context.Context, req models.CreateInstallerRequest) (*models.Installer, error) {
	f.installers = append(f.installers, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Installer{ID: "i1", Name: req.Name}, nil
}

func (f *fakeCreator) CreateMaterial(ctx context.Context, req models.CreateMaterialRequest) (*models.Material, error) {
	f.materials = append(f.materials, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Material{ID: "m1", SKU: req.SKU}, nil
}

type countingRefresher struct {
	calls int
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls++
	return r.err
}

func TestFormReadiness(t *testing.T) {
	assert.False(t, CustomerForm{}.Ready())
	assert.False(t, CustomerForm{Name: "   "}.Ready())
	assert.True(t, CustomerForm{Name: "Anna"}.Ready())

	assert.False(t, InstallerForm{Email: "a@b.se"}.Ready())
	assert.True(t, InstallerForm{Name: "Erik"}.Ready())

	assert.False(t, MaterialForm{SKU: "MAT-001"}.Ready())
	assert.False(t, MaterialForm{Name: "Golvpaket"}.Ready())
	assert.True(t, MaterialForm{SKU: "MAT-001", Name: "Golvpaket"}.Ready())
}

func TestCustomerRequestOmitsBlankFields(t *testing.T) {
	req, err := CustomerForm{Name: " Anna Andersson ", Phone: "070-123 45 67"}.Request()
	require.NoError(t, err)

	assert.Equal(t, "Anna Andersson", req.Name)
	assert.Empty(t, req.Email)
	assert.Empty(t, req.Company)
	assert.Equal(t, "070-123 45 67", req.Phone)
}

func TestCustomerRequestRejectsBadEmail(t *testing.T) {
	_, err := CustomerForm{Name: "Anna", Email: "not-an-email"}.Request()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")
}

func TestInstallerRequestSplitsSkills(t *testing.T) {
	req, err := InstallerForm{Name: "Erik", Skills: "golv, kakel,, el "}.Request()
	require.NoError(t, err)
	assert.Equal(t, []string{"golv", "kakel", "el"}, req.Skills)
	assert.Nil(t, req.Active)

	req, err = InstallerForm{Name: "Erik"}.Request()
	require.NoError(t, err)
	assert.Nil(t, req.Skills)
}

func TestMaterialRequestDefaults(t *testing.T) {
	tests := []struct {
		name      string
		form      MaterialForm
		wantPrice float64
		wantUnit  string
		wantStock float64
	}{
		{"all blank", MaterialForm{SKU: "MAT-001", Name: "Golvpaket"}, 0, "st", 0},
		{"explicit values", MaterialForm{SKU: "MAT-001", Name: "Golvpaket", Price: "199", Unit: "m2", Stock: "12.5"}, 199, "m2", 12.5},
		{"malformed numbers", MaterialForm{SKU: "MAT-001", Name: "Golvpaket", Price: "abc", Unit: "  ", Stock: "x"}, 0, "st", 0},
		{"out of range numbers", MaterialForm{SKU: "MAT-001", Name: "Golvpaket", Price: "1e400", Stock: "-1e400"}, 0, "st", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := tt.form.Request()
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, req.Price)
			assert.Equal(t, tt.wantUnit, req.Unit)
			assert.Equal(t, tt.wantStock, req.Stock)
		})
	}
}

func TestMaterialRequestRejectsNegativePrice(t *testing.T) {
	_, err := MaterialForm{SKU: "MAT-001", Name: "Golvpaket", Price: "-5"}.Request()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price must be at least 0")
}

func TestNotReadyFormsAreNotSent(t *testing.T) {
	creator := &fakeCreator{}
	refresher := &countingRefresher{}
	service := NewService(creator, refresher, nil)
	ctx := context.Background()

	_, err := service.AddCustomer(ctx, CustomerForm{Email: "anna@example.com"})
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = service.AddInstaller(ctx, InstallerForm{})
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = service.AddMaterial(ctx, MaterialForm{SKU: "MAT-001"})
	assert.ErrorIs(t, err, ErrNotReady)

	assert.Empty(t, creator.customers)
	assert.Empty(t, creator.installers)
	assert.Empty(t, creator.materials)
	assert.Equal(t, 0, refresher.calls)
}

func TestSuccessRefreshes(t *testing.T) {
	creator := &fakeCreator{}
	refresher := &countingRefresher{}
	service := NewService(creator, refresher, nil)
	ctx := context.Background()

	result, err := service.AddCustomer(ctx, CustomerForm{Name: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, "Kund skapad", result.Message)

	result, err = service.AddInstaller(ctx, InstallerForm{Name: "Erik"})
	require.NoError(t, err)
	assert.Equal(t, "Montör skapad", result.Message)

	result, err = service.AddMaterial(ctx, MaterialForm{SKU: "MAT-001", Name: "Golvpaket"})
	require.NoError(t, err)
	assert.Equal(t, "Material skapat", result.Message)

	assert.Equal(t, 3, refresher.calls)
	assert.Len(t, creator.customers, 1)
	assert.Len(t, creator.installers, 1)
	assert.Len(t, creator.materials, 1)
}

func TestRefreshFailureIsReportedButNotFatal(t *testing.T) {
	refreshErr := errors.New("offline")
	service := NewService(&fakeCreator{}, &countingRefresher{err: refreshErr}, nil)

	result, err := service.AddCustomer(context.Background(), CustomerForm{Name: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, CustomerCreatedMessage, result.Message)
	assert.Equal(t, refreshErr, result.RefreshErr)
}

func TestFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend detail", &apiclient.APIError{StatusCode: 409, Detail: "SKU finns redan"}, "SKU finns redan"},
		{"no detail", &apiclient.APIError{StatusCode: 500}, FailureMessage},
		{"transport", errors.New("connection refused"), FailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresher := &countingRefresher{}
			service := NewService(&fakeCreator{err: tt.err}, refresher, nil)

			_, err := service.AddMaterial(context.Background(), MaterialForm{SKU: "MAT-001", Name: "Golvpaket"})

			var addErr *Error
			require.True(t, errors.As(err, &addErr))
			assert.Equal(t, tt.want, addErr.Message)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 0, refresher.calls, "no refresh after a failure")
		})
	}
}
