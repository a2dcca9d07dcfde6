package profile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/legadoapp/legado/internal/gate"
	"github.com/legadoapp/legado/internal/model"
	"github.com/legadoapp/legado/internal/repository"
)

type mockProfileRepo struct {
	findByIDFn func(ctx context.Context, userID string) (*model.Profile, error)
	createFn   func(ctx context.Context, profile *model.Profile) error
	upsertFn   func(ctx context.Context, profile *model.Profile) error
}

func (m *mockProfileRepo) FindByID(ctx context.Context, userID string) (*model.Profile, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	if m.createFn != nil {
		return m.createFn(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *model.Profile) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, profile)
	}
	return nil
}

func (m *mockProfileRepo) UpdateRole(_ context.Context, _ string, _ model.Role) error {
	return nil
}

func (m *mockProfileRepo) ListRecent(_ context.Context, _ int) ([]*model.Profile, error) {
	return nil, nil
}

func (m *mockProfileRepo) ListAll(_ context.Context) ([]*model.Profile, error) {
	return nil, nil
}

type mockUserSource struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserSource) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

var _ repository.ProfileRepository = (*mockProfileRepo)(nil)
var _ UserSource = (*mockUserSource)(nil)

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"empty passes through", "", "", false},
		{"whitespace only is empty", "   ", "", false},
		{"city with uf uppercased", "curitiba/pr", "curitiba/PR", false},
		{"spaces around slash collapsed", "Curitiba / PR", "Curitiba/PR", false},
		{"inner spaces collapsed", "São  José   dos Pinhais / pr", "São José dos Pinhais/PR", false},
		{"no slash kept as is", "Curitiba", "Curitiba", false},
		{"long uf not uppercased", "Curitiba/Paraná", "Curitiba/Paraná", false},
		{"missing uf rejected", "Curitiba/", "", true},
		{"missing city rejected", "/PR", "", true},
		{"double slash rejected", "Curitiba/PR/BR", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCity(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeCity(%q) error = nil, want INVALID_CITY", tt.in)
				}
				apiErr, ok := err.(*model.APIError)
				if !ok || apiErr.Code != "INVALID_CITY" {
					t.Errorf("NormalizeCity(%q) error = %v, want INVALID_CITY", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeCity(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeCity(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetOrCreate_ExistingProfile(t *testing.T) {
	since := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)
	baptized := true
	existing := &model.Profile{
		ID:          "user-1",
		FullName:    "Maria Souza",
		City:        "Curitiba/PR",
		MemberSince: &since,
		Baptized:    &baptized,
		Role:        model.RoleMember,
	}

	repo := &mockProfileRepo{
		findByIDFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			return existing, nil
		},
		createFn: func(ctx context.Context, profile *model.Profile) error {
			t.Error("Create should not run when the profile exists")
			return nil
		},
	}

	svc := NewService(repo, nil, nil)

	status, err := svc.GetOrCreate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}
	if status.Profile != existing {
		t.Error("expected the stored profile back")
	}
	if !status.Complete {
		t.Errorf("Complete = false, missing %v", status.MissingFields)
	}
}

func TestGetOrCreate_MissingProfile_SeedsFromUserName(t *testing.T) {
	var created *model.Profile

	repo := &mockProfileRepo{
		createFn: func(ctx context.Context, profile *model.Profile) error {
			created = profile
			return nil
		},
	}
	users := &mockUserSource{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "  João Lima  "}, nil
		},
	}

	svc := NewService(repo, users, nil)

	status, err := svc.GetOrCreate(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("GetOrCreate() error = %v", err)
	}

	if created == nil {
		t.Fatal("expected profile to be created")
	}
	if created.FullName != "João Lima" {
		t.Errorf("seeded full name = %q, want %q", created.FullName, "João Lima")
	}
	if created.Role != model.RoleMember {
		t.Errorf("seeded role = %q, want member", created.Role)
	}
	if status.Complete {
		t.Error("a freshly seeded profile must not be complete")
	}
}

func TestGet_MissingProfile_ReturnsNotFound(t *testing.T) {
	svc := NewService(&mockProfileRepo{}, nil, nil)

	_, err := svc.Get(context.Background(), "nobody")
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != "USER_NOT_FOUND" {
		t.Errorf("Get() error = %v, want USER_NOT_FOUND", err)
	}
}

func TestUpdate_NormalizesAndReportsStatus(t *testing.T) {
	var saved *model.Profile
	repo := &mockProfileRepo{
		upsertFn: func(ctx context.Context, profile *model.Profile) error {
			saved = profile
			return nil
		},
	}
	svc := NewService(repo, nil, nil)

	since := time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC)
	baptized := false
	status, err := svc.Update(context.Background(), "user-1", UpdateInput{
		FullName:    "  Maria Souza ",
		City:        "curitiba / pr",
		MemberSince: &since,
		Baptized:    &baptized,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if saved.FullName != "Maria Souza" {
		t.Errorf("full name = %q, want trimmed", saved.FullName)
	}
	if saved.City != "curitiba/PR" {
		t.Errorf("city = %q, want %q", saved.City, "curitiba/PR")
	}
	if !status.Complete {
		t.Errorf("Complete = false, missing %v", status.MissingFields)
	}
}

func TestUpdate_InvalidCity_RejectsWithoutSaving(t *testing.T) {
	repo := &mockProfileRepo{
		upsertFn: func(ctx context.Context, profile *model.Profile) error {
			t.Error("Upsert should not run for invalid input")
			return nil
		},
	}
	svc := NewService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "user-1", UpdateInput{City: "Curitiba/"})
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != "INVALID_CITY" {
		t.Errorf("Update() error = %v, want INVALID_CITY", err)
	}
}

func TestUpdate_PartialInput_RejectsWithMissingFields(t *testing.T) {
	repo := &mockProfileRepo{
		upsertFn: func(ctx context.Context, profile *model.Profile) error {
			t.Error("Upsert should not run for an incomplete save")
			return nil
		},
	}
	svc := NewService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "user-1", UpdateInput{FullName: "Maria"})
	apiErr, ok := err.(*model.APIError)
	if !ok || apiErr.Code != "MISSING_REQUIRED_FIELDS" {
		t.Fatalf("Update() error = %v, want MISSING_REQUIRED_FIELDS", err)
	}

	want := []string{gate.FieldCity, gate.FieldMemberSince, gate.FieldBaptized}
	for _, f := range want {
		if !strings.Contains(apiErr.Message, f) {
			t.Errorf("error message %q should name missing field %q", apiErr.Message, f)
		}
	}
}

// completeUpdateInput は既定の必須フィールドをすべて満たした入力を返す。
func completeUpdateInput(fullName string) UpdateInput {
	since := time.Date(2021, 1, 10, 0, 0, 0, 0, time.UTC)
	baptized := true
	return UpdateInput{
		FullName:    fullName,
		City:        "Curitiba/PR",
		MemberSince: &since,
		Baptized:    &baptized,
	}
}

func TestUpdate_KeepsStoredRoleAndCreatedAt(t *testing.T) {
	createdAt := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockProfileRepo{
		findByIDFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			return &model.Profile{
				ID:        userID,
				FullName:  "Admin User",
				Role:      model.RoleAdmin,
				CreatedAt: createdAt,
			}, nil
		},
	}
	svc := NewService(repo, nil, nil)

	status, err := svc.Update(context.Background(), "u1", completeUpdateInput("Admin User"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// Upsertはロールを書き換えないため、応答も既存のロールを保つこと
	if status.Profile.Role != model.RoleAdmin {
		t.Errorf("Role = %q, want %q", status.Profile.Role, model.RoleAdmin)
	}
	if !status.Profile.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", status.Profile.CreatedAt, createdAt)
	}
}

func TestUpdate_UnknownStoredRole_DefaultsToMember(t *testing.T) {
	repo := &mockProfileRepo{
		findByIDFn: func(ctx context.Context, userID string) (*model.Profile, error) {
			return &model.Profile{ID: userID, Role: model.Role("supervisor")}, nil
		},
	}
	svc := NewService(repo, nil, nil)

	status, err := svc.Update(context.Background(), "u1", completeUpdateInput("Maria Souza"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if status.Profile.Role != model.RoleMember {
		t.Errorf("Role = %q, want member", status.Profile.Role)
	}
}

func TestUpdate_MissingRow_DefaultsRoleToMember(t *testing.T) {
	svc := NewService(&mockProfileRepo{}, nil, nil)

	status, err := svc.Update(context.Background(), "u1", completeUpdateInput("Maria Souza"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if status.Profile.Role != model.RoleMember {
		t.Errorf("Role = %q, want member", status.Profile.Role)
	}
}

func TestUpdate_RepositoryError(t *testing.T) {
	repo := &mockProfileRepo{
		upsertFn: func(ctx context.Context, profile *model.Profile) error {
			return errors.New("db down")
		},
	}
	svc := NewService(repo, nil, nil)

	if _, err := svc.Update(context.Background(), "user-1", completeUpdateInput("Maria Souza")); err == nil {
		t.Fatal("expected error from Update")
	}
}
