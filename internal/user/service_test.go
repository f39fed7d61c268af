package user_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/frahmantamala/chathub/internal"
	userDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/user"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Module Suite")
}

// MockRepository implements user.RepositoryAPI for testing
type MockRepository struct {
	users      map[string]*userDatamodel.User
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[string]*userDatamodel.User)}
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) List(ctx context.Context, params query.ListParams) ([]*userDatamodel.User, int64, error) {
	if m.shouldFail {
		return nil, 0, m.failError
	}
	var out []*userDatamodel.User
	for _, u := range m.users {
		if !query.ContainsFold(params.Search, u.Name, u.Email) {
			continue
		}
		if role := params.Filter("role"); role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.users[id], nil
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	if m.shouldFail {
		return m.failError
	}
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	if m.shouldFail {
		return m.failError
	}
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) (bool, error) {
	if m.shouldFail {
		return false, m.failError
	}
	_, ok := m.users[id]
	delete(m.users, id)
	return ok, nil
}

func (m *MockRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *MockRepository) AddUser(u *user.User) {
	m.users[u.ID] = user.ToDataModel(u)
}

var _ = Describe("User Service", func() {
	var (
		ctx      context.Context
		mockRepo *MockRepository
		service  *user.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, logger, bcrypt.MinCost)

		mockRepo.AddUser(&user.User{ID: "u1", Name: "Admin User", Email: "admin@example.com", Role: user.RoleAdmin, Permissions: []string{"all"}, IsActive: true})
		mockRepo.AddUser(&user.User{ID: "u2", Name: "Manager User", Email: "manager@example.com", Role: user.RoleManager, IsActive: true})
		mockRepo.AddUser(&user.User{ID: "u3", Name: "Regular User", Email: "user@example.com", Role: user.RoleUser, IsActive: true})
	})

	Describe("List", func() {
		It("should return every user for an empty query", func() {
			page, err := service.List(ctx, query.ListParams{}.Normalize())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(3))
			Expect(page.Total).To(Equal(int64(3)))
		})

		It("should match name and email case-insensitively", func() {
			page, err := service.List(ctx, query.ListParams{Search: "MANAGER"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Email).To(Equal("manager@example.com"))
		})

		It("should filter by role", func() {
			page, err := service.List(ctx, query.ListParams{Filters: map[string]string{"role": "admin"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Role).To(Equal(user.RoleAdmin))
		})

		It("should wrap repository failures", func() {
			mockRepo.SetShouldFail(true, errors.New("database error"))
			_, err := service.List(ctx, query.ListParams{})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("Create", func() {
		It("should hash the password and default the role", func() {
			u, err := service.Create(ctx, user.CreateUserDTO{Name: "New Person", Email: " New@Example.com ", Password: "s3cretpass"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).NotTo(BeEmpty())
			Expect(u.Email).To(Equal("new@example.com"))
			Expect(u.Role).To(Equal(user.RoleUser))
			Expect(u.IsActive).To(BeTrue())
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cretpass"))).To(Succeed())
		})

		It("should reject a duplicate email with a conflict", func() {
			_, err := service.Create(ctx, user.CreateUserDTO{Name: "Copy", Email: "ADMIN@example.com", Password: "password1"})
			Expect(errors.Is(err, user.ErrEmailTaken)).To(BeTrue())
		})

		It("should reject invalid input", func() {
			_, err := service.Create(ctx, user.CreateUserDTO{Name: "x", Email: "bad", Password: "short", Role: "owner"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(appErr.Details.(internal.ValidationErrors).Errors).To(HaveLen(4))
		})
	})

	Describe("Update", func() {
		It("should merge only the provided fields", func() {
			name := "Renamed"
			u, err := service.Update(ctx, "u2", user.UpdateUserDTO{Name: &name})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Name).To(Equal("Renamed"))
			Expect(u.Email).To(Equal("manager@example.com"))
			Expect(u.Role).To(Equal(user.RoleManager))
		})

		It("should return not found for an unknown user", func() {
			name := "Ghost"
			_, err := service.Update(ctx, "missing", user.UpdateUserDTO{Name: &name})
			Expect(errors.Is(err, user.ErrUserNotFound)).To(BeTrue())
		})

		It("should refuse to take another user's email", func() {
			email := "user@example.com"
			_, err := service.Update(ctx, "u2", user.UpdateUserDTO{Email: &email})
			Expect(errors.Is(err, user.ErrEmailTaken)).To(BeTrue())
		})
	})

	Describe("Granting roles and permissions", func() {
		var managerCtx, adminCtx context.Context

		BeforeEach(func() {
			managerCtx = internal.ContextWithUser(ctx, &internal.User{ID: "u2", Role: user.RoleManager,
				Permissions: []string{"users.view", "users.manage", "widget.manage"}})
			adminCtx = internal.ContextWithUser(ctx, &internal.User{ID: "u1", Role: user.RoleAdmin, Permissions: []string{"all"}})
		})

		It("should stop a users.manage holder from granting itself all", func() {
			perms := []string{"all"}
			_, err := service.Update(managerCtx, "u2", user.UpdateUserDTO{Permissions: &perms})
			Expect(errors.Is(err, user.ErrCannotGrant)).To(BeTrue())

			stored, err := service.GetByID(ctx, "u2")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Permissions).To(BeEmpty())
		})

		It("should stop a users.manage holder from promoting a user", func() {
			admin := user.RoleAdmin
			_, err := service.Update(managerCtx, "u3", user.UpdateUserDTO{Role: &admin})
			Expect(errors.Is(err, user.ErrCannotGrant)).To(BeTrue())

			_, err = service.Create(managerCtx, user.CreateUserDTO{Name: "Sneaky", Email: "sneaky@example.com",
				Password: "password1", Role: user.RoleManager})
			Expect(errors.Is(err, user.ErrCannotGrant)).To(BeTrue())
		})

		It("should still let a users.manage holder create plain users and edit profiles", func() {
			_, err := service.Create(managerCtx, user.CreateUserDTO{Name: "Plain", Email: "plain@example.com", Password: "password1"})
			Expect(err).NotTo(HaveOccurred())

			name := "Renamed"
			same := user.RoleUser
			_, err = service.Update(managerCtx, "u3", user.UpdateUserDTO{Name: &name, Role: &same})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should let holders of all grant anything", func() {
			perms := []string{"users.manage", "all"}
			u, err := service.Update(adminCtx, "u3", user.UpdateUserDTO{Permissions: &perms})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Permissions).To(ConsistOf("users.manage", "all"))
		})

		It("should limit roles.manage holders to permissions they hold", func() {
			rolesManager := internal.ContextWithUser(ctx, &internal.User{ID: "u2",
				Permissions: []string{"roles.manage", "widget.manage"}})

			allowed := []string{"widget.manage"}
			_, err := service.Update(rolesManager, "u3", user.UpdateUserDTO{Permissions: &allowed})
			Expect(err).NotTo(HaveOccurred())

			denied := []string{"tenants.manage"}
			_, err = service.Update(rolesManager, "u3", user.UpdateUserDTO{Permissions: &denied})
			Expect(errors.Is(err, user.ErrCannotGrant)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should delete an existing user", func() {
			Expect(service.Delete(ctx, "u3", "u1")).To(Succeed())
			_, err := service.GetByID(ctx, "u3")
			Expect(errors.Is(err, user.ErrUserNotFound)).To(BeTrue())
		})

		It("should not let a user delete themselves", func() {
			err := service.Delete(ctx, "u1", "u1")
			Expect(errors.Is(err, user.ErrCannotDeleteSelf)).To(BeTrue())
			Expect(mockRepo.users).To(HaveKey("u1"))
		})

		It("should return not found for an unknown id", func() {
			err := service.Delete(ctx, "missing", "u1")
			Expect(errors.Is(err, user.ErrUserNotFound)).To(BeTrue())
		})
	})
})
