package postgres_test

import (
	"context"
	"fmt"
	"testing"

	userDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/user"
	"github.com/frahmantamala/chathub/internal/core/dbtest"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/user"
	userPostgres "github.com/frahmantamala/chathub/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("User Repository", func() {
	var (
		ctx  context.Context
		repo user.RepositoryAPI
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		repo = userPostgres.NewUserRepository(db)

		for i, name := range []string{"Alice Admin", "Bob Manager", "Carol_User"} {
			err := repo.Create(ctx, &userDatamodel.User{
				ID:          fmt.Sprintf("id-%d", i),
				Name:        name,
				Email:       fmt.Sprintf("person%d@example.com", i),
				Role:        []string{"admin", "manager", "user"}[i],
				Permissions: []string{"users.view"},
				IsActive:    true,
			})
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("should reject a duplicate email", func() {
		err := repo.Create(ctx, &userDatamodel.User{ID: "dup", Name: "Dup", Email: "person0@example.com", Role: "user"})
		Expect(err).To(HaveOccurred())
	})

	It("should search case-insensitively and treat wildcards literally", func() {
		rows, total, err := repo.List(ctx, query.ListParams{Search: "bob"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(1)))
		Expect(rows[0].Name).To(Equal("Bob Manager"))

		rows, _, err = repo.List(ctx, query.ListParams{Search: "_"})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Name).To(Equal("Carol_User"))
	})

	It("should paginate while reporting the full total", func() {
		rows, total, err := repo.List(ctx, query.ListParams{Page: 2, PerPage: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(3)))
		Expect(rows).To(HaveLen(1))
	})

	It("should round-trip the permissions column", func() {
		u, err := repo.GetByID(ctx, "id-1")
		Expect(err).NotTo(HaveOccurred())
		Expect([]string(u.Permissions)).To(Equal([]string{"users.view"}))
	})

	It("should find by email ignoring case", func() {
		u, err := repo.GetByEmail(ctx, "PERSON2@example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(u).NotTo(BeNil())
		Expect(u.ID).To(Equal("id-2"))
	})

	It("should report whether a delete removed anything", func() {
		deleted, err := repo.Delete(ctx, "id-0")
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeTrue())

		deleted, err = repo.Delete(ctx, "id-0")
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeFalse())

		n, err := repo.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(2)))
	})
})
