package seed_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/chathub/internal/auth"
	authPostgres "github.com/frahmantamala/chathub/internal/auth/postgres"
	aimodelDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/aimodel"
	followupDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/followup"
	roleDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/role"
	userDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/user"
	"github.com/frahmantamala/chathub/internal/core/dbtest"
	"github.com/frahmantamala/chathub/internal/seed"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestSeed(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Seed Suite")
}

var _ = Describe("Seeder", func() {
	var (
		db       *gorm.DB
		fixtures *seed.Fixtures
		seeder   *seed.Seeder
		ctx      context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).ToNot(HaveOccurred())

		fixtures, err = seed.LoadFixtures()
		Expect(err).ToNot(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		seeder = seed.NewSeeder(db, fixtures, bcrypt.MinCost, logger)
		ctx = context.Background()
	})

	It("should decode the embedded fixtures", func() {
		Expect(fixtures.Version).To(Equal("1"))
		Expect(fixtures.Users).To(HaveLen(3))
		Expect(fixtures.Models).ToNot(BeEmpty())
		Expect(fixtures.Flows[0].Nodes[1].Conditions).To(HaveLen(2))
	})

	It("should insert every fixture once", func() {
		res, err := seeder.Run(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Roles).To(Equal(3))
		Expect(res.Users).To(Equal(len(fixtures.Users)))
		Expect(res.Tenants).To(Equal(len(fixtures.Tenants)))
		Expect(res.Models).To(Equal(len(fixtures.Models)))
		Expect(res.Templates).To(Equal(len(fixtures.Templates)))
		Expect(res.Flows).To(Equal(len(fixtures.Flows)))
		Expect(res.Sources).To(Equal(len(fixtures.Sources)))

		again, err := seeder.Run(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(again).To(Equal(seed.Result{}))

		var users int64
		Expect(db.Model(&userDatamodel.User{}).Count(&users).Error).To(Succeed())
		Expect(users).To(Equal(int64(len(fixtures.Users))))
	})

	It("should leave exactly one default model", func() {
		_, err := seeder.Run(ctx)
		Expect(err).ToNot(HaveOccurred())

		var defaults int64
		Expect(db.Model(&aimodelDatamodel.AIModel{}).Where("is_default = ?", true).Count(&defaults).Error).To(Succeed())
		Expect(defaults).To(Equal(int64(1)))
	})

	It("should not steal the default from an existing model", func() {
		Expect(db.Create(&aimodelDatamodel.AIModel{ID: "m-0", Name: "Local", Provider: "ollama", IsDefault: true, Status: "active"}).Error).To(Succeed())

		_, err := seeder.Run(ctx)
		Expect(err).ToNot(HaveOccurred())

		var def aimodelDatamodel.AIModel
		Expect(db.Where("is_default = ?", true).First(&def).Error).To(Succeed())
		Expect(def.ID).To(Equal("m-0"))
	})

	It("should keep node order and fixed node ids", func() {
		_, err := seeder.Run(ctx)
		Expect(err).ToNot(HaveOccurred())

		var flow followupDatamodel.Flow
		Expect(db.Preload("Nodes", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
			Where("name = ?", "New Lead Nurture").First(&flow).Error).To(Succeed())
		Expect(flow.Nodes).To(HaveLen(4))
		Expect(flow.Nodes[0].ID).To(Equal("lead-welcome"))
		Expect(flow.Nodes[1].Conditions[0].Target).To(Equal("lead-call"))
	})

	It("should let the seeded admin log in", func() {
		_, err := seeder.Run(ctx)
		Expect(err).ToNot(HaveOccurred())

		svc := auth.NewService(
			authPostgres.NewRepository(db),
			auth.NewJWTTokenGenerator("access-secret-access-secret-access!", "refresh-secret-refresh-secret-refr!", time.Minute, time.Hour),
			auth.NewMemoryRevoker(),
			nil,
			nil,
		)
		resp, err := svc.Login(ctx, auth.LoginDTO{Email: "admin@example.com", Password: "password"})
		Expect(err).ToNot(HaveOccurred())
		Expect(resp.User.Permissions).To(ContainElement("all"))
	})

	It("should remove everything on clear", func() {
		_, err := seeder.Run(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(seeder.Clear(ctx)).To(Succeed())

		var roles, nodes int64
		Expect(db.Model(&roleDatamodel.Role{}).Count(&roles).Error).To(Succeed())
		Expect(db.Model(&followupDatamodel.Node{}).Count(&nodes).Error).To(Succeed())
		Expect(roles).To(BeZero())
		Expect(nodes).To(BeZero())
	})
})
