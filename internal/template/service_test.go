package template_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/frahmantamala/chathub/internal/core/dbtest"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/template"
	templatePostgres "github.com/frahmantamala/chathub/internal/template/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestTemplate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Template Module Suite")
}

var _ = Describe("Template Service", func() {
	var (
		ctx     context.Context
		service *template.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = template.NewService(templatePostgres.NewTemplateRepository(db), logger)

		fixtures := []template.CreateTemplateDTO{
			{Name: "Welcome greeting", Category: "Support", PromptText: "Greet the customer warmly", Tags: []string{"Onboarding", "greeting"}},
			{Name: "Refund policy", Category: "support", PromptText: "Explain the 30 day refund window", Tags: []string{"billing"}},
			{Name: "Upsell", Category: "sales", PromptText: "Suggest the growth plan", Tags: []string{"billing", "upsell"}},
		}
		for _, f := range fixtures {
			_, err := service.Create(ctx, f)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("should return every template for an empty query", func() {
		page, err := service.List(ctx, query.ListParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Total).To(Equal(int64(3)))
	})

	It("should search name and prompt text case-insensitively", func() {
		page, err := service.List(ctx, query.ListParams{Search: "REFUND"})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Items).To(HaveLen(1))
		Expect(page.Items[0].Name).To(Equal("Refund policy"))

		page, err = service.List(ctx, query.ListParams{Search: "growth plan"})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Items).To(HaveLen(1))
		Expect(page.Items[0].Name).To(Equal("Upsell"))
	})

	It("should filter by category and tag", func() {
		page, err := service.List(ctx, query.ListParams{Filters: map[string]string{"category": "SUPPORT"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Total).To(Equal(int64(2)))

		page, err = service.List(ctx, query.ListParams{Filters: map[string]string{"tag": "billing"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Total).To(Equal(int64(2)))

		page, err = service.List(ctx, query.ListParams{Filters: map[string]string{"tag": "bill"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(page.Total).To(BeZero())
	})

	It("should list distinct categories", func() {
		cats, err := service.Categories(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(cats).To(Equal([]string{"sales", "support"}))
	})

	It("should normalize tags and default the category", func() {
		t, err := service.Create(ctx, template.CreateTemplateDTO{Name: "Plain", PromptText: "Hello", Tags: []string{" A ", "a", ""}})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Category).To(Equal("general"))
		Expect(t.Tags).To(Equal([]string{"a"}))
	})

	It("should update only provided fields", func() {
		page, err := service.List(ctx, query.ListParams{Search: "Upsell"})
		Expect(err).NotTo(HaveOccurred())
		id := page.Items[0].ID

		text := "Suggest the enterprise plan"
		t, err := service.Update(ctx, id, template.UpdateTemplateDTO{PromptText: &text})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.PromptText).To(Equal(text))
		Expect(t.Category).To(Equal("sales"))
		Expect(t.Tags).To(ConsistOf("billing", "upsell"))
	})

	It("should return not found when deleting twice", func() {
		page, err := service.List(ctx, query.ListParams{})
		Expect(err).NotTo(HaveOccurred())
		id := page.Items[0].ID

		Expect(service.Delete(ctx, id)).To(Succeed())
		Expect(errors.Is(service.Delete(ctx, id), template.ErrTemplateNotFound)).To(BeTrue())
	})
})
