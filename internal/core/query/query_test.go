package query_test

import (
	"testing"

	tenantDatamodel "github.com/frahmantamala/chathub/internal/core/datamodel/tenant"
	"github.com/frahmantamala/chathub/internal/core/dbtest"
	"github.com/frahmantamala/chathub/internal/core/query"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestQuery(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Query Suite")
}

var _ = Describe("ListParams", func() {
	DescribeTable("Normalize",
		func(in query.ListParams, page, perPage int) {
			n := in.Normalize()
			Expect(n.Page).To(Equal(page))
			Expect(n.PerPage).To(Equal(perPage))
		},
		Entry("zero values", query.ListParams{}, 1, query.DefaultPerPage),
		Entry("negative page", query.ListParams{Page: -3, PerPage: 5}, 1, 5),
		Entry("oversized page size", query.ListParams{Page: 2, PerPage: 1000}, 2, query.MaxPerPage),
	)

	It("should compute offsets and last pages", func() {
		Expect(query.ListParams{Page: 3, PerPage: 10}.Offset()).To(Equal(20))
		Expect(query.PageInfo{Total: 0, PerPage: 10}.LastPage()).To(Equal(1))
		Expect(query.PageInfo{Total: 21, PerPage: 10}.LastPage()).To(Equal(3))
	})

	It("should escape LIKE wildcards", func() {
		Expect(query.EscapeLike(`50%_off\`)).To(Equal(`50\%\_off\\`))
	})

	It("should match case-insensitively in memory", func() {
		Expect(query.ContainsFold("ACME", "the acme corp")).To(BeTrue())
		Expect(query.ContainsFold("  ", "anything")).To(BeTrue())
		Expect(query.ContainsFold("globex", "acme", "initech")).To(BeFalse())
	})

	It("should map page items while keeping totals", func() {
		p := query.Page[int]{Items: []int{1, 2}, Total: 7, Params: query.ListParams{Page: 2, PerPage: 2}}
		m := query.MapPage(p, func(i int) string { return string(rune('a' + i)) })
		Expect(m.Items).To(Equal([]string{"b", "c"}))
		Expect(m.Info()).To(Equal(query.PageInfo{Page: 2, PerPage: 2, Total: 7, Count: 2}))
	})
})

var _ = Describe("FindPage", func() {
	var db *gorm.DB

	BeforeEach(func() {
		var err error
		db, err = dbtest.Open()
		Expect(err).ToNot(HaveOccurred())
		for _, t := range []tenantDatamodel.Tenant{
			{ID: "t-1", Name: "Acme", Slug: "acme"},
			{ID: "t-2", Name: "Acme Labs", Slug: "acme-labs"},
			{ID: "t-3", Name: "Globex", Slug: "globex"},
			{ID: "t-4", Name: "100% Real", Slug: "real"},
		} {
			Expect(db.Create(&t).Error).To(Succeed())
		}
	})

	It("should count every match but load only the requested page", func() {
		q := query.ApplySearch(db.Model(&tenantDatamodel.Tenant{}), "ACME", "name", "slug")
		rows, total, err := query.FindPage[*tenantDatamodel.Tenant](q, query.ListParams{Page: 2, PerPage: 1}, "name ASC")
		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(int64(2)))
		Expect(rows).To(HaveLen(1))
		Expect(rows[0].Name).To(Equal("Acme Labs"))
	})

	It("should treat wildcards in the search term literally", func() {
		q := query.ApplySearch(db.Model(&tenantDatamodel.Tenant{}), "%", "name")
		rows, total, err := query.FindPage[*tenantDatamodel.Tenant](q, query.ListParams{}, "name ASC")
		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(int64(1)))
		Expect(rows[0].ID).To(Equal("t-4"))
	})
})
