package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/chathub/internal/transport/swagger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSwagger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swagger Suite")
}

var _ = Describe("OpenAPI document", func() {
	It("should load and validate", func() {
		doc, err := swagger.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Info.Title).To(Equal("AI Chat Hub Admin API"))
	})

	DescribeTable("should describe every mounted route",
		func(path, method string) {
			doc, err := swagger.Load(context.Background())
			Expect(err).NotTo(HaveOccurred())
			item := doc.Paths.Find(path)
			Expect(item).NotTo(BeNil(), path)
			Expect(item.GetOperation(method)).NotTo(BeNil(), method+" "+path)
		},
		Entry(nil, "/auth/login", http.MethodPost),
		Entry(nil, "/dashboard/overview", http.MethodGet),
		Entry(nil, "/models/{id}/default", http.MethodPost),
		Entry(nil, "/followups/{id}/nodes/{nodeID}/move", http.MethodPost),
		Entry(nil, "/knowledge/upload", http.MethodPost),
		Entry(nil, "/widget/settings/import", http.MethodPost),
		Entry(nil, "/widget/embed", http.MethodGet),
		Entry(nil, "/tenants/{id}", http.MethodDelete),
	)

	It("should serve the raw document", func() {
		rec := httptest.NewRecorder()
		swagger.SpecHandler(rec, httptest.NewRequest(http.MethodGet, swagger.SpecPath, nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("openapi: 3.0.3"))
	})
})
