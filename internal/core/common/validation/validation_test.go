package validation_test

import (
	"testing"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validation Suite")
}

func fields(err *internal.AppError) []string {
	details := err.Details.(internal.ValidationErrors)
	out := make([]string, 0, len(details.Errors))
	for _, e := range details.Errors {
		out = append(out, e.Field)
	}
	return out
}

var _ = Describe("ValidationBuilder", func() {
	It("should pass valid input", func() {
		v := validation.NewValidator()
		v.Field("name", "Support bot").Required().MaxLength(50)
		v.Field("email", "admin@example.com").Email()
		v.Field("temperature", 0.7).Min(0).Max(2)
		Expect(v.Validate()).To(BeNil())
	})

	It("should collect one error per failing field", func() {
		v := validation.NewValidator()
		v.Field("name", "").Required().MinLength(2)
		v.Field("email", "not-an-email").Email()
		v.Field("max_tokens", 0).Min(1)

		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.StatusCode).To(Equal(400))
		Expect(fields(err)).To(Equal([]string{"name", "email", "max_tokens"}))
	})

	It("should treat OneOf as optional for empty values", func() {
		v := validation.NewValidator()
		v.Field("status", "").OneOf("active", "inactive")
		Expect(v.Validate()).To(BeNil())

		v = validation.NewValidator()
		v.Field("status", "archived").OneOf("active", "inactive")
		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(err.GetDetailedMessage()).To(ContainSubstring("must be one of"))
	})

	It("should require http(s) URLs", func() {
		v := validation.NewValidator()
		v.Field("base_url", "ftp://example.com").URL()
		Expect(v.Validate()).NotTo(BeNil())
	})

	It("should treat an empty slice as missing", func() {
		v := validation.NewValidator()
		v.Field("permissions", []string{}).Required()
		Expect(v.Validate()).NotTo(BeNil())
	})

	DescribeTable("Hostname",
		func(host string, valid bool) {
			v := validation.NewValidator()
			v.Field("domain", host).Hostname()
			if valid {
				Expect(v.Validate()).To(BeNil())
			} else {
				Expect(v.Validate()).NotTo(BeNil())
			}
		},
		Entry("subdomain", "chat.acme.io", true),
		Entry("empty is optional", "", true),
		Entry("scheme", "https://acme.io", false),
		Entry("port", "acme.io:8080", false),
		Entry("single label", "localhost", false),
		Entry("leading dash", "-acme.io", false),
	)
})
