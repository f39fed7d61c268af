package internal_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/frahmantamala/chathub/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

var _ = Describe("AppError", func() {
	DescribeTable("status codes",
		func(err *internal.AppError, status int) {
			Expect(err.StatusCode).To(Equal(status))
		},
		Entry("validation", internal.NewValidationError("bad", internal.ErrCodeInvalidValue), http.StatusBadRequest),
		Entry("field", internal.NewValidationFieldError("name", "name is required", internal.ErrCodeInvalidValue), http.StatusBadRequest),
		Entry("unprocessable", internal.NewUnprocessableError("bad import", internal.ErrCodeInvalidImport), http.StatusUnprocessableEntity),
		Entry("not found", internal.NewNotFoundError("gone", internal.ErrCodeModelNotFound), http.StatusNotFound),
		Entry("unauthorized", internal.ErrInvalidToken, http.StatusUnauthorized),
		Entry("forbidden", internal.ErrForbidden, http.StatusForbidden),
		Entry("conflict", internal.NewConflictError("taken", internal.ErrCodeDuplicate), http.StatusConflict),
		Entry("internal", internal.NewInternalError("boom", nil), http.StatusInternalServerError),
		Entry("external", internal.NewExternalError("storage down", nil), http.StatusBadGateway),
	)

	It("should match sentinels through WithCause copies and wrapping", func() {
		wrapped := fmt.Errorf("login: %w", internal.ErrTokenExpired.WithCause(errors.New("exp")))
		Expect(errors.Is(wrapped, internal.ErrTokenExpired)).To(BeTrue())
		Expect(errors.Is(wrapped, internal.ErrTokenRevoked)).To(BeFalse())
		Expect(internal.ErrTokenExpired.Cause).To(BeNil())

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.Error()).To(Equal("Token has expired: exp"))
	})

	It("should surface field messages", func() {
		err := internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
			WithDetails(internal.ValidationErrors{Errors: []internal.ValidationError{
				{Field: "name", Message: "name is required"},
				{Field: "email", Message: "email is invalid"},
			}})
		Expect(err.Error()).To(Equal("name is required"))
		Expect(err.GetDetailedMessage()).To(Equal("name is required; email is invalid"))
	})

	It("should not leak the cause when marshalled", func() {
		raw, err := internal.NewInternalError("boom", errors.New("dsn=secret")).MarshalJSON()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(raw)).ToNot(ContainSubstring("secret"))
		Expect(string(raw)).To(ContainSubstring(`"code":"INTERNAL_ERROR"`))
	})
})

var _ = Describe("request context", func() {
	It("should resolve the tenant from the header, then the principal, then the default", func() {
		ctx := context.Background()
		Expect(internal.TenantFromContext(ctx)).To(Equal(internal.DefaultTenantID))

		ctx = internal.ContextWithUser(ctx, &internal.User{ID: "u-1", TenantID: "acme"})
		Expect(internal.TenantFromContext(ctx)).To(Equal("acme"))
		Expect(internal.UserIDFromContext(ctx)).To(Equal("u-1"))

		Expect(internal.TenantFromContext(internal.ContextWithTenant(ctx, "globex"))).To(Equal("globex"))
	})

	It("should honour the all permission", func() {
		Expect((&internal.User{Permissions: []string{internal.PermissionAll}}).HasPermission("tenants.manage")).To(BeTrue())
		Expect((*internal.User)(nil).HasPermission("models.view")).To(BeFalse())
	})
})
