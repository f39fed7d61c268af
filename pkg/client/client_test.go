package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/chathub/pkg/client"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Client Suite")
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func failure(w http.ResponseWriter, status int, code, message string) {
	writeEnvelope(w, status, map[string]interface{}{
		"success": false,
		"message": message,
		"error":   map[string]interface{}{"code": code, "message": message},
	})
}

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		server *httptest.Server
		mux    *http.ServeMux
		c      *client.Client
		hooked int
	)

	BeforeEach(func() {
		ctx = context.Background()
		hooked = 0
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		c = client.New(client.Config{
			BaseURL:        server.URL + "/api/v1",
			OnUnauthorized: func() { hooked++ },
		})
	})

	AfterEach(func() {
		server.Close()
	})

	It("should pick the base URL by environment", func() {
		Expect(client.BaseURLFor("production")).To(Equal(client.ProductionBaseURL))
		Expect(client.BaseURLFor("development")).To(Equal(client.LocalBaseURL))
		Expect(client.New(client.Config{}).BaseURL()).To(Equal(client.LocalBaseURL))
	})

	It("should store the login token and send it as a bearer header", func() {
		mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			writeEnvelope(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"token": "abc",
					"user":  map[string]interface{}{"id": "u1", "email": "admin@example.com"},
				},
			})
		})
		mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer abc"))
			writeEnvelope(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    map[string]interface{}{"id": "u1", "email": "admin@example.com"},
			})
		})

		resp, err := c.Login(ctx, "admin@example.com", "password")
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.User.ID).To(Equal("u1"))
		Expect(c.Tokens().Token()).To(Equal("abc"))

		me, err := c.Me(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(me.Email).To(Equal("admin@example.com"))
	})

	It("should clear the token and run the hook on 401", func() {
		c.Tokens().SetToken("stale")
		mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
			failure(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
		})

		_, err := c.Me(ctx)
		Expect(errors.Is(err, client.ErrUnauthorized)).To(BeTrue())
		Expect(c.Tokens().Token()).To(BeEmpty())
		Expect(hooked).To(Equal(1))
	})

	DescribeTable("should map statuses to typed errors carrying the server message",
		func(status int, sentinel error) {
			mux.HandleFunc("/api/v1/models/m1", func(w http.ResponseWriter, r *http.Request) {
				failure(w, status, "X", "server said no")
			})

			err := c.DeleteModel(ctx, "m1")
			Expect(errors.Is(err, sentinel)).To(BeTrue())
			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Message).To(Equal("server said no"))
			Expect(apiErr.StatusCode).To(Equal(status))
			Expect(hooked).To(Equal(0))
		},
		Entry("forbidden", http.StatusForbidden, client.ErrForbidden),
		Entry("not found", http.StatusNotFound, client.ErrNotFound),
		Entry("unprocessable", http.StatusUnprocessableEntity, client.ErrInvalidInput),
		Entry("bad request", http.StatusBadRequest, client.ErrBadRequest),
		Entry("server error", http.StatusInternalServerError, client.ErrServer),
		Entry("bad gateway", http.StatusBadGateway, client.ErrServer),
	)

	It("should pass list options and return pagination meta", func() {
		mux.HandleFunc("/api/v1/models", func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Query().Get("q")).To(Equal("gpt"))
			Expect(r.URL.Query().Get("page")).To(Equal("2"))
			Expect(r.URL.Query().Get("provider")).To(Equal("openai"))
			writeEnvelope(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"data":    []map[string]interface{}{{"id": "m1", "name": "GPT-4"}},
				"meta":    map[string]interface{}{"current_page": 2, "per_page": 1, "total": 2, "last_page": 2},
			})
		})

		models, meta, err := c.ListModels(ctx, client.ListOptions{
			Page: 2, PerPage: 1, Query: "gpt", Filters: map[string]string{"provider": "openai"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(models).To(HaveLen(1))
		Expect(models[0].Name).To(Equal("GPT-4"))
		Expect(meta.Total).To(BeEquivalentTo(2))
	})

	It("should download the widget export as raw bytes", func() {
		mux.HandleFunc("/api/v1/widget/settings/export", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Disposition", "attachment; filename=widget-settings-default.json")
			_, _ = w.Write([]byte(`{"title":"Chat with us"}`))
		})

		data, err := c.ExportWidgetSettings(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal(`{"title":"Chat with us"}`))
	})

	It("should surface a rejected widget import", func() {
		mux.HandleFunc("/api/v1/widget/settings/import", func(w http.ResponseWriter, r *http.Request) {
			failure(w, http.StatusUnprocessableEntity, "MALFORMED_IMPORT", "imported file is not valid JSON")
		})

		_, err := c.ImportWidgetSettings(ctx, []byte("nope"))
		Expect(errors.Is(err, client.ErrInvalidInput)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("imported file is not valid JSON"))
	})
})
