package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/frahmantamala/chathub/internal/core/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Suite")
}

var _ = Describe("LocalStore", func() {
	var (
		ctx   context.Context
		store *storage.LocalStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		store, err = storage.NewLocalStore(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
	})

	It("should round-trip an object", func() {
		Expect(store.Put(ctx, "knowledge/a/faq.txt", strings.NewReader("hello"), 5, "text/plain")).To(Succeed())

		rc, err := store.Get(ctx, "knowledge/a/faq.txt")
		Expect(err).NotTo(HaveOccurred())
		defer rc.Close()
		body, err := io.ReadAll(rc)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("hello"))
	})

	It("should report missing objects and tolerate deleting them", func() {
		_, err := store.Get(ctx, "knowledge/missing.txt")
		Expect(errors.Is(err, storage.ErrObjectNotFound)).To(BeTrue())
		Expect(store.Delete(ctx, "knowledge/missing.txt")).To(Succeed())
	})

	It("should delete objects", func() {
		Expect(store.Put(ctx, "k/doc.md", strings.NewReader("# doc"), 5, "text/markdown")).To(Succeed())
		Expect(store.Delete(ctx, "k/doc.md")).To(Succeed())

		_, err := store.Get(ctx, "k/doc.md")
		Expect(errors.Is(err, storage.ErrObjectNotFound)).To(BeTrue())
	})

	It("should reject keys escaping the root", func() {
		err := store.Put(ctx, "../outside.txt", strings.NewReader("x"), 1, "text/plain")
		Expect(err).To(HaveOccurred())
	})
})
