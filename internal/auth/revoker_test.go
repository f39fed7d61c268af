package auth

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Revoker", func() {
	ctx := context.Background()

	ginkgo.Describe("MemoryRevoker", func() {
		ginkgo.It("should forget ids once their ttl passes", func() {
			now := time.Now()
			r := NewMemoryRevoker()
			r.now = func() time.Time { return now }

			gomega.Expect(r.Revoke(ctx, "jti-1", time.Minute)).To(gomega.Succeed())
			revoked, err := r.IsRevoked(ctx, "jti-1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(revoked).To(gomega.BeTrue())

			now = now.Add(2 * time.Minute)
			revoked, err = r.IsRevoked(ctx, "jti-1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(revoked).To(gomega.BeFalse())
		})

		ginkgo.It("should ignore already expired tokens", func() {
			r := NewMemoryRevoker()
			gomega.Expect(r.Revoke(ctx, "jti-2", 0)).To(gomega.Succeed())
			gomega.Expect(r.IsRevoked(ctx, "jti-2")).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("RedisRevoker", func() {
		var (
			mr *miniredis.Miniredis
			r  *RedisRevoker
		)

		ginkgo.BeforeEach(func() {
			var err error
			mr, err = miniredis.Run()
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			r = NewRedisRevoker(mr.Addr(), "", 0)
		})

		ginkgo.AfterEach(func() {
			_ = r.Close()
			mr.Close()
		})

		ginkgo.It("should store ids under a namespaced key with a ttl", func() {
			gomega.Expect(r.Revoke(ctx, "jti-3", time.Minute)).To(gomega.Succeed())

			gomega.Expect(mr.Exists("chathub:revoked:jti-3")).To(gomega.BeTrue())
			gomega.Expect(mr.TTL("chathub:revoked:jti-3")).To(gomega.Equal(time.Minute))
			gomega.Expect(r.IsRevoked(ctx, "jti-3")).To(gomega.BeTrue())
		})

		ginkgo.It("should expire ids with redis", func() {
			gomega.Expect(r.Revoke(ctx, "jti-4", time.Minute)).To(gomega.Succeed())
			mr.FastForward(2 * time.Minute)

			gomega.Expect(r.IsRevoked(ctx, "jti-4")).To(gomega.BeFalse())
		})

		ginkgo.It("should surface connection errors", func() {
			mr.Close()

			_, err := r.IsRevoked(ctx, "jti-5")
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
