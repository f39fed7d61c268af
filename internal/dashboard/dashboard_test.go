package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frahmantamala/chathub/internal/dashboard"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDashboard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Suite")
}

func fixed(n int64) dashboard.Counter {
	return dashboard.CounterFunc(func(context.Context) (int64, error) { return n, nil })
}

var _ = Describe("Overview", func() {
	It("should collect every counter", func() {
		svc := dashboard.NewService(dashboard.Counters{
			Models: fixed(3), Templates: fixed(5), Flows: fixed(2),
			Sources: fixed(4), Users: fixed(3), Tenants: fixed(1),
		}, nil)

		o, err := svc.Overview(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(o.Models).To(BeEquivalentTo(3))
		Expect(o.Templates).To(BeEquivalentTo(5))
		Expect(o.Flows).To(BeEquivalentTo(2))
		Expect(o.Sources).To(BeEquivalentTo(4))
		Expect(o.Users).To(BeEquivalentTo(3))
		Expect(o.Tenants).To(BeEquivalentTo(1))
		Expect(o.GeneratedAt).NotTo(BeZero())
	})

	It("should run counters concurrently", func() {
		var running, peak int32
		slow := dashboard.CounterFunc(func(context.Context) (int64, error) {
			now := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if now <= p || atomic.CompareAndSwapInt32(&peak, p, now) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return 1, nil
		})
		svc := dashboard.NewService(dashboard.Counters{Models: slow, Templates: slow, Flows: slow}, nil)

		_, err := svc.Overview(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(atomic.LoadInt32(&peak)).To(BeNumerically(">", 1))
	})

	It("should fail when any counter fails", func() {
		broken := dashboard.CounterFunc(func(context.Context) (int64, error) { return 0, errors.New("db down") })
		svc := dashboard.NewService(dashboard.Counters{Models: fixed(1), Users: broken}, nil)

		_, err := svc.Overview(context.Background())
		Expect(err).To(HaveOccurred())

		rec := httptest.NewRecorder()
		dashboard.NewHandler(svc).Overview(rec, httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil))
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})

	It("should wrap the overview in a success envelope", func() {
		svc := dashboard.NewService(dashboard.Counters{Models: fixed(7)}, nil)
		rec := httptest.NewRecorder()
		dashboard.NewHandler(svc).Overview(rec, httptest.NewRequest(http.MethodGet, "/dashboard/overview", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body struct {
			Success bool `json:"success"`
			Data    struct {
				Models int64 `json:"models"`
			} `json:"data"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Success).To(BeTrue())
		Expect(body.Data.Models).To(BeEquivalentTo(7))
	})
})
