package followup_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/frahmantamala/chathub/internal/core/dbtest"
	"github.com/frahmantamala/chathub/internal/core/events"
	"github.com/frahmantamala/chathub/internal/core/query"
	"github.com/frahmantamala/chathub/internal/followup"
	followupPostgres "github.com/frahmantamala/chathub/internal/followup/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFollowUp(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Follow-up Module Suite")
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func nodeIDs(f *followup.Flow) []string {
	ids := make([]string, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

var _ = Describe("Follow-up Service", func() {
	var (
		ctx       context.Context
		service   *followup.Service
		publisher *capturePublisher
		onboard   *followup.Flow
		winback   *followup.Flow
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		publisher = &capturePublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = followup.NewService(followupPostgres.NewFlowRepository(db), publisher, logger)

		onboard, err = service.Create(ctx, followup.CreateFlowDTO{
			Name: "Onboarding",
			Nodes: []followup.CreateNodeDTO{
				{Type: "email", Content: "Welcome!", Delay: 0, DelayUnit: "minutes"},
				{Type: "task", Content: "Call the customer", Delay: 1, DelayUnit: "days"},
			},
		})
		Expect(err).NotTo(HaveOccurred())

		winback, err = service.Create(ctx, followup.CreateFlowDTO{
			Name:  "Win-back",
			Nodes: []followup.CreateNodeDTO{{Type: "email", Content: "We miss you"}},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("AddNode", func() {
		It("should append to the target flow only", func() {
			n, err := service.AddNode(ctx, onboard.ID, followup.CreateNodeDTO{Type: "email", Content: "Tips"})
			Expect(err).NotTo(HaveOccurred())
			Expect(n.Position).To(Equal(2))
			Expect(n.DelayUnit).To(Equal("hours"))

			got, err := service.GetByID(ctx, onboard.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Nodes).To(HaveLen(3))
			Expect(got.Nodes[2].ID).To(Equal(n.ID))

			other, err := service.GetByID(ctx, winback.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodeIDs(other)).To(Equal(nodeIDs(winback)))

			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeFollowUpNodeAdded))
		})

		It("should return not found for an unknown flow", func() {
			_, err := service.AddNode(ctx, "missing", followup.CreateNodeDTO{Type: "task"})
			Expect(errors.Is(err, followup.ErrFlowNotFound)).To(BeTrue())
		})

		It("should validate node type and operators", func() {
			_, err := service.AddNode(ctx, onboard.ID, followup.CreateNodeDTO{Type: "sms"})
			Expect(err).To(HaveOccurred())

			_, err = service.AddNode(ctx, onboard.ID, followup.CreateNodeDTO{
				Type:       "conditional",
				Conditions: []followup.Condition{{Field: "opened", Operator: "roughly"}},
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("MoveNode and DeleteNode", func() {
		It("should reorder within the flow and keep positions contiguous", func() {
			third, err := service.AddNode(ctx, onboard.ID, followup.CreateNodeDTO{Type: "task", Content: "Survey"})
			Expect(err).NotTo(HaveOccurred())
			original := nodeIDs(onboard)

			f, err := service.MoveNode(ctx, onboard.ID, third.ID, followup.MoveNodeDTO{Position: 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(nodeIDs(f)).To(Equal([]string{third.ID, original[0], original[1]}))

			f, err = service.MoveNode(ctx, onboard.ID, third.ID, followup.MoveNodeDTO{Position: 99})
			Expect(err).NotTo(HaveOccurred())
			Expect(nodeIDs(f)).To(Equal([]string{original[0], original[1], third.ID}))

			Expect(service.DeleteNode(ctx, onboard.ID, original[0])).To(Succeed())
			f, err = service.GetByID(ctx, onboard.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodeIDs(f)).To(Equal([]string{original[1], third.ID}))
			for i, n := range f.Nodes {
				Expect(n.Position).To(Equal(i))
			}
		})

		It("should not move nodes across flows", func() {
			_, err := service.MoveNode(ctx, winback.ID, onboard.Nodes[0].ID, followup.MoveNodeDTO{Position: 0})
			Expect(errors.Is(err, followup.ErrNodeNotFound)).To(BeTrue())
		})
	})

	Describe("Validate", func() {
		It("should report dangling condition targets", func() {
			target := onboard.Nodes[1].ID
			n, err := service.AddNode(ctx, onboard.ID, followup.CreateNodeDTO{
				Type: "conditional",
				Conditions: []followup.Condition{
					{Field: "opened", Operator: "equals", Value: "true", Target: target},
					{Field: "clicked", Operator: "equals", Value: "true", Target: winback.Nodes[0].ID},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			report, err := service.Validate(ctx, onboard.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Valid).To(BeFalse())
			Expect(report.Issues).To(HaveLen(1))
			Expect(report.Issues[0].NodeID).To(Equal(n.ID))
			Expect(report.Issues[0].Condition).To(Equal(1))
			Expect(report.Issues[0].Target).To(Equal(winback.Nodes[0].ID))
		})

		It("should pass a flow without conditions", func() {
			report, err := service.Validate(ctx, winback.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Valid).To(BeTrue())
			Expect(report.Issues).To(BeEmpty())
		})
	})

	Describe("SetStatus", func() {
		It("should activate flows with nodes and reject empty ones", func() {
			f, err := service.SetStatus(ctx, onboard.ID, followup.SetStatusDTO{Status: "active"})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Status).To(Equal(followup.StatusActive))

			empty, err := service.Create(ctx, followup.CreateFlowDTO{Name: "Empty"})
			Expect(err).NotTo(HaveOccurred())
			Expect(empty.Status).To(Equal(followup.StatusDraft))

			_, err = service.SetStatus(ctx, empty.ID, followup.SetStatusDTO{Status: "active"})
			Expect(errors.Is(err, followup.ErrEmptyFlow)).To(BeTrue())

			_, err = service.SetStatus(ctx, empty.ID, followup.SetStatusDTO{Status: "archived"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List and Delete", func() {
		It("should search names and delete flows with their nodes", func() {
			page, err := service.List(ctx, query.ListParams{Search: "win"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Items).To(HaveLen(1))
			Expect(page.Items[0].Nodes).To(HaveLen(1))

			Expect(service.Delete(ctx, winback.ID)).To(Succeed())
			_, err = service.GetByID(ctx, winback.ID)
			Expect(errors.Is(err, followup.ErrFlowNotFound)).To(BeTrue())
			Expect(errors.Is(service.Delete(ctx, winback.ID), followup.ErrFlowNotFound)).To(BeTrue())
		})
	})

	It("should convert node delays to durations", func() {
		Expect(onboard.Nodes[1].DelayDuration().Hours()).To(Equal(24.0))
	})
})
