package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/frahmantamala/hr-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/segmentio/kafka-go"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

type recordingWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

var _ = Describe("EventBus", func() {
	var (
		bus    *events.EventBus
		logger *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(logger)
	})

	It("delivers to typed and wildcard handlers", func() {
		var mu sync.Mutex
		got := []string{}
		record := func(tag string) events.Handler {
			return func(_ context.Context, e events.Event) error {
				mu.Lock()
				defer mu.Unlock()
				got = append(got, tag+":"+e.EventType())
				return nil
			}
		}
		bus.Subscribe(events.EventTypeEmployeeChanged, record("typed"))
		bus.Subscribe(events.Wildcard, record("all"))

		Expect(bus.Publish(context.Background(), events.NewChangeEvent(events.EventTypeEmployeeChanged, "employee", 1, events.ActionCreated))).To(Succeed())
		bus.Wait()

		Expect(got).To(ConsistOf("typed:employee.changed", "all:employee.changed"))
	})

	It("keeps running handlers after the publishing context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		var seen error
		done := make(chan struct{})
		bus.Subscribe(events.EventTypeFeatureChanged, func(ctx context.Context, _ events.Event) error {
			seen = ctx.Err()
			close(done)
			return nil
		})
		cancel()
		Expect(bus.Publish(ctx, events.NewChangeEvent(events.EventTypeFeatureChanged, "feature", 1, events.ActionUpdated))).To(Succeed())
		Eventually(done).Should(BeClosed())
		Expect(seen).NotTo(HaveOccurred())
	})

	It("surfaces handler errors on synchronous publish", func() {
		bus.Subscribe(events.EventTypePolicyChanged, func(context.Context, events.Event) error {
			return errors.New("boom")
		})
		err := bus.PublishSync(context.Background(), events.NewChangeEvent(events.EventTypePolicyChanged, "policy", 2, events.ActionUpdated))
		Expect(err).To(MatchError(ContainSubstring("boom")))
	})

	It("scopes change events to a recipient", func() {
		e := events.NewChangeEvent(events.EventTypeNotificationCreated, "notification", 9, events.ActionCreated).ForUser(42)
		Expect(events.RecipientOf(e)).To(Equal(int64(42)))
		Expect(e.Payload()).To(HaveKeyWithValue("user_id", int64(42)))
	})
})

var _ = Describe("KafkaForwarder", func() {
	It("writes a JSON envelope keyed by event type", func() {
		w := &recordingWriter{}
		f := events.NewKafkaForwarderWithWriter(slog.New(slog.NewTextHandler(io.Discard, nil)), w, "hr.events")

		e := events.NewChangeEvent(events.EventTypeWorkPermitChanged, "work_permit", 7, events.ActionCreated)
		Expect(f.Forward(context.Background(), e)).To(Succeed())

		Expect(w.msgs).To(HaveLen(1))
		Expect(string(w.msgs[0].Key)).To(Equal(events.EventTypeWorkPermitChanged))
		Expect(w.msgs[0].Topic).To(Equal("hr.events"))

		var body map[string]interface{}
		Expect(json.Unmarshal(w.msgs[0].Value, &body)).To(Succeed())
		Expect(body["id"]).To(Equal(e.ID))
		Expect(body["data"]).To(HaveKeyWithValue("entity", "work_permit"))
	})
})
