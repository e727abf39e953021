package notification_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/hr-management/internal/core/events"
	"github.com/frahmantamala/hr-management/internal/notification"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

var _ = Describe("ChannelFor", func() {
	It("maps known event types onto their channel", func() {
		Expect(notification.ChannelFor(events.EventTypeWorkPermitChanged)).To(Equal("work_permits"))
		Expect(notification.ChannelFor(events.EventTypeConsentChanged)).To(Equal("feedback"))
	})

	It("falls back to the event prefix", func() {
		Expect(notification.ChannelFor("payroll.closed")).To(Equal("payroll"))
		Expect(notification.ChannelFor("plain")).To(Equal("plain"))
	})
})

var _ = Describe("Hub", func() {
	var (
		hub    *notification.Hub
		server *httptest.Server
	)

	dial := func(userID int64) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?user=" + strconv.FormatInt(userID, 10)
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		Expect(err).NotTo(HaveOccurred())

		var hello notification.Message
		Expect(conn.ReadJSON(&hello)).To(Succeed())
		Expect(hello.Type).To(Equal("connected"))
		Expect(hello.ClientID).NotTo(BeEmpty())
		return conn
	}

	subscribe := func(conn *websocket.Conn, channel string) {
		Expect(conn.WriteJSON(notification.ClientMessage{Action: "subscribe", Channel: channel})).To(Succeed())
		var ack notification.Message
		Expect(conn.ReadJSON(&ack)).To(Succeed())
		Expect(ack.Type).To(Equal("subscribed"))
		Expect(ack.Channel).To(Equal(channel))
	}

	BeforeEach(func() {
		hub = notification.NewHub(nil, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var uid int64 = 1
			if r.URL.Query().Get("user") == "2" {
				uid = 2
			}
			hub.Serve(w, r, uid)
		}))
	})

	AfterEach(func() {
		hub.Close()
		server.Close()
	})

	It("delivers refetch signals to subscribed clients only", func() {
		a := dial(1)
		defer a.Close()
		b := dial(2)
		defer b.Close()
		subscribe(a, "employees")

		Eventually(hub.ClientCount).Should(Equal(2))
		Expect(hub.Broadcast("employees", 0)).To(Equal(1))

		var msg notification.Message
		Expect(a.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		Expect(a.ReadJSON(&msg)).To(Succeed())
		Expect(msg).To(Equal(notification.Message{Type: "refetch", Channel: "employees"}))
	})

	It("limits user-addressed signals to that user's connections", func() {
		a := dial(1)
		defer a.Close()
		b := dial(2)
		defer b.Close()
		subscribe(a, "notifications")
		subscribe(b, "notifications")

		Expect(hub.Broadcast("notifications", 2)).To(Equal(1))
	})

	It("forwards bus events through Attach", func() {
		bus := events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		hub.Attach(bus)

		a := dial(1)
		defer a.Close()
		subscribe(a, "work_permits")

		Expect(bus.PublishSync(context.Background(), events.NewChangeEvent(events.EventTypeWorkPermitChanged, "work_permit", 3, events.ActionUpdated))).To(Succeed())

		var msg notification.Message
		Expect(a.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		Expect(a.ReadJSON(&msg)).To(Succeed())
		Expect(msg.Channel).To(Equal("work_permits"))
	})

	It("unregisters clients that disconnect", func() {
		a := dial(1)
		Eventually(hub.ClientCount).Should(Equal(1))
		Expect(a.Close()).To(Succeed())
		Eventually(hub.ClientCount, 2*time.Second).Should(BeZero())
	})
})
