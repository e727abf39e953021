package middleware

import (
	"bufio"
	"bytes"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chiMiddleware "github.com/go-chi/chi/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

var _ = Describe("Middleware", func() {
	var (
		buf    *bytes.Buffer
		logger *slog.Logger
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		logger = slog.New(slog.NewJSONHandler(buf, nil))
	})

	Describe("RequestID", func() {
		It("keeps an inbound id and exposes it to chi", func() {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = chiMiddleware.GetReqID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, "abc-123")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			Expect(seen).To(Equal("abc-123"))
			Expect(rec.Header().Get(RequestIDHeader)).To(Equal("abc-123"))
		})

		It("mints an id when none is sent", func() {
			rec := httptest.NewRecorder()
			RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			Expect(rec.Header().Get(RequestIDHeader)).To(HaveLen(36))
		})
	})

	Describe("RecoveryMiddleware", func() {
		It("turns a panic into an internal error without leaking it", func() {
			h := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("secret detail")
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(ContainSubstring("INTERNAL_ERROR"))
			Expect(rec.Body.String()).NotTo(ContainSubstring("secret detail"))
			Expect(buf.String()).To(ContainSubstring("secret detail"))
		})
	})

	Describe("LoggingMiddleware", func() {
		It("filters sensitive fields from logged bodies", func() {
			h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"access_token":"tok"}`))
			}))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.c","password":"hunter2"}`))
			h.ServeHTTP(httptest.NewRecorder(), req)

			Expect(buf.String()).NotTo(ContainSubstring("hunter2"))
			Expect(buf.String()).NotTo(ContainSubstring(`"tok"`))
			Expect(buf.String()).To(ContainSubstring("a@b.c"))
			Expect(buf.String()).To(ContainSubstring(`"level":"WARN"`))
		})

		It("lets websocket upgrades hijack the connection", func() {
			h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hj, ok := w.(http.Hijacker)
				Expect(ok).To(BeTrue())
				_, _, err := hj.Hijack()
				Expect(err).NotTo(HaveOccurred())
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/realtime", nil)
			req.Header.Set("Upgrade", "websocket")
			rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
			h.ServeHTTP(rec, req)

			Expect(rec.hijacked).To(BeTrue())
			Expect(buf.String()).To(ContainSubstring(`"status_code":101`))
		})
	})

	Describe("filterSensitiveJSON", func() {
		It("masks nested keys", func() {
			out := filterSensitiveBody([]byte(`{"user":{"refresh_token":"x","name":"n"},"items":[{"api_key":"k"}]}`))
			Expect(out).To(ContainSubstring(`"refresh_token":"[FILTERED]"`))
			Expect(out).To(ContainSubstring(`"api_key":"[FILTERED]"`))
			Expect(out).To(ContainSubstring(`"name":"n"`))
		})
	})
})
