// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizRush Contributors

//go:build integration

package login_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/quizrush/quizrush/internal/authclient"
	"github.com/quizrush/quizrush/internal/login"
	"github.com/quizrush/quizrush/internal/login/logintest"
	"github.com/quizrush/quizrush/internal/observability"
	"github.com/quizrush/quizrush/internal/session"
)

func encodeToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." +
		enc.EncodeToString([]byte(payload)) + ".signature"
}

// authServer is a stand-in for the QuizRush auth endpoint.
type authServer struct {
	*httptest.Server
	hits   atomic.Int32
	status atomic.Int32
	token  atomic.Value

	// While holding is set, requests wait for release or cancellation.
	holding atomic.Bool
	gate    chan struct{}
	once    sync.Once
}

func newAuthServer() *authServer {
	s := &authServer{gate: make(chan struct{})}
	s.status.Store(http.StatusOK)
	s.token.Store(encodeToken(`{"userId":42}`))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/api/auth/login", s.login)
	s.Server = httptest.NewServer(r)
	return s
}

func (s *authServer) release() {
	s.once.Do(func() { close(s.gate) })
}

func (s *authServer) login(w http.ResponseWriter, r *http.Request) {
	s.hits.Add(1)
	if s.holding.Load() {
		select {
		case <-s.gate:
		case <-r.Context().Done():
			return
		}
	}

	var req authclient.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	status := int(s.status.Load())
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	if req.Username != "alice" || req.Password != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": s.token.Load().(string)})
}

var _ = Describe("Login screen", func() {
	var (
		server    *authServer
		store     *session.FileStore
		notifier  *logintest.Notifier
		navigator *logintest.Navigator
		collector *login.Collector
	)

	BeforeEach(func() {
		server = newAuthServer()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))

		var err error
		store, err = session.NewFileStore(filepath.Join(GinkgoT().TempDir(), "session.yaml"))
		Expect(err).NotTo(HaveOccurred())
		persister, err := session.NewPersister(store, logger)
		Expect(err).NotTo(HaveOccurred())

		client, err := authclient.New(server.URL, authclient.Options{
			HTTPClient: &http.Client{Timeout: 5 * time.Second},
			Logger:     logger,
		})
		Expect(err).NotTo(HaveOccurred())

		notifier = &logintest.Notifier{}
		navigator = &logintest.Navigator{}
		collector, err = login.NewCollector(login.Config{
			Auth:      client,
			Sessions:  persister,
			Navigator: navigator,
			Notifier:  notifier,
			Logger:    logger,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.release()
		server.Close()
	})

	fill := func(username, password string) {
		Expect(collector.SetUsername(username)).To(BeTrue())
		Expect(collector.SetPassword(password)).To(BeTrue())
	}

	storedSession := func() (session.Session, bool) {
		sess, ok, err := session.Load(store)
		Expect(err).NotTo(HaveOccurred())
		return sess, ok
	}

	Describe("valid credentials", func() {
		It("stores the session and navigates to the landing route", func() {
			fill("alice", "secret")

			res := collector.Submit(context.Background())

			Expect(res.State).To(Equal(login.StateSucceeded))
			Expect(res.Outcome).To(Equal(observability.OutcomeSucceeded))
			Expect(server.hits.Load()).To(Equal(int32(1)))

			sess, ok := storedSession()
			Expect(ok).To(BeTrue())
			Expect(sess.Token).To(Equal(server.token.Load().(string)))
			Expect(sess.UserID).To(Equal("42"))

			Expect(notifier.Successes()).To(Equal([]string{login.MsgLoginSucceeded}))
			Expect(notifier.Errors()).To(BeEmpty())
			Expect(navigator.Routes()).To(Equal([]string{"/admin"}))
			Expect(collector.Busy()).To(BeFalse())
		})

		It("accepts a string user id", func() {
			server.token.Store(encodeToken(`{"userId":"u-9","role":"admin"}`))
			fill("alice", "secret")

			res := collector.Submit(context.Background())

			Expect(res.State).To(Equal(login.StateSucceeded))
			sess, ok := storedSession()
			Expect(ok).To(BeTrue())
			Expect(sess.UserID).To(Equal("u-9"))
		})
	})

	Describe("empty fields", func() {
		It("asks for all fields without contacting the server", func() {
			fill("", "secret")

			res := collector.Submit(context.Background())

			Expect(res.Stage).To(Equal(login.StageValidate))
			Expect(res.State).To(Equal(login.StateIdle))
			Expect(server.hits.Load()).To(BeZero())
			Expect(notifier.Errors()).To(Equal([]string{login.MsgFillAllFields}))
			Expect(navigator.Routes()).To(BeEmpty())
		})
	})

	DescribeTable("failed submissions",
		func(setup func(), username, password string) {
			setup()
			fill(username, password)

			res := collector.Submit(context.Background())

			Expect(res.State).To(Equal(login.StateFailed))
			Expect(res.Err).To(HaveOccurred())
			Expect(collector.State()).To(Equal(login.StateIdle))
			Expect(collector.Busy()).To(BeFalse())
			Expect(notifier.Errors()).To(Equal([]string{login.MsgInvalidCredentials}))
			Expect(notifier.Successes()).To(BeEmpty())
			Expect(navigator.Routes()).To(BeEmpty())

			_, ok := storedSession()
			Expect(ok).To(BeFalse())
		},
		Entry("rejected credentials", func() {}, "alice", "wrong"),
		Entry("server error", func() { server.status.Store(http.StatusInternalServerError) }, "alice", "secret"),
		Entry("token that is not a JWT", func() { server.token.Store("opaque") }, "alice", "secret"),
		Entry("token payload that is not base64", func() { server.token.Store("aaa.!!!.ccc") }, "alice", "secret"),
		Entry("token without a user id", func() { server.token.Store(encodeToken(`{"sub":"1"}`)) }, "alice", "secret"),
		Entry("empty token", func() { server.token.Store("") }, "alice", "secret"),
	)

	It("allows a retry after a failure", func() {
		fill("alice", "wrong")
		Expect(collector.Submit(context.Background()).State).To(Equal(login.StateFailed))

		Expect(collector.SetPassword("secret")).To(BeTrue())
		res := collector.Submit(context.Background())

		Expect(res.State).To(Equal(login.StateSucceeded))
		Expect(server.hits.Load()).To(Equal(int32(2)))
	})

	It("ignores submissions while one is in flight", func() {
		server.holding.Store(true)
		fill("alice", "secret")

		first := collector.SubmitAsync(context.Background())
		Eventually(server.hits.Load).Should(Equal(int32(1)))
		Expect(collector.Busy()).To(BeTrue())
		Expect(collector.SetPassword("other")).To(BeFalse())

		second := collector.Submit(context.Background())
		Expect(second.Outcome).To(Equal(observability.OutcomeIgnored))

		server.release()
		var res login.Result
		Eventually(first).Should(Receive(&res))
		Expect(res.State).To(Equal(login.StateSucceeded))
		Expect(server.hits.Load()).To(Equal(int32(1)))
	})

	It("drops the response when the screen is abandoned", func() {
		server.holding.Store(true)
		fill("alice", "secret")

		ctx, cancel := context.WithCancel(context.Background())
		results := collector.SubmitAsync(ctx)
		Eventually(server.hits.Load).Should(Equal(int32(1)))

		cancel()
		var res login.Result
		Eventually(results, 5*time.Second).Should(Receive(&res))

		Expect(res.Outcome).To(Equal(observability.OutcomeAbandoned))
		Expect(collector.Busy()).To(BeFalse())
		Expect(notifier.Successes()).To(BeEmpty())
		Expect(notifier.Errors()).To(BeEmpty())
		Expect(navigator.Routes()).To(BeEmpty())
		_, ok := storedSession()
		Expect(ok).To(BeFalse())
	})
})
