package session_test

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fmastery/admin-console/internal/session"
	"github.com/fmastery/admin-console/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

type failingBackend struct{ session.MemoryBackend }

func (f *failingBackend) Read(context.Context, ...string) (map[string]string, error) {
	return nil, errors.New("disk on fire")
}

var _ = Describe("Store", func() {
	var (
		ctx     context.Context
		backend *session.MemoryBackend
		store   *session.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		backend = session.NewMemoryBackend()
		store = session.NewStore(backend, logger.Discard())
	})

	Describe("Set and Get", func() {
		It("should round-trip tokens and profile", func() {
			profile := json.RawMessage(`{"id":7,"Email":"ops@example.com"}`)
			err := store.Set(ctx, session.Tokens{AccessToken: "A1", RefreshToken: "R1"}, profile)
			Expect(err).NotTo(HaveOccurred())

			got := store.Get(ctx)
			Expect(got.AccessToken).To(Equal("A1"))
			Expect(got.RefreshToken).To(Equal("R1"))
			Expect(got.Profile).To(MatchJSON(profile))
			Expect(store.IsPresent(ctx)).To(BeTrue())
		})

		It("should write all three keys", func() {
			Expect(store.Set(ctx, session.Tokens{AccessToken: "A1", RefreshToken: "R1"}, nil)).To(Succeed())
			Expect(backend.Len()).To(Equal(3))
			Expect(store.Get(ctx).Profile).To(BeNil())
		})

		It("should keep the profile when only tokens change", func() {
			Expect(store.Set(ctx, session.Tokens{AccessToken: "A1", RefreshToken: "R1"}, json.RawMessage(`{"id":1}`))).To(Succeed())
			Expect(store.SetTokens(ctx, session.Tokens{AccessToken: "A2", RefreshToken: "R2"})).To(Succeed())

			got := store.Get(ctx)
			Expect(got.Tokens()).To(Equal(session.Tokens{AccessToken: "A2", RefreshToken: "R2"}))
			Expect(got.Profile).To(MatchJSON(`{"id":1}`))
		})

		It("should treat an empty access token as absent", func() {
			Expect(store.Set(ctx, session.Tokens{RefreshToken: "R1"}, nil)).To(Succeed())
			Expect(store.IsPresent(ctx)).To(BeFalse())
		})

		It("should ignore a corrupt profile value", func() {
			Expect(backend.Write(ctx, map[string]string{session.KeyAccessToken: "A", session.KeyProfile: "{not json"})).To(Succeed())
			got := store.Get(ctx)
			Expect(got.AccessToken).To(Equal("A"))
			Expect(got.Profile).To(BeNil())
		})
	})

	Describe("Clear", func() {
		It("should remove every key", func() {
			Expect(store.Set(ctx, session.Tokens{AccessToken: "A1", RefreshToken: "R1"}, json.RawMessage(`{}`))).To(Succeed())
			Expect(store.Clear(ctx)).To(Succeed())

			Expect(backend.Len()).To(BeZero())
			Expect(store.Get(ctx)).To(Equal(session.Session{}))
			Expect(store.IsPresent(ctx)).To(BeFalse())
		})

		It("should be idempotent", func() {
			Expect(store.Clear(ctx)).To(Succeed())
			Expect(store.Clear(ctx)).To(Succeed())
		})
	})

	Context("when the backend cannot be read", func() {
		It("should report an empty session instead of failing", func() {
			broken := session.NewStore(&failingBackend{}, logger.Discard())
			Expect(broken.Get(ctx)).To(Equal(session.Session{}))
			Expect(broken.IsPresent(ctx)).To(BeFalse())
		})
	})

	Context("with a sealer", func() {
		var key []byte

		BeforeEach(func() {
			key = make([]byte, 32)
			_, err := rand.Read(key)
			Expect(err).NotTo(HaveOccurred())

			sealer, err := session.NewSealer(key)
			Expect(err).NotTo(HaveOccurred())
			store = session.NewStore(backend, logger.Discard(), session.WithSealer(sealer))
		})

		It("should not store plaintext tokens", func() {
			Expect(store.Set(ctx, session.Tokens{AccessToken: "A1", RefreshToken: "R1"}, nil)).To(Succeed())

			raw, ok := backend.Raw(session.KeyAccessToken)
			Expect(ok).To(BeTrue())
			Expect(raw).NotTo(ContainSubstring("A1"))
			Expect(raw).To(HavePrefix("sealed:v1:"))
			Expect(store.Get(ctx).AccessToken).To(Equal("A1"))
		})

		It("should treat values sealed with another key as missing", func() {
			Expect(store.Set(ctx, session.Tokens{AccessToken: "A1", RefreshToken: "R1"}, nil)).To(Succeed())

			other := make([]byte, 32)
			other[0] = key[0] ^ 0xff
			otherSealer, err := session.NewSealer(other)
			Expect(err).NotTo(HaveOccurred())
			stranger := session.NewStore(backend, logger.Discard(), session.WithSealer(otherSealer))

			Expect(stranger.IsPresent(ctx)).To(BeFalse())
		})

		It("should reject keys of the wrong size", func() {
			_, err := session.NewSealer([]byte("short"))
			Expect(err).To(HaveOccurred())
		})
	})
})
