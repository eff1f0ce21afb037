package gormstore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fmastery/admin-console/internal/session"
	"github.com/fmastery/admin-console/internal/session/gormstore"
	"github.com/fmastery/admin-console/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestGormStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Gorm Store Suite")
}

var _ = Describe("Gorm session backend", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		backend *gormstore.Backend
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = gormstore.Open("sqlite", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(gormstore.Migrate(ctx, db, "sqlite", false)).To(Succeed())

		backend = gormstore.New(db)
	})

	AfterEach(func() {
		Expect(backend.Close()).To(Succeed())
	})

	It("should create the session table", func() {
		Expect(db.Migrator().HasTable(&gormstore.SessionEntry{})).To(BeTrue())
	})

	It("should upsert values under the same key", func() {
		Expect(backend.Write(ctx, map[string]string{"access_token": "A1"})).To(Succeed())
		Expect(backend.Write(ctx, map[string]string{"access_token": "A2", "refresh_token": "R2"})).To(Succeed())

		values, err := backend.Read(ctx, "access_token", "refresh_token", "user")
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal(map[string]string{"access_token": "A2", "refresh_token": "R2"}))

		var count int64
		Expect(db.Model(&gormstore.SessionEntry{}).Count(&count).Error).To(Succeed())
		Expect(count).To(Equal(int64(2)))
	})

	It("should delete only the named keys", func() {
		Expect(backend.Write(ctx, map[string]string{"a": "1", "b": "2"})).To(Succeed())
		Expect(backend.Delete(ctx, "a", "missing")).To(Succeed())

		values, err := backend.Read(ctx, "a", "b")
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal(map[string]string{"b": "2"}))
	})

	It("should answer pings", func() {
		Expect(backend.Ping(ctx)).To(Succeed())
	})

	It("should back a session store across instances", func() {
		first := session.NewStore(backend, logger.Discard())
		Expect(first.Set(ctx, session.Tokens{AccessToken: "A1", RefreshToken: "R1"}, json.RawMessage(`{"id":3}`))).To(Succeed())

		second := session.NewStore(gormstore.New(db), logger.Discard())
		got := second.Get(ctx)
		Expect(got.AccessToken).To(Equal("A1"))
		Expect(got.Profile).To(MatchJSON(`{"id":3}`))

		Expect(second.Clear(ctx)).To(Succeed())
		Expect(first.IsPresent(ctx)).To(BeFalse())
	})

	It("should roll the schema back", func() {
		Expect(gormstore.Migrate(ctx, db, "sqlite", true)).To(Succeed())
		Expect(db.Migrator().HasTable(&gormstore.SessionEntry{})).To(BeFalse())
	})

	It("should fail every call once closed", func() {
		Expect(backend.Close()).To(Succeed())

		_, err := backend.Read(ctx, "access_token")
		Expect(err).To(MatchError(session.ErrBackendClosed))
		Expect(backend.Write(ctx, map[string]string{"a": "1"})).To(MatchError(session.ErrBackendClosed))
		Expect(backend.Delete(ctx, "a")).To(MatchError(session.ErrBackendClosed))
		Expect(backend.Ping(ctx)).To(MatchError(session.ErrBackendClosed))
	})

	It("should refuse unknown drivers", func() {
		_, err := gormstore.Open("oracle", "x")
		Expect(err).To(HaveOccurred())
		Expect(gormstore.Migrate(ctx, db, "oracle", false)).To(HaveOccurred())
	})
})
