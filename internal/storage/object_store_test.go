package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/storage"
	"github.com/minio/minio-go/v7"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Suite")
}

var _ = Describe("ObjectStore", func() {
	It("should take the scheme from a URL endpoint", func() {
		store, err := storage.NewObjectStore(internal.StorageConfig{
			Endpoint: "https://s3.example.com",
			Bucket:   "media",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(store.URL("videos/a.mp4")).To(Equal("https://s3.example.com/media/videos/a.mp4"))
	})

	It("should prefer the public base URL", func() {
		store, err := storage.NewObjectStore(internal.StorageConfig{
			Endpoint:      "localhost:9000",
			Bucket:        "media",
			PublicBaseURL: "https://cdn.example.com/",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(store.URL("videos/a.mp4")).To(Equal("https://cdn.example.com/videos/a.mp4"))
	})

	It("should build dated keys with a safe file name", func() {
		now := time.Date(2024, 5, 6, 23, 0, 0, 0, time.UTC)
		key := storage.ObjectKey("videos", `C:\clips\my drill (1).mp4`, now)
		Expect(key).To(HavePrefix("videos/2024/05/06/"))
		Expect(key).To(HaveSuffix("-my_drill__1_.mp4"))
		Expect(storage.ObjectKey("exports", "", now)).To(HaveSuffix("-file"))
	})

	Context("against a live bucket", func() {
		var store *storage.ObjectStore

		BeforeEach(func() {
			endpoint := os.Getenv("TEST_MINIO_ENDPOINT")
			if endpoint == "" {
				Skip("TEST_MINIO_ENDPOINT not set")
			}
			var err error
			store, err = storage.NewObjectStore(internal.StorageConfig{
				Endpoint:  endpoint,
				AccessKey: os.Getenv("TEST_MINIO_ACCESS_KEY"),
				SecretKey: os.Getenv("TEST_MINIO_SECRET_KEY"),
				Bucket:    "admin-console-test",
				Region:    "us-east-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.EnsureBucket(context.Background())).To(Succeed())
		})

		It("should upload and return a readable URL", func() {
			body := []byte("hello")
			key := storage.ObjectKey("tests", "hello.txt", time.Now())
			_, err := store.Put(context.Background(), key, bytes.NewReader(body), int64(len(body)), "text/plain")
			Expect(err).NotTo(HaveOccurred())

			obj, err := store.Client().GetObject(context.Background(), "admin-console-test", key, minio.GetObjectOptions{})
			Expect(err).NotTo(HaveOccurred())
			got, err := io.ReadAll(obj)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(string(got))).To(Equal("hello"))
		})
	})
})
