package video_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/apiclient/apitest"
	"github.com/fmastery/admin-console/internal/listing"
	"github.com/fmastery/admin-console/internal/transport"
	"github.com/fmastery/admin-console/internal/video"
	"github.com/fmastery/admin-console/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestVideo(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Video Suite")
}

type recordingUploader struct {
	key  string
	size int64
}

func (u *recordingUploader) Put(_ context.Context, key string, r io.Reader, size int64, _ string) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	u.key, u.size = key, size
	return "https://cdn.example.com/" + key, nil
}

func validForm() video.Form {
	f := video.NewForm()
	f.Title = "Footwork basics"
	f.URL = "https://cdn.example.com/footwork.mp4"
	f.Tags = "footwork,beginner"
	f.VideoTime = 90
	return f
}

var _ = Describe("Videos", func() {
	var (
		ctx      context.Context
		backend  *apitest.Server
		mu       sync.Mutex
		payload  interface{}
		screen   *video.Screen
		uploader *recordingUploader
	)

	setPayload := func(p interface{}) {
		mu.Lock()
		defer mu.Unlock()
		payload = p
	}

	BeforeEach(func() {
		ctx = context.Background()
		setPayload([]map[string]interface{}{
			{"id": 7, "Title": "Serve drill", "PracticeType": "Drill", "Level": 2, "Tags": "serve,power", "VideoTime": 120},
			{"id": 8, "Title": "Grip", "PracticeType": "Essential", "EssentialCategory": "Basics", "Level": 1, "Tags": "grip", "VideoTime": 60},
		})
		backend = apitest.NewServer()
		backend.JSON(http.MethodGet, video.ListPath, func(*http.Request) interface{} {
			mu.Lock()
			defer mu.Unlock()
			return payload
		})
		backend.JSON(http.MethodPost, video.UploadPath, func(*http.Request) interface{} { return nil })
		backend.Authed(http.MethodPost, video.UpdatePath, func(w http.ResponseWriter, _ *http.Request) {
			apitest.WriteFailure(w, http.StatusBadRequest, "Video not found")
		})
		backend.JSON(http.MethodDelete, video.DeletePath+"{id}", func(r *http.Request) interface{} {
			return map[string]string{"message": "Video " + chi.URLParam(r, "id") + " removed"}
		})

		client, _ := backend.SignedIn("ops@example.com")
		uploader = &recordingUploader{}
		screen = video.NewScreen(video.NewService(client), uploader, nil, logger.Discard())
	})

	AfterEach(func() {
		backend.Close()
	})

	Describe("catalog payload", func() {
		It("should accept a bare array", func() {
			Expect(screen.Videos.Load(ctx)).To(Succeed())
			Expect(screen.Videos.Items()).To(HaveLen(2))
		})

		It("should accept a wrapped list", func() {
			setPayload(map[string]interface{}{"videos": []map[string]interface{}{{"id": 1, "Title": "Only"}}})
			Expect(screen.Videos.Load(ctx)).To(Succeed())
			Expect(screen.Videos.Items()[0].Title).To(Equal("Only"))
		})

		It("should treat anything else as empty", func() {
			setPayload(map[string]interface{}{"videos": "none"})
			Expect(screen.Videos.Load(ctx)).To(Succeed())
			Expect(screen.Videos.Items()).To(BeEmpty())
			Expect(screen.Videos.View().Empty).To(Equal("No videos found"))
		})
	})

	It("should search tags and categories", func() {
		Expect(screen.Videos.Load(ctx)).To(Succeed())
		screen.Videos.SetSearch("basics")
		Expect(screen.Videos.View().Rows).To(HaveLen(1))
		screen.Videos.SetSearch("POWER")
		Expect(screen.Videos.View().Rows[0].Key).To(Equal("7"))
	})

	It("should sort levels numerically", func() {
		Expect(screen.Videos.Load(ctx)).To(Succeed())
		Expect(screen.Videos.SetSort("Level")).To(Succeed())
		Expect(screen.Videos.View().Rows[0].Item.Title).To(Equal("Grip"))
	})

	Describe("Save", func() {
		It("should send null categories for drills", func() {
			f := validForm()
			f.EssentialCategory = "left over"
			toast, err := screen.Save(ctx, f)
			Expect(err).NotTo(HaveOccurred())
			Expect(toast.Message).To(Equal("Video added successfully"))
			Expect(backend.Bodies(http.MethodPost, video.UploadPath)[0]).To(MatchJSON(`{
				"title":"Footwork basics","description":"","url":"https://cdn.example.com/footwork.mp4",
				"practiceType":"Drill","level":1,"essentialCategory":null,"essentialSubCategory":null,
				"tags":"footwork,beginner","videoTime":90,"xpToBeGained":0,"xpToBeGainedOnWatch":0}`))
			Expect(backend.Calls(http.MethodGet, video.ListPath)).To(Equal(1))
		})

		It("should require categories for essentials", func() {
			f := validForm()
			f.PracticeType = video.PracticeEssential
			f.EssentialCategory = "Basics"
			_, err := screen.Save(ctx, f)
			Expect(err).To(MatchError("Essential subcategory is required"))
			Expect(backend.Calls(http.MethodPost, video.UploadPath)).To(Equal(0))
		})

		It("should keep categories for essentials", func() {
			f := validForm()
			f.PracticeType = video.PracticeEssential
			f.EssentialCategory = "Basics"
			f.EssentialSubCategory = "Grip"
			_, err := screen.Save(ctx, f)
			Expect(err).NotTo(HaveOccurred())
			var body map[string]interface{}
			Expect(json.Unmarshal(backend.Bodies(http.MethodPost, video.UploadPath)[0], &body)).To(Succeed())
			Expect(body["essentialCategory"]).To(Equal("Basics"))
			Expect(body["essentialSubCategory"]).To(Equal("Grip"))
		})

		DescribeTable("local validation",
			func(mutate func(*video.Form), message string) {
				f := validForm()
				mutate(&f)
				Expect(f.Validate()).To(MatchError(message))
			},
			Entry("title", func(f *video.Form) { f.Title = " " }, "Title is required"),
			Entry("url", func(f *video.Form) { f.URL = "ftp://x" }, "Please enter a valid URL"),
			Entry("level", func(f *video.Form) { f.Level = 0 }, "Level must be at least 1"),
			Entry("tags", func(f *video.Form) { f.Tags = "" }, "Tags is required"),
			Entry("video time", func(f *video.Form) { f.VideoTime = 0 }, "Video time must be at least 1"),
			Entry("xp", func(f *video.Form) { f.XpToBeGained = -5 }, "XP to be gained must be at least 0"),
			Entry("practice type", func(f *video.Form) { f.PracticeType = "Cardio" }, "Practice type must be one of: Drill, Essential"),
		)

		It("should surface an update failure in the dialog", func() {
			Expect(screen.Videos.Load(ctx)).To(Succeed())
			screen.OpenEdit(screen.Videos.Items()[0])
			Expect(screen.Dialog.Form().IsEdit()).To(BeTrue())
			Expect(screen.Dialog.Form().URL).To(BeEmpty())

			screen.Dialog.Update(func(f *video.Form) { f.URL = "https://cdn.example.com/serve.mp4" })
			Expect(screen.Dialog.Submit(ctx)).NotTo(Succeed())
			Expect(screen.Dialog.Error()).To(Equal("Video not found"))
			Expect(backend.Calls(http.MethodGet, video.ListPath)).To(Equal(1))
		})
	})

	It("should toast the server's delete message and reload", func() {
		toast, err := screen.Delete(ctx, "7")
		Expect(err).NotTo(HaveOccurred())
		Expect(toast.Message).To(Equal("Video 7 removed"))
		Expect(backend.Calls(http.MethodDelete, "/videos/delete/7")).To(Equal(1))
		Expect(backend.Calls(http.MethodGet, video.ListPath)).To(Equal(1))
	})

	It("should upload a file under a dated videos key", func() {
		url, err := screen.UploadFile(ctx, "serve.mp4", strings.NewReader("data"), 4, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(uploader.key).To(HavePrefix("videos/"))
		Expect(uploader.size).To(Equal(int64(4)))
		Expect(url).To(HaveSuffix("-serve.mp4"))
	})

	Describe("Handler", func() {
		It("should take the id from the path on update", func() {
			h := video.NewHandler(transport.NewBaseHandler(logger.Discard()), screen)
			r := chi.NewRouter()
			r.Put("/videos/{id}", h.Update)
			body, _ := json.Marshal(validForm())
			req := httptest.NewRequest(http.MethodPut, "/videos/8", strings.NewReader(string(body)))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			var resp internal.Response
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Error.Message).To(Equal("Video not found"))
			var sent map[string]interface{}
			Expect(json.Unmarshal(backend.Bodies(http.MethodPost, video.UpdatePath)[0], &sent)).To(Succeed())
			Expect(sent["id"]).To(BeEquivalentTo(8))
		})

		It("should create and answer with a toast", func() {
			h := video.NewHandler(transport.NewBaseHandler(logger.Discard()), screen)
			body, _ := json.Marshal(validForm())
			w := httptest.NewRecorder()
			h.Create(w, httptest.NewRequest(http.MethodPost, "/videos", strings.NewReader(string(body))))
			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp listing.ToastResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Toast.Message).To(Equal("Video added successfully"))
		})
	})
})
