package settings

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/apiclient"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/domain"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/events"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/storage"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/testutil"
	"github.com/fetullahyldz/qr.menux.com-sub001/internal/validation"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type countingObserver struct {
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func (o *countingObserver) RecordCache(resource string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.hits == nil {
		o.hits, o.misses = map[string]int{}, map[string]int{}
	}
	if hit {
		o.hits[resource]++
		return
	}
	o.misses[resource]++
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *testutil.Backend, *fakeClock) {
	t.Helper()
	backend := testutil.NewBackend(t)
	clock := newFakeClock()
	api := apiclient.New(backend.Config(), zap.NewNop())
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewClient(api, opts...), backend, clock
}

func seedContent(b *testutil.Backend) {
	b.Reply(http.MethodGet, "/settings", http.StatusOK, testutil.Envelope(map[string]any{
		"restaurant_name": "Kebapçı",
		"currency":        "EUR",
		"table_count":     12,
	}))
	b.Reply(http.MethodGet, "/banners", http.StatusOK, testutil.Envelope([]map[string]any{
		{"id": 1, "title": "late", "image_url": "/a.jpg", "display_order": 3, "is_active": 1},
		{"id": 2, "title": "hidden", "image_url": "/b.jpg", "display_order": 1, "is_active": 0},
		{"id": 3, "title": "first", "image_url": "/c.jpg", "display_order": 1, "is_active": true},
		{"id": 4, "title": "mid", "image_url": "/d.jpg", "display_order": 2, "is_active": "1"},
	}))
	b.Reply(http.MethodGet, "/social-media", http.StatusOK, testutil.Envelope([]map[string]any{
		{"id": 1, "platform": "x", "url": "https://x.com/r", "display_order": 2, "is_active": true},
		{"id": 2, "platform": "instagram", "url": "https://instagram.com/r", "display_order": 1, "is_active": true},
		{"id": 3, "platform": "tiktok", "url": "https://tiktok.com/r", "display_order": 0, "is_active": false},
	}))
}

func TestReadsWithinTTLHitTheBackendOnce(t *testing.T) {
	client, backend, _ := newTestClient(t)
	seedContent(backend)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		client.GetSettings(ctx, false)
		client.GetBanners(ctx, ListOptions{})
		client.GetSocialMedia(ctx, ListOptions{ActiveOnly: true})
	}

	assert.Equal(t, 1, backend.Calls(http.MethodGet, "/settings"))
	assert.Equal(t, 1, backend.Calls(http.MethodGet, "/banners"))
	assert.Equal(t, 1, backend.Calls(http.MethodGet, "/social-media"))
}

func TestForceRefreshAlwaysFetches(t *testing.T) {
	client, backend, _ := newTestClient(t)
	seedContent(backend)
	ctx := context.Background()

	client.GetSettings(ctx, true)
	client.GetSettings(ctx, true)
	client.GetBanners(ctx, ListOptions{ForceRefresh: true})
	client.GetBanners(ctx, ListOptions{ForceRefresh: true})
	client.GetSocialMedia(ctx, ListOptions{ForceRefresh: true})
	client.GetSocialMedia(ctx, ListOptions{ForceRefresh: true})

	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/settings"))
	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/banners"))
	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/social-media"))
}

func TestExpiredEntryIsRefetched(t *testing.T) {
	client, backend, clock := newTestClient(t, WithTTL(time.Minute))
	seedContent(backend)
	ctx := context.Background()

	client.GetSettings(ctx, false)
	clock.Advance(59 * time.Second)
	client.GetSettings(ctx, false)
	assert.Equal(t, 1, backend.Calls(http.MethodGet, "/settings"))

	clock.Advance(time.Second)
	client.GetSettings(ctx, false)
	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/settings"))
}

func TestSettingsDecoding(t *testing.T) {
	client, backend, _ := newTestClient(t)
	seedContent(backend)

	s := client.GetSettings(context.Background(), false)
	assert.Equal(t, "Kebapçı", s.RestaurantName())
	assert.Equal(t, "EUR", s.Currency())
	assert.Equal(t, "12", s["table_count"])

	s["restaurant_name"] = "changed"
	assert.Equal(t, "Kebapçı", client.GetSettings(context.Background(), false).RestaurantName())
}

func TestSettingsAsRows(t *testing.T) {
	client, backend, _ := newTestClient(t)
	backend.Reply(http.MethodGet, "/settings", http.StatusOK, testutil.Envelope([]map[string]any{
		{"key": "restaurant_name", "value": "Lokanta"},
		{"key": "wifi_password", "value": nil},
		{"key": "opening_hours", "value": map[string]string{"mon": "09-22"}},
	}))

	s := client.GetSettings(context.Background(), false)
	assert.Equal(t, "Lokanta", s.RestaurantName())
	assert.Equal(t, "", s.WifiPassword())
	assert.Equal(t, `{"mon":"09-22"}`, s.OpeningHours())
	assert.Equal(t, "TRY", s.Currency())
}

func TestListsAreSortedAndFiltered(t *testing.T) {
	client, backend, _ := newTestClient(t)
	seedContent(backend)
	ctx := context.Background()

	all := client.GetBanners(ctx, ListOptions{})
	require.Len(t, all, 4)
	assert.Equal(t, []int64{2, 3, 4, 1}, bannerIDs(all))

	active := client.GetBanners(ctx, ListOptions{ActiveOnly: true})
	assert.Equal(t, []int64{3, 4, 1}, bannerIDs(active))
	for i := 1; i < len(active); i++ {
		assert.LessOrEqual(t, active[i-1].DisplayOrder, active[i].DisplayOrder)
		assert.True(t, bool(active[i].IsActive))
	}

	links := client.GetSocialMedia(ctx, ListOptions{ActiveOnly: true})
	require.Len(t, links, 2)
	assert.Equal(t, "instagram", links[0].Platform)
	assert.Equal(t, "x", links[1].Platform)

	assert.Len(t, client.GetSocialMedia(ctx, ListOptions{}), 3)
	assert.Equal(t, 1, backend.Calls(http.MethodGet, "/social-media"))
}

func bannerIDs(list []domain.Banner) []int64 {
	ids := make([]int64, 0, len(list))
	for _, b := range list {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestFailedReadFallsBackToStaleThenEmpty(t *testing.T) {
	client, backend, clock := newTestClient(t)
	ctx := context.Background()

	backend.Reply(http.MethodGet, "/settings", http.StatusInternalServerError, map[string]any{"success": false})
	backend.Reply(http.MethodGet, "/banners", http.StatusOK, map[string]any{"success": false, "message": "db down"})
	s := client.GetSettings(ctx, false)
	require.NotNil(t, s)
	assert.Empty(t, s)
	banners := client.GetBanners(ctx, ListOptions{})
	require.NotNil(t, banners)
	assert.Empty(t, banners)

	seedContent(backend)
	assert.Equal(t, "EUR", client.GetSettings(ctx, false).Currency())
	assert.Len(t, client.GetBanners(ctx, ListOptions{}), 4)

	backend.Reply(http.MethodGet, "/settings", http.StatusBadGateway, nil)
	backend.Reply(http.MethodGet, "/banners", http.StatusBadGateway, nil)
	clock.Advance(DefaultTTL)
	assert.Equal(t, "EUR", client.GetSettings(ctx, false).Currency())
	assert.Len(t, client.GetBanners(ctx, ListOptions{ActiveOnly: true}), 3)
	assert.Equal(t, 3, backend.Calls(http.MethodGet, "/settings"))
}

func TestWritesInvalidate(t *testing.T) {
	client, backend, _ := newTestClient(t)
	seedContent(backend)
	backend.Reply(http.MethodPut, "/settings/currency", http.StatusOK, testutil.Envelope(nil))
	backend.Reply(http.MethodPost, "/banners", http.StatusCreated, testutil.Envelope(map[string]any{"id": 9, "image_url": "/n.jpg"}))
	backend.Reply(http.MethodPut, "/banners/9", http.StatusOK, testutil.Envelope(nil))
	backend.Reply(http.MethodDelete, "/banners/9", http.StatusOK, testutil.Envelope(nil))
	backend.Reply(http.MethodPost, "/social-media", http.StatusCreated, testutil.Envelope(map[string]any{"id": 5}))
	backend.Reply(http.MethodPut, "/social-media/5", http.StatusOK, testutil.Envelope(nil))
	backend.Reply(http.MethodDelete, "/social-media/5", http.StatusOK, testutil.Envelope(nil))
	ctx := context.Background()

	client.GetSettings(ctx, false)
	require.NoError(t, client.UpdateSetting(ctx, "currency", domain.SettingUpdate{Value: "USD"}))
	client.GetSettings(ctx, false)
	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/settings"))

	banner := domain.BannerInput{ImageURL: "/n.jpg", IsActive: true}
	client.GetBanners(ctx, ListOptions{})
	created, err := client.CreateBanner(ctx, banner)
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	client.GetBanners(ctx, ListOptions{})
	updated, err := client.UpdateBanner(ctx, 9, banner)
	require.NoError(t, err)
	assert.Equal(t, int64(9), updated.ID)
	assert.True(t, bool(updated.IsActive))
	client.GetBanners(ctx, ListOptions{})
	require.NoError(t, client.DeleteBanner(ctx, 9))
	client.GetBanners(ctx, ListOptions{})
	assert.Equal(t, 4, backend.Calls(http.MethodGet, "/banners"))

	link := domain.SocialMediaInput{Platform: "x", URL: "https://x.com/r"}
	client.GetSocialMedia(ctx, ListOptions{})
	_, err = client.CreateSocialMedia(ctx, link)
	require.NoError(t, err)
	client.GetSocialMedia(ctx, ListOptions{})
	_, err = client.UpdateSocialMedia(ctx, 5, link)
	require.NoError(t, err)
	client.GetSocialMedia(ctx, ListOptions{})
	require.NoError(t, client.DeleteSocialMedia(ctx, 5))
	client.GetSocialMedia(ctx, ListOptions{})
	assert.Equal(t, 4, backend.Calls(http.MethodGet, "/social-media"))
}

func TestFailedWriteKeepsCache(t *testing.T) {
	client, backend, _ := newTestClient(t)
	seedContent(backend)
	backend.Reply(http.MethodDelete, "/banners/1", http.StatusForbidden, map[string]any{"success": false, "message": "no"})
	ctx := context.Background()

	client.GetBanners(ctx, ListOptions{})
	err := client.DeleteBanner(ctx, 1)
	require.Error(t, err)
	assert.True(t, apiclient.IsRejected(err))

	client.GetBanners(ctx, ListOptions{})
	assert.Equal(t, 1, backend.Calls(http.MethodGet, "/banners"))
}

func TestInvalidWriteIsNotSent(t *testing.T) {
	client, backend, _ := newTestClient(t)

	_, err := client.CreateSocialMedia(context.Background(), domain.SocialMediaInput{Platform: "x", URL: "not a url"})
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Details(), "url")
	assert.Equal(t, 0, backend.Calls(http.MethodPost, "/social-media"))

	err = client.UpdateSetting(context.Background(), "", domain.SettingUpdate{Value: "x"})
	assert.True(t, errors.As(err, &verr))
}

func TestInvalidatePublishesEvent(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var got []events.ContentInvalidatedPayload
	dispatcher.Subscribe(events.EventContentInvalidated, func(_ context.Context, e events.Event) error {
		got = append(got, e.Payload.(events.ContentInvalidatedPayload))
		return nil
	})
	client, backend, _ := newTestClient(t, WithDispatcher(dispatcher))
	seedContent(backend)
	ctx := context.Background()

	client.GetSocialMedia(ctx, ListOptions{})
	client.Invalidate(ctx, ResourceSocialMedia)
	client.GetSocialMedia(ctx, ListOptions{})

	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/social-media"))
	require.Len(t, got, 1)
	assert.Equal(t, "social_media", got[0].Resource)
	assert.Equal(t, "manual", got[0].Reason)
}

func TestObserverCountsHitsAndMisses(t *testing.T) {
	observer := &countingObserver{}
	client, backend, _ := newTestClient(t, WithObserver(observer))
	seedContent(backend)
	ctx := context.Background()

	client.GetSettings(ctx, false)
	client.GetSettings(ctx, false)
	client.GetSettings(ctx, false)

	assert.Equal(t, 1, observer.misses["settings"])
	assert.Equal(t, 2, observer.hits["settings"])
}

func TestGetSetting(t *testing.T) {
	client, backend, _ := newTestClient(t)
	seedContent(backend)
	backend.Reply(http.MethodGet, "/settings/logo", http.StatusOK, testutil.Envelope(map[string]any{"key": "logo", "value": "/logo.png"}))
	backend.Reply(http.MethodGet, "/settings/phone_number", http.StatusOK, testutil.Envelope("+90 555"))
	ctx := context.Background()

	v, ok := client.GetSetting(ctx, "logo")
	assert.True(t, ok)
	assert.Equal(t, "/logo.png", v)

	v, ok = client.GetSetting(ctx, "phone_number")
	assert.True(t, ok)
	assert.Equal(t, "+90 555", v)

	v, ok = client.GetSetting(ctx, "currency")
	assert.True(t, ok)
	assert.Equal(t, "EUR", v)

	_, ok = client.GetSetting(ctx, "missing")
	assert.False(t, ok)
}

func TestParseResource(t *testing.T) {
	r, ok := ParseResource("social-media")
	assert.True(t, ok)
	assert.Equal(t, ResourceSocialMedia, r)

	_, ok = ParseResource("orders")
	assert.False(t, ok)
}

func TestUploadFileSuccessNormalizesURL(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"file_url", map[string]any{"success": true, "file_url": "/uploads/a.png"}, "/uploads/a.png"},
		{"value", map[string]any{"success": true, "value": "/uploads/b.png"}, "/uploads/b.png"},
		{"nested data", map[string]any{"success": true, "data": map[string]any{"file_url": "/uploads/c.png"}}, "/uploads/c.png"},
		{"nested image_url", map[string]any{"success": true, "data": map[string]any{"image_url": "/uploads/d.png"}}, "/uploads/d.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, backend, _ := newTestClient(t)
			backend.Handle(http.MethodPost, "/settings/upload/logo", func(w http.ResponseWriter, r *http.Request) {
				f, hdr, err := r.FormFile("file")
				if !assert.NoError(t, err) {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				defer f.Close()
				content, _ := io.ReadAll(f)
				assert.Equal(t, "logo.png", hdr.Filename)
				assert.Equal(t, []byte("png-bytes"), content)
				testutil.WriteJSON(w, http.StatusOK, tt.body)
			})

			res, err := client.UploadFile(context.Background(), "logo", domain.File{Name: "logo.png", Content: []byte("png-bytes")})
			require.NoError(t, err)
			assert.False(t, res.Fallback)
			assert.Equal(t, tt.want, res.ImageURL)
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, "logo", res.Key)
		})
	}
}

func TestUploadFallsBackToDataURL(t *testing.T) {
	mirror := storage.NewMemoryStore()
	client, backend, clock := newTestClient(t, WithMirror(mirror))
	backend.Reply(http.MethodPost, "/settings/upload/logo", http.StatusInternalServerError, map[string]any{"success": false})
	backend.Reply(http.MethodPost, "/banners/upload", http.StatusOK, map[string]any{"success": true})
	ctx := context.Background()
	file := domain.File{Name: "logo.png", ContentType: "image/png", Content: []byte("hi")}

	res, err := client.UploadFile(ctx, "logo", file)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "data:image/png;base64,aGk=", res.ImageURL)
	assert.Equal(t, res.ImageURL, res.Value)

	mirrored, found, err := mirror.Get(ctx, storage.ImageKeyPrefix+"1714564800000")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, res.ImageURL, mirrored)

	clock.Advance(time.Millisecond)
	res, err = client.UploadBannerImage(ctx, file)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "data:image/png;base64,aGk=", res.ImageURL)
}

func TestUploadFallbackWhenBackendUnreachable(t *testing.T) {
	api := apiclient.New(testutil.NewBackend(t).Config(), zap.NewNop())
	client := NewClient(api)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := client.UploadBannerImage(ctx, domain.File{Content: []byte("GIF89a")})
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "data:image/gif;base64,R0lGODlh", res.ImageURL)
}

func TestUploadRejectsEmptyInput(t *testing.T) {
	client, backend, _ := newTestClient(t)

	_, err := client.UploadFile(context.Background(), "logo", domain.File{})
	assert.Error(t, err)
	_, err = client.UploadBannerImage(context.Background(), domain.File{})
	assert.Error(t, err)
	assert.Equal(t, 0, backend.Calls(http.MethodPost, "/banners/upload"))
}

func TestUploadInvalidatesSettings(t *testing.T) {
	client, backend, _ := newTestClient(t)
	seedContent(backend)
	backend.Reply(http.MethodPost, "/settings/upload/logo", http.StatusOK, map[string]any{"success": true, "file_url": "/u/logo.png"})
	ctx := context.Background()

	client.GetSettings(ctx, false)
	_, err := client.UploadFile(ctx, "logo", domain.File{Content: []byte("x")})
	require.NoError(t, err)
	client.GetSettings(ctx, false)
	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/settings"))
}

func TestAuthenticatedReadsAreCachedApart(t *testing.T) {
	client, backend, _ := newTestClient(t)
	backend.Handle(http.MethodGet, "/settings", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"restaurant_name": "Cafe"}
		if r.Header.Get("Authorization") != "" {
			body["smtp_password"] = "hunter2"
		}
		testutil.WriteJSON(w, http.StatusOK, testutil.Envelope(body))
	})
	backend.Reply(http.MethodPut, "/settings/restaurant_name", http.StatusOK, testutil.Envelope(nil))
	ctx := context.Background()
	staffCtx := apiclient.WithToken(ctx, "abc")

	staff := client.GetSettings(staffCtx, true)
	assert.Equal(t, "hunter2", staff["smtp_password"])

	public := client.GetSettings(ctx, false)
	assert.NotContains(t, public, "smtp_password")
	assert.Equal(t, "Cafe", public.RestaurantName())
	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/settings"))

	client.GetSettings(staffCtx, false)
	client.GetSettings(ctx, false)
	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/settings"))

	require.NoError(t, client.UpdateSetting(staffCtx, "restaurant_name", domain.SettingUpdate{Value: "Cafe 2"}))
	client.GetSettings(staffCtx, false)
	client.GetSettings(ctx, false)
	assert.Equal(t, 4, backend.Calls(http.MethodGet, "/settings"))
}

func TestInvalidateDuringFetchIsNotRepopulated(t *testing.T) {
	client, backend, _ := newTestClient(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	backend.Handle(http.MethodGet, "/banners", func(w http.ResponseWriter, _ *http.Request) {
		first := false
		once.Do(func() { first = true })
		if first {
			close(started)
			<-release
		}
		testutil.WriteJSON(w, http.StatusOK, testutil.Envelope([]map[string]any{
			{"id": 1, "image_url": "/a.jpg", "is_active": true},
		}))
	})
	ctx := context.Background()

	done := make(chan []domain.Banner)
	go func() {
		done <- client.GetBanners(ctx, ListOptions{})
	}()

	<-started
	client.Invalidate(ctx, ResourceBanners)
	close(release)
	assert.Len(t, <-done, 1)

	client.GetBanners(ctx, ListOptions{})
	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/banners"))

	client.GetBanners(ctx, ListOptions{})
	assert.Equal(t, 2, backend.Calls(http.MethodGet, "/banners"))
}

func TestUploadFallbackExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	mirror := storage.WithPrefix(storage.NewRedisStore(rdb, "qrmenu:"), "shared:")

	client, backend, _ := newTestClient(t, WithMirror(mirror), WithFallbackTTL(time.Hour))
	backend.Reply(http.MethodPost, "/banners/upload", http.StatusBadGateway, map[string]any{"success": false})

	res, err := client.UploadBannerImage(context.Background(), domain.File{ContentType: "image/png", Content: []byte("hi")})
	require.NoError(t, err)
	require.True(t, res.Fallback)

	key := "qrmenu:shared:" + storage.ImageKeyPrefix + "1714564800000"
	assert.Equal(t, time.Hour, mr.TTL(key))
	mr.FastForward(time.Hour)
	assert.False(t, mr.Exists(key))
}
