package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rentkeeper/internal/client/models"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
	"github.com/dmitrijs2005/rentkeeper/internal/imagex"
	"github.com/dmitrijs2005/rentkeeper/internal/netx"
)

func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	r := rand.New(rand.NewPCG(1, 2))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(r.UintN(256))
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 8; i++ {
		img.Set(i, i, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func pdf(size int) []byte {
	b := bytes.Repeat([]byte{'0'}, size)
	copy(b, "%PDF-1.4\n")
	return b
}

func newUploads(t *testing.T, f *fakeService, opts ...UploadOption) UploadService {
	t.Helper()
	opts = append([]UploadOption{WithCodec(imagex.New())}, opts...)
	return NewUploadService(f.client(t), f.uploader(), opts...)
}

func TestUpload_TenantImageScenario(t *testing.T) {
	f := newFakeService(t)
	svc := newUploads(t, f)
	ctx := context.Background()

	data := noisePNG(t, 2400, 400)
	require.Greater(t, len(data), 2<<20)
	require.Less(t, int64(len(data)), common.MaxImageSizeBytes)

	var progress []int
	rec, err := svc.Upload(ctx, UploadRequest{
		EntityType: common.EntityTenant,
		EntityID:   42,
		Category:   common.CategoryTenantImage,
		File:       models.File{Name: "profile.png", ContentType: "image/png", Data: data},
		OnProgress: func(p int) { progress = append(progress, p) },
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, common.EntityTenant, rec.EntityType)
	assert.Equal(t, int64(42), rec.EntityID)
	assert.Equal(t, "image/png", rec.ContentType)

	// the stored blob is the compressed image
	f.mu.Lock()
	require.Len(t, f.puts, 1)
	stored := f.blobs[f.puts[0]]
	f.mu.Unlock()
	img, err := png.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, 1920, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
	assert.Equal(t, int64(len(stored)), f.requests[0].FileSize, "intent describes the compressed payload")

	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Equal(t, 100, progress[len(progress)-1])

	latest, err := NewFileService(f.client(t)).Latest(ctx, common.EntityTenant, 42, common.CategoryTenantImage)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, rec.ID, latest.ID)
	assert.Equal(t, rec.PublicURL, latest.PublicURL)
}

func TestUpload_RoundTripVisibleInListAndLatest(t *testing.T) {
	f := newFakeService(t)
	svc := newUploads(t, f)
	files := NewFileService(f.client(t))
	ctx := context.Background()

	rec, err := svc.Upload(ctx, UploadRequest{
		EntityType:   common.EntityTenant,
		EntityID:     7,
		Category:     common.CategoryTenantDocument,
		DocumentType: common.DocumentAgreement,
		File:         models.File{Name: "lease.pdf", ContentType: "application/pdf", Data: pdf(6 << 20)},
	})
	require.NoError(t, err, "6 MB PDF fits the 10 MB document ceiling")

	set, err := files.List(ctx, common.EntityTenant, 7, "")
	require.NoError(t, err)
	require.Len(t, set.Files, 1)
	assert.Equal(t, rec.ID, set.Files[0].ID)
	assert.Equal(t, common.DocumentAgreement, set.Files[0].DocumentType)
	assert.Equal(t, 1, set.TotalCount)
	assert.Equal(t, int64(6<<20), set.TotalSizeBytes)

	latest, err := files.Latest(ctx, common.EntityTenant, 7, common.CategoryTenantDocument)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, latest.ID)

	none, err := files.Latest(ctx, common.EntityTenant, 7, common.CategoryTenantImage)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestUpload_TooLargeMakesNoCalls(t *testing.T) {
	f := newFakeService(t)
	svc := newUploads(t, f)

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityTenant,
		EntityID:   42,
		Category:   common.CategoryTenantImage,
		File:       models.File{Name: "huge.png", ContentType: "image/png", Data: make([]byte, 6<<20)},
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ReasonTooLarge, verr.Reason)
	assert.Zero(t, f.callCount())
}

func TestUpload_WrongSlotMakesNoCalls(t *testing.T) {
	f := newFakeService(t)
	svc := newUploads(t, f)

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityOwner,
		EntityID:   1,
		Category:   common.CategoryTenantImage,
		File:       models.File{Name: "a.png", ContentType: "image/png", Data: smallPNG(t)},
	})
	require.ErrorIs(t, err, common.ErrorIncorrectMetadata)
	assert.Zero(t, f.callCount())
}

func TestUpload_TransferFailureCancelsSameToken(t *testing.T) {
	f := newFakeService(t)
	f.putStatus = http.StatusForbidden
	svc := newUploads(t, f)

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityOwner,
		EntityID:   3,
		Category:   common.CategoryOwnerImage,
		File:       models.File{Name: "me.png", ContentType: "image/png", Data: smallPNG(t)},
	})

	var terr *TransferError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, http.StatusForbidden, terr.StatusCode)

	var aerr *AccessError
	assert.False(t, errors.As(err, &aerr), "blob store 403 is a transfer failure")

	require.Len(t, f.cancels, 1)
	assert.Equal(t, "up-1", f.cancels[0].UploadToken)
	assert.NotEmpty(t, f.cancels[0].Reason)
	assert.Zero(t, f.fileCount())
}

func TestUpload_CancelFailureIsSwallowed(t *testing.T) {
	f := newFakeService(t)
	f.putStatus = http.StatusInternalServerError
	f.cancelStatus = http.StatusInternalServerError
	svc := newUploads(t, f)

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityRoom,
		EntityID:   9,
		Category:   common.CategoryRoomImage,
		File:       models.File{Name: "room.png", ContentType: "image/png", Data: smallPNG(t)},
	})

	var terr *TransferError
	require.True(t, errors.As(err, &terr), "the transfer error is reported, not the cleanup error")
	var cerr *CleanupError
	assert.False(t, errors.As(err, &cerr))
	assert.Len(t, f.cancels, 1)
}

func TestUpload_NegotiationDeclined(t *testing.T) {
	f := newFakeService(t)
	f.requestStatus = http.StatusBadRequest
	svc := newUploads(t, f)

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityOwner,
		EntityID:   3,
		Category:   common.CategoryOwnerImage,
		File:       models.File{Name: "me.png", ContentType: "image/png", Data: smallPNG(t)},
	})

	var nerr *NegotiationError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "upload declined", nerr.Reason)
	assert.Empty(t, f.cancels, "no credential, nothing to cancel")
	assert.Empty(t, f.puts)
}

func TestUpload_NegotiationForbidden(t *testing.T) {
	f := newFakeService(t)
	f.requestStatus = http.StatusForbidden
	svc := newUploads(t, f)

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityOwner,
		EntityID:   3,
		Category:   common.CategoryOwnerImage,
		File:       models.File{Name: "me.png", ContentType: "image/png", Data: smallPNG(t)},
	})

	var aerr *AccessError
	require.True(t, errors.As(err, &aerr))
}

func TestUpload_ConfirmFailureIsReconciliationError(t *testing.T) {
	f := newFakeService(t)
	f.confirmStatus = http.StatusInternalServerError
	svc := newUploads(t, f)

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityOwner,
		EntityID:   3,
		Category:   common.CategoryOwnerImage,
		File:       models.File{Name: "me.png", ContentType: "image/png", Data: smallPNG(t)},
	})

	var rerr *ReconciliationError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "up-1", rerr.UploadToken)
	assert.Empty(t, f.cancels, "blob is left for out-of-band cleanup")
	assert.Zero(t, f.fileCount())
}

func TestUpload_ExpiredCredential(t *testing.T) {
	f := newFakeService(t)
	f.ttl = -time.Second
	svc := newUploads(t, f)

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityOwner,
		EntityID:   3,
		Category:   common.CategoryOwnerImage,
		File:       models.File{Name: "me.png", ContentType: "image/png", Data: smallPNG(t)},
	})

	var terr *TransferError
	require.True(t, errors.As(err, &terr))
	require.ErrorIs(t, err, common.ErrorExpired)
	assert.Empty(t, f.puts)
	assert.Len(t, f.cancels, 1)
}

func TestUpload_CallerCancellationStillCancelsCredential(t *testing.T) {
	f := newFakeService(t)
	ctx, cancel := context.WithCancel(context.Background())

	svc := NewUploadService(f.client(t), cancellingUploader{cancel: cancel})

	_, err := svc.Upload(ctx, UploadRequest{
		EntityType: common.EntityOwner,
		EntityID:   3,
		Category:   common.CategoryOwnerImage,
		File:       models.File{Name: "me.png", ContentType: "image/png", Data: smallPNG(t)},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, f.cancels, 1, "cancel goes out on a detached context")
	assert.Equal(t, "up-1", f.cancels[0].UploadToken)
}

type cancellingUploader struct {
	cancel context.CancelFunc
}

func (u cancellingUploader) Put(ctx context.Context, _ string, _ []byte, _ string, _ netx.ProgressFunc) (string, error) {
	u.cancel()
	return "", ctx.Err()
}

func TestUpload_CompressionDisabledSendsOriginal(t *testing.T) {
	f := newFakeService(t)
	svc := newUploads(t, f, WithoutCompression())
	data := noisePNG(t, 2000, 10)

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityProperty,
		EntityID:   5,
		Category:   common.CategoryPropertyImage,
		File:       models.File{Name: "wide.png", ContentType: "image/png", Data: data},
	})
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, data, f.blobs[f.puts[0]])
}

func TestUpload_JournalLifecycle(t *testing.T) {
	f := newFakeService(t)
	j := &memJournal{}
	svc := newUploads(t, f, WithJournal(j))

	_, err := svc.Upload(context.Background(), UploadRequest{
		EntityType: common.EntityOwner,
		EntityID:   3,
		Category:   common.CategoryOwnerImage,
		File:       models.File{Name: "me.png", ContentType: "image/png", Data: smallPNG(t)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"up-1"}, j.recorded)
	assert.Equal(t, []string{"up-1"}, j.removed)
	assert.Empty(t, j.items)
}

func TestSweepAbandoned(t *testing.T) {
	f := newFakeService(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	j := &memJournal{items: map[string]*models.PendingAttempt{
		"live":    {UploadToken: "live", ExpiresAt: now.Add(time.Minute)},
		"expired": {UploadToken: "expired", ExpiresAt: now.Add(-time.Minute)},
	}}
	svc := newUploads(t, f, WithJournal(j), WithClock(func() time.Time { return now }))

	n, err := svc.SweepAbandoned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, f.cancels, 1)
	assert.Equal(t, "live", f.cancels[0].UploadToken)
	assert.Equal(t, "abandoned", f.cancels[0].Reason)
	assert.Empty(t, j.items)

	n, err = NewUploadService(f.client(t), f.uploader()).SweepAbandoned(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweepAbandoned_ListError(t *testing.T) {
	f := newFakeService(t)
	svc := newUploads(t, f, WithJournal(&memJournal{listErr: errors.New("disk gone")}))

	_, err := svc.SweepAbandoned(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

type memJournal struct {
	items    map[string]*models.PendingAttempt
	recorded []string
	removed  []string
	listErr  error
}

func (m *memJournal) Record(_ context.Context, a *models.PendingAttempt) error {
	if m.items == nil {
		m.items = map[string]*models.PendingAttempt{}
	}
	m.items[a.UploadToken] = a
	m.recorded = append(m.recorded, a.UploadToken)
	return nil
}

func (m *memJournal) Remove(_ context.Context, token string) error {
	delete(m.items, token)
	m.removed = append(m.removed, token)
	return nil
}

func (m *memJournal) List(context.Context) ([]*models.PendingAttempt, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*models.PendingAttempt, 0, len(m.items))
	for _, a := range m.items {
		out = append(out, a)
	}
	return out, nil
}
