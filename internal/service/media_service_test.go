package service

import (
	"context"
	"testing"

	"github.com/janboddez/import-from-pixelfed/internal/models"
	"github.com/janboddez/import-from-pixelfed/internal/transfer"
)

// A minimal PNG signature; enough for content-type sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

type fakeMediaAssetRepo struct {
	nextID  int64
	byName  map[string]*models.MediaAsset
	created []*models.MediaAsset
}

func newFakeMediaAssetRepo() *fakeMediaAssetRepo {
	return &fakeMediaAssetRepo{byName: make(map[string]*models.MediaAsset)}
}

func (r *fakeMediaAssetRepo) Create(ctx context.Context, asset *models.MediaAsset) (int64, error) {
	r.nextID++
	asset.ID = r.nextID
	if _, ok := r.byName[asset.FileName]; !ok {
		r.byName[asset.FileName] = asset
	}
	r.created = append(r.created, asset)
	return asset.ID, nil
}

func (r *fakeMediaAssetRepo) GetByFileName(ctx context.Context, fileName string) (*models.MediaAsset, error) {
	return r.byName[fileName], nil
}

func (r *fakeMediaAssetRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.MediaAsset, error) {
	var out []*models.MediaAsset
	for _, asset := range r.created {
		if asset.PostID == postID {
			out = append(out, asset)
		}
	}
	return out, nil
}

type fakeStorage struct {
	uploads map[string][]byte
}

func (s *fakeStorage) Upload(ctx context.Context, key string, file []byte, filetype string) error {
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	s.uploads[key] = file
	return nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "https://cdn.example/" + key
}

func TestAttachStoresImage(t *testing.T) {
	pixelfed := &fakePixelfed{downloads: map[string][]byte{
		"https://pixelfed.example/storage/photo.png": pngBytes,
	}}
	assets := newFakeMediaAssetRepo()
	storage := &fakeStorage{}
	ms := NewMediaService(pixelfed, assets, storage)

	id, err := ms.Attach(context.Background(), 7, &transfer.MediaAttachment{
		Type:        "image",
		URL:         "https://pixelfed.example/storage/photo.png",
		Description: "a photo",
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("expected a media asset ID")
	}

	if _, ok := storage.uploads["media/photo.png"]; !ok {
		t.Error("expected the file under media/photo.png")
	}

	asset := assets.created[0]
	if asset.PostID != 7 {
		t.Errorf("post ID = %d, want 7", asset.PostID)
	}
	if asset.FileType != "image/png" {
		t.Errorf("file type = %q, want image/png", asset.FileType)
	}
	if asset.AltText != "a photo" {
		t.Errorf("alt text = %q", asset.AltText)
	}
	if asset.FileURL != "https://cdn.example/media/photo.png" {
		t.Errorf("file URL = %q", asset.FileURL)
	}
}

func TestAttachReusesExistingFile(t *testing.T) {
	pixelfed := &fakePixelfed{downloads: map[string][]byte{
		"https://pixelfed.example/storage/photo.png": pngBytes,
	}}
	assets := newFakeMediaAssetRepo()
	storage := &fakeStorage{}
	ms := NewMediaService(pixelfed, assets, storage)

	attachment := &transfer.MediaAttachment{
		Type: "image",
		URL:  "https://pixelfed.example/storage/photo.png",
	}

	if _, err := ms.Attach(context.Background(), 1, attachment, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := ms.Attach(context.Background(), 2, attachment, 0); err != nil {
		t.Fatal(err)
	}

	// Second attach links the already stored file; no second upload.
	if len(storage.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(storage.uploads))
	}
	if len(assets.created) != 2 {
		t.Errorf("assets = %d, want 2", len(assets.created))
	}
	if assets.created[1].FileURL != assets.created[0].FileURL {
		t.Error("expected the reused asset to point at the same file")
	}
}

func TestAttachRejectsBadInput(t *testing.T) {
	pixelfed := &fakePixelfed{downloads: map[string][]byte{
		"https://pixelfed.example/storage/notes.txt": []byte("plain text"),
	}}
	ms := NewMediaService(pixelfed, newFakeMediaAssetRepo(), &fakeStorage{})

	tests := []struct {
		name string
		url  string
	}{
		{"unparseable URL", "::not-a-url"},
		{"unsupported scheme", "ftp://pixelfed.example/photo.png"},
		{"download failure", "https://pixelfed.example/storage/gone.png"},
		{"not an image", "https://pixelfed.example/storage/notes.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ms.Attach(context.Background(), 1, &transfer.MediaAttachment{Type: "image", URL: tt.url}, 0); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
