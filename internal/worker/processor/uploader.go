package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sceneforge/internal/pkg/errors"
	"sceneforge/internal/pkg/logger"
	"sceneforge/internal/ports"
	"sceneforge/internal/render"
)

// Uploader hands rendered artifacts to the storage provider. The video is
// mandatory: its failure fails the job even though the render itself
// succeeded. The thumbnail stays best-effort end to end.
type Uploader struct {
	sp  ports.StorageProvider
	log *logger.Logger
}

func NewUploader(sp ports.StorageProvider, log *logger.Logger) *Uploader {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Uploader{sp: sp, log: log}
}

type UploadResult struct {
	VideoKey string
	VideoURL string
	ThumbKey string
	ThumbURL string
}

func (u *Uploader) UploadOutputs(ctx context.Context, jobID string, res *render.Result) (*UploadResult, error) {
	out := &UploadResult{}

	videoKey := fmt.Sprintf("renders/%s/%s", jobID, filepath.Base(res.VideoPath))
	key, url, err := u.putFile(ctx, videoKey, "video/mp4", res.VideoPath)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUploadFailed, "processor.upload", "video upload failed")
	}
	out.VideoKey, out.VideoURL = key, url

	if res.ThumbnailPath != "" {
		thumbKey := fmt.Sprintf("renders/%s/%s", jobID, filepath.Base(res.ThumbnailPath))
		key, url, err := u.putFile(ctx, thumbKey, "image/jpeg", res.ThumbnailPath)
		if err != nil {
			u.log.Warn("thumbnail upload failed", "job_id", jobID, "error", err.Error())
		} else {
			out.ThumbKey, out.ThumbURL = key, url
		}
	}

	return out, nil
}

func (u *Uploader) putFile(ctx context.Context, objectKey, mime, localPath string) (key, url string, err error) {
	st, err := os.Stat(localPath)
	if err != nil {
		return "", "", fmt.Errorf("artifact file not found: %w", err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	putOut, err := u.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   objectKey,
		ContentType: mime,
		Reader:      f,
		Size:        st.Size(),
	})
	if err != nil {
		return "", "", err
	}

	// Providers without signed URLs return an empty URL; the API then serves
	// the object through its own streaming endpoint.
	if signed, err := u.sp.GetSignedURL(ctx, putOut.ObjectKey, 24*time.Hour); err == nil {
		url = signed.URL
	}

	return putOut.ObjectKey, url, nil
}
