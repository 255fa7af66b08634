package mediasvc

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
)

type cloudinaryService struct {
	cld           *cloudinary.Cloudinary
	folder        string
	uploadTimeout time.Duration
	logger        core.Logger
}

var _ core.MediaService = (*cloudinaryService)(nil)

func NewCloudinaryService(conf *core.Config, logger core.Logger) (core.MediaService, error) {
	cld, err := cloudinary.NewFromParams(conf.Cloudinary.Name, conf.Cloudinary.Key, conf.Cloudinary.Secret)
	if err != nil {
		return nil, errors.Wrap(err, "initializing cloudinary")
	}
	return &cloudinaryService{
		cld:           cld,
		folder:        conf.Cloudinary.Folder,
		uploadTimeout: conf.Cloudinary.UploadTimeout,
		logger:        logger,
	}, nil
}

func (svc *cloudinaryService) Upload(ctx context.Context, up core.Upload) (core.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, svc.uploadTimeout)
	defer cancel()

	res, err := svc.cld.Upload.Upload(ctx, up.Content, uploader.UploadParams{
		Folder:       svc.folder,
		ResourceType: core.ResourceKind(up.ContentType),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return core.Attachment{}, core.ErrUploadTimeout
		}
		return core.Attachment{}, errors.Wrap(err, "uploading file")
	}
	if res.Error.Message != "" {
		return core.Attachment{}, errors.Errorf("uploading file: %s", res.Error.Message)
	}

	return core.Attachment{
		URL:         res.SecureURL,
		PublicID:    res.PublicID,
		ContentType: up.ContentType,
	}, nil
}

func (svc *cloudinaryService) Delete(ctx context.Context, publicID, contentType string) error {
	res, err := svc.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: core.ResourceKind(contentType),
	})
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("deleting file %s: %v", publicID, err))
		return errors.Wrap(err, "deleting file")
	}
	if res.Result != "ok" && res.Result != "not found" {
		svc.logger.Warn(fmt.Sprintf("deleting file %s: %s", publicID, res.Result))
		return errors.Errorf("deleting file: %s", res.Result)
	}
	return nil
}
