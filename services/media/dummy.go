package mediasvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/adapt/core"
)

// DummyService keeps uploads in memory. Used in development and in tests.
type DummyService struct {
	mu    sync.RWMutex
	files map[string][]byte
}

var _ core.MediaService = (*DummyService)(nil)

func NewDummyService() *DummyService {
	return &DummyService{files: make(map[string][]byte)}
}

func (svc *DummyService) Upload(_ context.Context, up core.Upload) (core.Attachment, error) {
	data, err := ioutil.ReadAll(up.Content)
	if err != nil {
		return core.Attachment{}, err
	}

	publicID := uuid.NewString()
	svc.mu.Lock()
	svc.files[publicID] = data
	svc.mu.Unlock()

	return core.Attachment{
		URL:         fmt.Sprintf("https://media.local/%s/%s", core.ResourceKind(up.ContentType), publicID),
		PublicID:    publicID,
		ContentType: up.ContentType,
	}, nil
}

func (svc *DummyService) Delete(_ context.Context, publicID, _ string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.files, publicID)
	return nil
}

// Open returns the stored bytes for publicID.
func (svc *DummyService) Open(publicID string) (io.Reader, bool) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	data, ok := svc.files[publicID]
	if !ok {
		return nil, false
	}
	return bytes.NewReader(data), true
}

// Count reports the number of stored files.
func (svc *DummyService) Count() int {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return len(svc.files)
}
