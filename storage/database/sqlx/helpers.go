package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/adapt/core"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// fileCols flattens an Attachment into its table columns. Absence is stored
// as empty strings rather than NULLs.
type fileCols struct {
	URL         string `db:"file_url"`
	PublicID    string `db:"file_public_id"`
	ContentType string `db:"file_content_type"`
}

func newFileCols(att *core.Attachment) fileCols {
	if att == nil {
		return fileCols{}
	}
	return fileCols{URL: att.URL, PublicID: att.PublicID, ContentType: att.ContentType}
}

func (fc fileCols) attachment() *core.Attachment {
	if fc.URL == "" && fc.PublicID == "" {
		return nil
	}
	return &core.Attachment{URL: fc.URL, PublicID: fc.PublicID, ContentType: fc.ContentType}
}
