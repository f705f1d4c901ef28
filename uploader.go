package garexport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"
)

// Uploader transfers staged report data to the destination object.
type Uploader interface {
	Upload(ctx context.Context, bucket, object string, r io.Reader) error
}

type gcsUploader struct {
	storage *storage.Client
}

func newDefaultUploader(ctx context.Context) (Uploader, error) {
	s, err := storage.NewClient(ctx)
	if err != nil {
		return nil, xerrors.Errorf("failed to build storage client: %w", err)
	}

	return &gcsUploader{storage: s}, nil
}

func (u *gcsUploader) Upload(ctx context.Context, bucket, object string, r io.Reader) error {
	l := log.Ctx(ctx)

	w := u.storage.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/x-ndjson"

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return xerrors.Errorf("failed to write gs://%s/%s: %w", bucket, object, err)
	}

	if err := w.Close(); err != nil {
		return xerrors.Errorf("failed to finalize gs://%s/%s: %w", bucket, object, err)
	}

	l.Debug().Msg(fmt.Sprintf("uploaded gs://%s/%s", bucket, object))

	return nil
}

// stageRecords writes records to a temporary file as newline-delimited
// JSON, one object per line with a newline after every record, and
// returns a reader over the staged content. The returned closer removes
// the file and must be called on every exit path.
func stageRecords(records []Record) (io.Reader, func(), error) {
	f, err := os.CreateTemp("", "garexport-*.json")
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to create staging file: %w", err)
	}

	closer := func() {
		f.Close()
		os.Remove(f.Name())
	}

	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			closer()
			return nil, nil, xerrors.Errorf("failed to stage record: %w", err)
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		closer()
		return nil, nil, xerrors.Errorf("failed to rewind staging file: %w", err)
	}

	return f, closer, nil
}
