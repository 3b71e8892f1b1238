package storyapi

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"github.com/orgball2608/story-explorer/internal/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=storyapi.go -destination=mocks/mock.go

// Submission is a fully encoded story upload. Replaying the same
// Submission later produces the same request.
type Submission struct {
	Body           []byte
	ContentType    string
	Token          string
	IdempotencyKey string
}

// SubmissionOf rebuilds the request stored with a queued submission.
func SubmissionOf(p domain.PendingSubmission) Submission {
	return Submission{
		Body:           p.Payload,
		ContentType:    p.ContentType,
		Token:          p.Token,
		IdempotencyKey: p.IdempotencyKey,
	}
}

// Client is the remote story API. Transport failures are reported as
// ErrNetworkFailure and non-2xx answers as *RemoteRejection.
type Client interface {
	FetchStories(ctx context.Context, token string, location int) ([]domain.Story, error)
	SubmitStory(ctx context.Context, submission Submission) error
}

// EncodeStory builds the multipart body the API expects for a new story.
func EncodeStory(draft domain.StoryDraft) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("description", draft.Description); err != nil {
		return nil, "", fmt.Errorf("failed to write description: %w", err)
	}

	name := draft.PhotoName
	if name == "" {
		name = "photo.jpg"
	}
	contentType := draft.PhotoContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create photo part: %w", err)
	}
	if _, err := part.Write(draft.Photo); err != nil {
		return nil, "", fmt.Errorf("failed to write photo: %w", err)
	}

	if err := w.WriteField("lat", strconv.FormatFloat(draft.Lat, 'f', -1, 64)); err != nil {
		return nil, "", fmt.Errorf("failed to write lat: %w", err)
	}
	if err := w.WriteField("lon", strconv.FormatFloat(draft.Lon, 'f', -1, 64)); err != nil {
		return nil, "", fmt.Errorf("failed to write lon: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
