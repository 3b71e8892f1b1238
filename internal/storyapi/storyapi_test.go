package storyapi

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/orgball2608/story-explorer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeStory(t *testing.T) {
	body, contentType, err := EncodeStory(domain.StoryDraft{
		Description:      "Trip",
		Photo:            []byte{1, 2, 3},
		PhotoName:        "trip.png",
		PhotoContentType: "image/png",
		Lat:              -6.175392,
		Lon:              106.827153,
	})
	require.NoError(t, err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	r := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	form, err := r.ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	assert.Equal(t, []string{"Trip"}, form.Value["description"])
	assert.Equal(t, []string{"-6.175392"}, form.Value["lat"])
	assert.Equal(t, []string{"106.827153"}, form.Value["lon"])

	require.Len(t, form.File["photo"], 1)
	fh := form.File["photo"][0]
	assert.Equal(t, "trip.png", fh.Filename)
	assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
	f, err := fh.Open()
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestSubmissionOf(t *testing.T) {
	p := domain.PendingSubmission{
		IdempotencyKey: "key-1",
		Token:          "tok",
		Payload:        []byte("body"),
		ContentType:    "multipart/form-data; boundary=x",
	}

	got := SubmissionOf(p)

	assert.Equal(t, Submission{
		Body:           []byte("body"),
		ContentType:    "multipart/form-data; boundary=x",
		Token:          "tok",
		IdempotencyKey: "key-1",
	}, got)
}
