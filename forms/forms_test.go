package forms_test

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-avatars/forms"
	"github.com/goliatone/go-avatars/pkg/types"
)

func testUpload() types.Upload {
	return types.Upload{
		Filename:    "face.png",
		Size:        1024,
		ContentType: "image/png",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("png-bytes")), nil
		},
	}
}

func TestDefaultUploadValidator(t *testing.T) {
	settings := types.Settings{}.Normalize()
	v := forms.DefaultUploadValidator{}

	require.NoError(t, v.ValidateUpload(testUpload(), 0, settings))

	t.Run("missing file", func(t *testing.T) {
		err := v.ValidateUpload(types.Upload{}, 0, settings)
		require.ErrorIs(t, err, forms.ErrFileRequired)
	})

	t.Run("content type", func(t *testing.T) {
		u := testUpload()
		u.ContentType = "application/pdf"
		err := v.ValidateUpload(u, 0, settings)
		require.ErrorIs(t, err, forms.ErrContentType)
	})

	t.Run("content type case insensitive", func(t *testing.T) {
		u := testUpload()
		u.ContentType = "IMAGE/PNG"
		require.NoError(t, v.ValidateUpload(u, 0, settings))
	})

	t.Run("too large", func(t *testing.T) {
		u := testUpload()
		u.Size = settings.MaxBytes + 1
		err := v.ValidateUpload(u, 0, settings)
		require.ErrorIs(t, err, forms.ErrFileTooLarge)
	})

	t.Run("per user cap", func(t *testing.T) {
		err := v.ValidateUpload(testUpload(), settings.MaxPerUser, settings)
		require.ErrorIs(t, err, forms.ErrTooManyAvatars)
	})
}

func TestDefaultPrimaryChoiceValidator(t *testing.T) {
	owned := uuid.New()
	set := types.AvatarSet{Avatars: []types.Avatar{{ID: owned}}}
	v := forms.DefaultPrimaryChoiceValidator{}

	require.NoError(t, v.ValidatePrimaryChoice(owned, set))
	require.ErrorIs(t, v.ValidatePrimaryChoice(uuid.Nil, set), forms.ErrChoiceRequired)
	require.ErrorIs(t, v.ValidatePrimaryChoice(uuid.New(), set), forms.ErrInvalidChoice)
}

func TestDefaultDeleteChoicesValidator(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	set := types.AvatarSet{Avatars: []types.Avatar{{ID: a}, {ID: b}}}
	v := forms.DefaultDeleteChoicesValidator{}

	require.NoError(t, v.ValidateDeleteChoices([]uuid.UUID{a, b}, set))
	require.ErrorIs(t, v.ValidateDeleteChoices(nil, set), forms.ErrChoiceRequired)

	err := v.ValidateDeleteChoices([]uuid.UUID{a, uuid.New()}, set)
	require.ErrorIs(t, err, forms.ErrInvalidChoice)
}

func TestParseChoices(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := forms.ParseChoices(a.String() + ", " + b.String() + ",")
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{a, b}, ids)

	ids, err = forms.ParseChoices("  ")
	require.NoError(t, err)
	require.Nil(t, ids)

	_, err = forms.ParseChoices("not-a-uuid")
	require.ErrorIs(t, err, forms.ErrInvalidChoice)
}
