package command

import (
	"context"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/pkg/types"
)

// loadAvatarSet assembles the user's capped, primary-first avatar listing.
func loadAvatarSet(ctx context.Context, repo types.AvatarRepository, userID uuid.UUID, limit int) (types.AvatarSet, error) {
	avatars, err := repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return types.AvatarSet{}, err
	}
	set := types.AvatarSet{Avatars: avatars}
	for i := range avatars {
		if avatars[i].Primary {
			set.Primary = &avatars[i]
			break
		}
	}
	return set, nil
}

// storageKey builds the blob key for a new upload:
// <prefix>/<userID>/<id><ext>.
func storageKey(prefix string, userID, id uuid.UUID, upload types.Upload) string {
	return path.Join(prefix, userID.String(), id.String()+uploadExtension(upload))
}

func uploadExtension(upload types.Upload) string {
	if ext := strings.ToLower(path.Ext(upload.Filename)); ext != "" {
		return ext
	}
	if exts, err := mime.ExtensionsByType(upload.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".png"
}
