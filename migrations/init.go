package migrations

import (
	"io/fs"

	avatars "github.com/goliatone/go-avatars"
)

func init() {
	coreFS, err := fs.Sub(avatars.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return
	}
	Register(coreFS)
}
