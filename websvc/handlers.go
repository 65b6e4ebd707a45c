package websvc

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goliatone/go-router"
	"github.com/goliatone/go-router/flash"
	"github.com/google/uuid"

	"github.com/goliatone/go-avatars/command"
	"github.com/goliatone/go-avatars/forms"
	"github.com/goliatone/go-avatars/pkg/types"
	"github.com/goliatone/go-avatars/query"
)

// RenderAdd serves the upload form.
func (ct *Controller) RenderAdd() router.HandlerFunc {
	return func(c router.Context) error {
		actor, target, set, err := ct.loadView(c)
		if err != nil {
			return ct.renderError(c, err)
		}
		settings := ct.svc.Settings()
		return c.Render(settings.AddTemplate, router.ViewContext{
			"actor":       actor,
			"target":      target,
			"avatars":     set.Avatars,
			"primary":     set.Primary,
			"max_reached": len(set.Avatars) >= settings.MaxPerUser,
			"next":        ct.next(c),
		})
	}
}

// HandleAdd accepts an upload and stores it as the target's primary avatar.
func (ct *Controller) HandleAdd() router.HandlerFunc {
	return func(c router.Context) error {
		actor, target, err := ct.loadTarget(c)
		if err != nil {
			return ct.renderError(c, err)
		}
		next := ct.next(c)

		header, err := c.FormFile("avatar")
		if err != nil {
			return ct.rerenderForm(c, ct.svc.Settings().AddTemplate, actor, target, "Select an image to upload")
		}

		input := command.AvatarAddInput{
			UserID: target.ID,
			Actor:  actor,
			Upload: types.Upload{
				Filename:    header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
				Open: func() (io.ReadCloser, error) {
					return header.Open()
				},
			},
		}
		if err := ct.svc.Commands().AvatarAdd.Execute(c.Context(), input); err != nil {
			if isValidationError(err) {
				return ct.rerenderForm(c, ct.svc.Settings().AddTemplate, actor, target, uploadErrorMessage(err))
			}
			ct.logger.Error("avatar upload failed", err, "user_id", target.ID)
			return flashError(c, next, uploadErrorMessage(err))
		}

		return flashSuccess(c, next, "Avatar uploaded")
	}
}

// RenderChange serves the primary selection form.
func (ct *Controller) RenderChange() router.HandlerFunc {
	return func(c router.Context) error {
		actor, target, set, err := ct.loadView(c)
		if err != nil {
			return ct.renderError(c, err)
		}
		return c.Render(ct.svc.Settings().ChangeTemplate, router.ViewContext{
			"actor":   actor,
			"target":  target,
			"avatars": set.Avatars,
			"primary": set.Primary,
			"next":    ct.next(c),
		})
	}
}

// HandleChange flips the primary flag to the chosen avatar.
func (ct *Controller) HandleChange() router.HandlerFunc {
	return func(c router.Context) error {
		actor, target, err := ct.loadTarget(c)
		if err != nil {
			return ct.renderError(c, err)
		}
		next := ct.next(c)

		choice, err := uuid.Parse(c.FormValue("choice"))
		if err != nil {
			return ct.rerenderForm(c, ct.svc.Settings().ChangeTemplate, actor, target, "Choose an avatar")
		}

		input := command.AvatarSetPrimaryInput{
			UserID:   target.ID,
			Actor:    actor,
			AvatarID: choice,
		}
		if err := ct.svc.Commands().AvatarSetPrimary.Execute(c.Context(), input); err != nil {
			if isValidationError(err) {
				return ct.rerenderForm(c, ct.svc.Settings().ChangeTemplate, actor, target, changeErrorMessage(err))
			}
			ct.logger.Error("avatar primary change failed", err, "user_id", target.ID)
			return flashError(c, next, changeErrorMessage(err))
		}

		return flashSuccess(c, next, "Primary avatar updated")
	}
}

// RenderDelete serves the deletion confirmation form.
func (ct *Controller) RenderDelete() router.HandlerFunc {
	return func(c router.Context) error {
		actor, target, set, err := ct.loadView(c)
		if err != nil {
			return ct.renderError(c, err)
		}
		return c.Render(ct.svc.Settings().DeleteTemplate, router.ViewContext{
			"actor":   actor,
			"target":  target,
			"avatars": set.Avatars,
			"primary": set.Primary,
			"next":    ct.next(c),
		})
	}
}

// HandleDelete removes the selected avatars.
func (ct *Controller) HandleDelete() router.HandlerFunc {
	return func(c router.Context) error {
		actor, target, err := ct.loadTarget(c)
		if err != nil {
			return ct.renderError(c, err)
		}
		next := ct.next(c)

		choices, err := forms.ParseChoices(c.FormValue("choices"))
		if err != nil || len(choices) == 0 {
			return ct.rerenderForm(c, ct.svc.Settings().DeleteTemplate, actor, target, "Select at least one avatar to delete")
		}

		input := command.AvatarDeleteInput{
			UserID:    target.ID,
			Actor:     actor,
			AvatarIDs: choices,
		}
		if err := ct.svc.Commands().AvatarDelete.Execute(c.Context(), input); err != nil {
			if isValidationError(err) {
				return ct.rerenderForm(c, ct.svc.Settings().DeleteTemplate, actor, target, deleteErrorMessage(err))
			}
			ct.logger.Error("avatar delete failed", err, "user_id", target.ID)
			return flashError(c, next, deleteErrorMessage(err))
		}

		return flashSuccess(c, next, fmt.Sprintf("Deleted %d avatar(s)", len(choices)))
	}
}

// RedirectPrimary resolves the named user's primary avatar at the requested
// size and redirects to the rendition, or to the configured default image
// when the user has no avatars.
func (ct *Controller) RedirectPrimary() router.HandlerFunc {
	return func(c router.Context) error {
		username := c.Param("username", "")
		size, _ := strconv.Atoi(c.Param("size", "0"))

		result, err := ct.svc.Queries().PrimaryURL.Query(c.Context(), query.PrimaryURLInput{
			Username: username,
			Size:     size,
		})
		if err != nil {
			if errors.Is(err, types.ErrUserNotFound) {
				return c.Status(http.StatusNotFound).SendString("Not Found")
			}
			ct.logger.Error("primary avatar resolution failed", err, "username", username)
			return c.Status(http.StatusInternalServerError).SendString("Internal Server Error")
		}
		return c.Redirect(result.URL, http.StatusFound)
	}
}

func (ct *Controller) loadTarget(c router.Context) (types.ActorRef, types.UserRef, error) {
	actor, err := ct.actor(c)
	if err != nil {
		return types.ActorRef{}, types.UserRef{}, types.ErrActorRequired
	}
	target, err := ct.target(c, actor)
	if err != nil {
		return types.ActorRef{}, types.UserRef{}, err
	}
	if err := ct.authorize(c.Context(), actor, target); err != nil {
		return types.ActorRef{}, types.UserRef{}, err
	}
	return actor, target, nil
}

func (ct *Controller) loadView(c router.Context) (types.ActorRef, types.UserRef, types.AvatarSet, error) {
	actor, target, err := ct.loadTarget(c)
	if err != nil {
		return types.ActorRef{}, types.UserRef{}, types.AvatarSet{}, err
	}
	set, err := ct.svc.Queries().AvatarSet.Query(c.Context(), query.AvatarSetInput{
		UserID: target.ID,
		Actor:  actor,
	})
	if err != nil {
		return types.ActorRef{}, types.UserRef{}, types.AvatarSet{}, err
	}
	return actor, target, set, nil
}

// rerenderForm answers an invalid submission with the form template again,
// the current avatar set, and the validation message. The response stays a
// plain 200 so the browser keeps the user on the form.
func (ct *Controller) rerenderForm(c router.Context, template string, actor types.ActorRef, target types.UserRef, message string) error {
	set, err := ct.svc.Queries().AvatarSet.Query(c.Context(), query.AvatarSetInput{
		UserID: target.ID,
		Actor:  actor,
	})
	if err != nil {
		return ct.renderError(c, err)
	}
	settings := ct.svc.Settings()
	return c.Render(template, router.ViewContext{
		"actor":         actor,
		"target":        target,
		"avatars":       set.Avatars,
		"primary":       set.Primary,
		"max_reached":   len(set.Avatars) >= settings.MaxPerUser,
		"next":          ct.next(c),
		"error":         true,
		"error_message": message,
	})
}

// isValidationError separates bad submissions, which re-render the form, from
// infrastructure failures, which redirect with a generic flash.
func isValidationError(err error) bool {
	switch {
	case errors.Is(err, forms.ErrFileRequired),
		errors.Is(err, forms.ErrContentType),
		errors.Is(err, forms.ErrFileTooLarge),
		errors.Is(err, forms.ErrTooManyAvatars),
		errors.Is(err, forms.ErrChoiceRequired),
		errors.Is(err, forms.ErrInvalidChoice),
		errors.Is(err, types.ErrAvatarNotFound):
		return true
	}
	return false
}

// renderError maps domain errors to plain status responses. Not-found and
// denied deliberately stay indistinguishable from missing pages.
func (ct *Controller) renderError(c router.Context, err error) error {
	switch {
	case errors.Is(err, types.ErrActorRequired):
		return c.Status(http.StatusUnauthorized).SendString("Unauthorized")
	case errors.Is(err, types.ErrUserNotFound), errors.Is(err, types.ErrManageDenied):
		return c.Status(http.StatusNotFound).SendString("Not Found")
	default:
		ct.logger.Error("avatar page failed", err)
		return c.Status(http.StatusInternalServerError).SendString("Internal Server Error")
	}
}

func flashError(c router.Context, next, message string) error {
	return flash.Redirect(c, next, router.ViewContext{
		"error":         true,
		"error_message": message,
	})
}

func flashSuccess(c router.Context, next, message string) error {
	return flash.Redirect(c, next, router.ViewContext{
		"success":         true,
		"success_message": message,
	})
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, forms.ErrContentType):
		return "That file type is not supported"
	case errors.Is(err, forms.ErrFileTooLarge):
		return "That file is too large"
	case errors.Is(err, forms.ErrTooManyAvatars):
		return "You already have the maximum number of avatars"
	case errors.Is(err, forms.ErrFileRequired):
		return "Select an image to upload"
	case errors.Is(err, command.ErrUploadDisabled):
		return "Avatar uploads are currently disabled"
	default:
		return "Upload failed, please try again"
	}
}

func changeErrorMessage(err error) string {
	switch {
	case errors.Is(err, forms.ErrChoiceRequired):
		return "Choose an avatar"
	case errors.Is(err, forms.ErrInvalidChoice), errors.Is(err, types.ErrAvatarNotFound):
		return "That avatar is not yours to choose"
	default:
		return "Could not update primary avatar"
	}
}

func deleteErrorMessage(err error) string {
	switch {
	case errors.Is(err, forms.ErrChoiceRequired):
		return "Select at least one avatar to delete"
	case errors.Is(err, forms.ErrInvalidChoice):
		return "Those avatars are not yours to delete"
	default:
		return "Could not delete avatars"
	}
}
