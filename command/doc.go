// Package command exposes go-command compatible command handlers implementing
// go-avatars business logic (uploads, primary selection, deletion). Commands
// are wired by the service layer and can be invoked by any transport.
package command
