// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog holds the product configuration workflow: staging option
// axes, composing product drafts with their two-phase image upload, and
// assembling variant (SKU) payloads. It has no HTTP or storage dependencies;
// callers supply the backend through small interfaces.
package catalog

import (
	"sort"
	"strings"
)

// Notice is a user-facing message with a short title and a longer
// description. Operations return it as an error when an action is rejected
// or fails; the wrapped Err, if any, carries the underlying cause.
type Notice struct {
	Title       string
	Description string
	Err         error
}

func (n *Notice) Error() string {
	if n.Err != nil {
		return n.Title + ": " + n.Err.Error()
	}
	return n.Title
}

func (n *Notice) Unwrap() error { return n.Err }

// Is matches notices by title so copies made with wrap still compare equal
// to the package-level values.
func (n *Notice) Is(target error) bool {
	t, ok := target.(*Notice)
	return ok && t.Title == n.Title
}

// wrap returns a copy of n carrying err as its cause.
func (n *Notice) wrap(err error) *Notice {
	c := *n
	c.Err = err
	return &c
}

var (
	ErrAxisNameRequired = &Notice{
		Title:       "Variant name required",
		Description: "Please enter a name for this variant",
	}
	ErrAxisValuesRequired = &Notice{
		Title:       "Variant values required",
		Description: "Please add at least one value for this variant",
	}
	ErrLastAxisValue = &Notice{
		Title:       "Cannot remove",
		Description: "A variant must have at least one value",
	}
	ErrFilesSkipped = &Notice{
		Title:       "Some files were skipped",
		Description: "Only image files are accepted.",
	}
	ErrMaxImages = &Notice{
		Title:       "Maximum images limit reached",
		Description: "You can only upload a maximum of 5 images.",
	}
	ErrNoImagesSelected = &Notice{
		Title:       "No images selected for upload",
		Description: "Please select at least one image to upload.",
	}
	ErrTooManyImages = &Notice{
		Title:       "Too many images",
		Description: "You can only upload a maximum of 5 images.",
	}
	ErrUploadFailed = &Notice{
		Title:       "Failed to upload images",
		Description: "Please try again.",
	}
	ErrImagesRequired = &Notice{
		Title:       "Images required",
		Description: "Please upload at least one image for the product.",
	}
	ErrCreateFailed = &Notice{
		Title:       "Failed to create product",
		Description: "Please try again.",
	}
	ErrUpdateFailed = &Notice{
		Title:       "Failed to update product",
		Description: "Please try again.",
	}
	ErrVariantSaveFailed = &Notice{
		Title:       "Failed to save variant",
		Description: "Please try again.",
	}
	ErrOptionsSaveFailed = &Notice{
		Title:       "Failed to save variant options",
		Description: "Please try again.",
	}
)

// FieldErrors maps a form field name to its validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fe[k])
	}
	return strings.Join(msgs, " ")
}
