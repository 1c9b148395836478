// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns seller-supplied names into URL and object-key safe
// fragments.
package slug

import (
	"path/filepath"
	"regexp"
	"strings"
)

// maxLength bounds a slug so object keys stay readable.
const maxLength = 60

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators are turned into spaces before stripping.
	separators = strings.NewReplacer("_", " ", ".", " ", "/", " ")
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// folds maps common Latin accents to ASCII.
	folds = strings.NewReplacer(
		"ă", "a", "â", "a", "á", "a", "à", "a", "ä", "a", "ã", "a",
		"î", "i", "í", "i", "ï", "i",
		"ș", "s", "ş", "s", "ț", "t", "ţ", "t",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"ó", "o", "ö", "o", "ô", "o", "ú", "u", "ü", "u", "ñ", "n", "ç", "c",
	)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Summer Dress, Red!" → "summer-dress-red"
func Generate(s string) string {
	result := folds.Replace(strings.ToLower(strings.TrimSpace(s)))
	result = separators.Replace(result)
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.Join(strings.Fields(result), "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	if len(result) > maxLength {
		result = result[:maxLength]
	}
	return strings.Trim(result, "-")
}

// FileName slugs the base of a file name and keeps its extension,
// lower-cased. ext is used when the name has none; an empty base becomes
// "file". Example: "IMG 0042.JPG" → "img-0042.jpg"
func FileName(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "." || name == "/" {
		name = ""
	}
	if e := filepath.Ext(name); len(e) > 1 {
		ext = e
		name = strings.TrimSuffix(name, e)
	}
	base := Generate(name)
	if base == "" {
		base = "file"
	}
	return base + strings.ToLower(ext)
}
