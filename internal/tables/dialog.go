// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tables

import (
	"fmt"
	"net/url"
)

// DialogKind names the dialog open over a table.
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogCreate
	DialogUpdate
	DialogDelete
	DialogImport
	DialogVariantOption
	DialogVariantOptionEdit
	DialogAddVariant
	DialogEditVariant
)

var dialogNames = map[DialogKind]string{
	DialogNone:              "",
	DialogCreate:            "create",
	DialogUpdate:            "update",
	DialogDelete:            "delete",
	DialogImport:            "import",
	DialogVariantOption:     "variant-option",
	DialogVariantOptionEdit: "variant-option-edit",
	DialogAddVariant:        "add-variant",
	DialogEditVariant:       "edit-variant",
}

func (k DialogKind) String() string { return dialogNames[k] }

// RequiresConfirm reports whether the dialog performs a destructive action
// that must be confirmed.
func (k DialogKind) RequiresConfirm() bool { return k == DialogDelete }

// NeedsRow reports whether the dialog acts on an existing row.
func (k DialogKind) NeedsRow() bool {
	switch k {
	case DialogNone, DialogCreate, DialogImport:
		return false
	}
	return true
}

// EntityKind names the type of entity a dialog refers to.
type EntityKind string

const (
	EntityProduct     EntityKind = "product"
	EntitySubCategory EntityKind = "sub-category"
	EntityVariant     EntityKind = "variant"
	EntityVideo       EntityKind = "video"
	EntityOrder       EntityKind = "order"
)

// EntityRef identifies the row a dialog acts on.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

// Dialog is the open-dialog state of a table view: which dialog, and for
// which row.
type Dialog struct {
	Kind DialogKind
	Ref  EntityRef
}

// Open reports whether any dialog is open.
func (d Dialog) Open() bool { return d.Kind != DialogNone }

// Query encodes the dialog as URL query parameters.
func (d Dialog) Query() string {
	if !d.Open() {
		return ""
	}
	v := url.Values{"dialog": {d.Kind.String()}}
	if d.Ref.ID != "" {
		v.Set("id", d.Ref.ID)
	}
	return v.Encode()
}

// ParseDialog reads "dialog" and "id" query parameters for entity kind.
// An absent dialog parameter yields a closed dialog.
func ParseDialog(q url.Values, entity EntityKind) (Dialog, error) {
	name := q.Get("dialog")
	if name == "" {
		return Dialog{}, nil
	}

	for kind, n := range dialogNames {
		if n != name || kind == DialogNone {
			continue
		}
		d := Dialog{Kind: kind, Ref: EntityRef{Kind: entity, ID: q.Get("id")}}
		if kind.NeedsRow() && d.Ref.ID == "" {
			return Dialog{}, fmt.Errorf("dialog %q needs a row id", name)
		}
		return d, nil
	}
	return Dialog{}, fmt.Errorf("unknown dialog %q", name)
}

// Handlers holds one callback per dialog kind. Dispatch fails on a kind
// without a handler so that every kind a view can open is accounted for.
type Handlers struct {
	None              func() error
	Create            func() error
	Update            func(EntityRef) error
	Delete            func(EntityRef) error
	Import            func() error
	VariantOption     func(EntityRef) error
	VariantOptionEdit func(EntityRef) error
	AddVariant        func(EntityRef) error
	EditVariant       func(EntityRef) error
}

// Dispatch runs the handler matching d.Kind.
func Dispatch(d Dialog, h Handlers) error {
	missing := fmt.Errorf("no handler for dialog %q", d.Kind)

	switch d.Kind {
	case DialogNone:
		if h.None == nil {
			return nil
		}
		return h.None()
	case DialogCreate:
		if h.Create == nil {
			return missing
		}
		return h.Create()
	case DialogUpdate:
		if h.Update == nil {
			return missing
		}
		return h.Update(d.Ref)
	case DialogDelete:
		if h.Delete == nil {
			return missing
		}
		return h.Delete(d.Ref)
	case DialogImport:
		if h.Import == nil {
			return missing
		}
		return h.Import()
	case DialogVariantOption:
		if h.VariantOption == nil {
			return missing
		}
		return h.VariantOption(d.Ref)
	case DialogVariantOptionEdit:
		if h.VariantOptionEdit == nil {
			return missing
		}
		return h.VariantOptionEdit(d.Ref)
	case DialogAddVariant:
		if h.AddVariant == nil {
			return missing
		}
		return h.AddVariant(d.Ref)
	case DialogEditVariant:
		if h.EditVariant == nil {
			return missing
		}
		return h.EditVariant(d.Ref)
	}
	return fmt.Errorf("unknown dialog kind %d", int(d.Kind))
}

// Action is one entry of a row's action menu.
type Action struct {
	Label  string
	Dialog Dialog
	Danger bool
}

// Href returns the link that opens the action's dialog on base.
func (a Action) Href(base string) string {
	return base + "?" + a.Dialog.Query()
}

// ProductActions returns the row menu of the products table.
func ProductActions(productID string) []Action {
	ref := EntityRef{Kind: EntityProduct, ID: productID}
	return []Action{
		{Label: "Edit", Dialog: Dialog{Kind: DialogUpdate, Ref: ref}},
		{Label: "Add variant options", Dialog: Dialog{Kind: DialogVariantOption, Ref: ref}},
		{Label: "Edit variant options", Dialog: Dialog{Kind: DialogVariantOptionEdit, Ref: ref}},
		{Label: "Add variant", Dialog: Dialog{Kind: DialogAddVariant, Ref: ref}},
		{Label: "Delete", Dialog: Dialog{Kind: DialogDelete, Ref: ref}, Danger: true},
	}
}

// RowActions returns the edit/delete menu used by the other tables.
func RowActions(kind EntityKind, id string) []Action {
	ref := EntityRef{Kind: kind, ID: id}
	return []Action{
		{Label: "Edit", Dialog: Dialog{Kind: DialogUpdate, Ref: ref}},
		{Label: "Delete", Dialog: Dialog{Kind: DialogDelete, Ref: ref}, Danger: true},
	}
}
