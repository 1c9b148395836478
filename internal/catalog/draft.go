// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"sellerconsole/internal/models"
)

// MaxImages caps staged plus uploaded images on a product draft.
const MaxImages = models.MaxProductImages

// ErrSubCategoryMismatch is returned when a sub-category does not belong to
// the selected category.
var ErrSubCategoryMismatch = errors.New("sub-category does not belong to the selected category")

// DraftState is the conceptual stage a product draft is in.
type DraftState string

const (
	StateEmpty          DraftState = "empty"
	StateEditing        DraftState = "editing"
	StateImagesStaged   DraftState = "images_staged"
	StateImagesUploaded DraftState = "images_uploaded"
	StateVariantsStaged DraftState = "variants_staged"
	StateSubmitting     DraftState = "submitting"
	StateDone           DraftState = "done"
	StateFailed         DraftState = "failed"
)

// File is an image ready to be sent to an upload endpoint.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// StagedFile is a locally selected image that has not been uploaded yet.
// Its bytes and preview live in a Blobs store under ID.
type StagedFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Blobs holds the bytes and previews of staged files.
type Blobs interface {
	Read(ctx context.Context, id string) ([]byte, error)
	Revoke(ctx context.Context, ids ...string) error
}

// Uploader exchanges image files for hosted URLs in a single request.
type Uploader interface {
	UploadImages(ctx context.Context, files []File) ([]string, error)
}

// ProductWriter persists a product.
type ProductWriter interface {
	CreateProduct(ctx context.Context, p ProductPayload) error
	UpdateProduct(ctx context.Context, id string, p ProductPayload) error
}

// FieldInput is the raw text of the product form fields.
type FieldInput struct {
	Name        string
	Description string
	Price       string
	Inventory   string
}

// ProductFields are the parsed product form fields.
type ProductFields struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         Number `json:"price"`
	Inventory     Number `json:"inventory"`
	CategoryID    string `json:"categoryId"`
	SubCategoryID string `json:"subCategoryId"`
}

func (f ProductFields) empty() bool {
	return f.Name == "" && f.Description == "" && f.Price.Raw == "" &&
		f.Inventory.Raw == "" && f.CategoryID == "" && f.SubCategoryID == ""
}

// ProductPayload is the body of the product create and update requests.
type ProductPayload struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Price         float64       `json:"price"`
	Inventory     int           `json:"inventory"`
	CategoryID    string        `json:"categoryId"`
	SubCategoryID string        `json:"subCategoryId"`
	BasePrice     float64       `json:"basePrice"`
	Images        []string      `json:"images"`
	Options       []OptionInput `json:"options,omitempty"`
}

// ProductDraft is the server-side staging area of the product form. It
// couples two sub-flows: images (staged, then uploaded in one request) and
// option axes (only while creating). It is JSON-serializable so it can be
// kept between requests.
type ProductDraft struct {
	ID        string        `json:"id"`
	ProductID string        `json:"productId,omitempty"`
	State     DraftState    `json:"state"`
	Fields    ProductFields `json:"fields"`
	Staged    []StagedFile  `json:"staged"`
	Uploaded  []string      `json:"uploaded"`
	Variants  Composer      `json:"variants"`
}

// NewDraft returns an empty draft for a new product.
func NewDraft(id string) *ProductDraft {
	return &ProductDraft{ID: id, State: StateEmpty}
}

// EditDraft returns a draft prefilled from an existing product.
func EditDraft(id string, p models.Product) *ProductDraft {
	d := &ProductDraft{
		ID:        id,
		ProductID: p.ID,
		State:     StateEditing,
		Fields: ProductFields{
			Name:        p.Name,
			Description: p.Description,
			Price:       NumberOf(p.BasePrice),
			Inventory:   NumberOf(float64(p.StockQuantity())),
		},
		Uploaded: append([]string(nil), p.Images...),
	}
	if p.CategoryID != nil {
		d.Fields.CategoryID = *p.CategoryID
	}
	if p.SubCategoryID != nil {
		d.Fields.SubCategoryID = *p.SubCategoryID
	}
	if len(d.Uploaded) > MaxImages {
		d.Uploaded = d.Uploaded[:MaxImages]
	}
	return d
}

// IsUpdate reports whether the draft edits an existing product.
func (d *ProductDraft) IsUpdate() bool { return d.ProductID != "" }

// FreeSlots returns how many more images may be staged.
func (d *ProductDraft) FreeSlots() int {
	free := MaxImages - len(d.Staged) - len(d.Uploaded)
	if free < 0 {
		return 0
	}
	return free
}

// SetFields stores the text fields. Price and inventory are parsed as they
// arrive; unparsable input is kept and rejected later by Validate.
func (d *ProductDraft) SetFields(in FieldInput) {
	d.Fields.Name = in.Name
	d.Fields.Description = in.Description
	d.Fields.Price = ParseNumber(in.Price)
	d.Fields.Inventory = ParseNumber(in.Inventory)
	d.settle()
}

// SelectCategory sets the category and returns the sub-categories that
// belong to it. A selected sub-category outside the new category is cleared.
func (d *ProductDraft) SelectCategory(categoryID string, all []models.SubCategory) []models.SubCategory {
	subs := FilterSubCategories(all, categoryID)
	d.Fields.CategoryID = categoryID

	if d.Fields.SubCategoryID != "" && !containsSub(subs, d.Fields.SubCategoryID) {
		d.Fields.SubCategoryID = ""
	}
	d.settle()
	return subs
}

// SelectSubCategory sets the sub-category, which must belong to the
// selected category. An empty id clears the selection.
func (d *ProductDraft) SelectSubCategory(subCategoryID string, all []models.SubCategory) error {
	if subCategoryID == "" {
		d.Fields.SubCategoryID = ""
		return nil
	}
	if !containsSub(FilterSubCategories(all, d.Fields.CategoryID), subCategoryID) {
		return ErrSubCategoryMismatch
	}
	d.Fields.SubCategoryID = subCategoryID
	d.settle()
	return nil
}

// AddFiles stages image files. Non-image files are skipped, and the batch is
// truncated so staged plus uploaded never exceeds MaxImages; dropped files
// are not queued. It returns the files actually staged and any notices to
// show the user.
func (d *ProductDraft) AddFiles(files []StagedFile) ([]StagedFile, []*Notice) {
	var notices []*Notice

	images := make([]StagedFile, 0, len(files))
	for _, f := range files {
		if IsImageType(f.ContentType) {
			images = append(images, f)
		}
	}
	if len(images) != len(files) {
		notices = append(notices, ErrFilesSkipped)
	}
	if len(images) == 0 {
		return nil, notices
	}

	if len(d.Staged)+len(d.Uploaded)+len(images) > MaxImages {
		free := d.FreeSlots()
		desc := fmt.Sprintf("You can only upload a maximum of %d images. %d slots remaining.", MaxImages, free)
		notices = append(notices, &Notice{Title: ErrMaxImages.Title, Description: desc})
		if free == 0 {
			return nil, notices
		}
		images = images[:free]
	}

	d.Staged = append(d.Staged, images...)
	d.settle()
	return images, notices
}

// RemoveStaged unstages a file. The caller revokes its preview.
func (d *ProductDraft) RemoveStaged(id string) (StagedFile, bool) {
	for i, f := range d.Staged {
		if f.ID == id {
			d.Staged = append(d.Staged[:i], d.Staged[i+1:]...)
			d.settle()
			return f, true
		}
	}
	return StagedFile{}, false
}

// RemoveUploaded drops an uploaded image URL from the draft.
func (d *ProductDraft) RemoveUploaded(url string) bool {
	for i, u := range d.Uploaded {
		if u == url {
			d.Uploaded = append(d.Uploaded[:i], d.Uploaded[i+1:]...)
			d.settle()
			return true
		}
	}
	return false
}

// UploadStaged sends every staged file in one request. On success the
// returned URLs join the uploaded list, the staged list is cleared and all
// previews are revoked. URLs past MaxImages are logged and not kept. On
// failure the draft is left untouched.
func (d *ProductDraft) UploadStaged(ctx context.Context, blobs Blobs, up Uploader) error {
	if len(d.Staged) == 0 {
		return ErrNoImagesSelected
	}
	if len(d.Staged)+len(d.Uploaded) > MaxImages {
		return ErrTooManyImages
	}

	files := make([]File, 0, len(d.Staged))
	for _, s := range d.Staged {
		data, err := blobs.Read(ctx, s.ID)
		if err != nil {
			return ErrUploadFailed.wrap(fmt.Errorf("read staged %s: %w", s.ID, err))
		}
		files = append(files, File{Name: s.Name, ContentType: s.ContentType, Data: data})
	}

	urls, err := up.UploadImages(ctx, files)
	if err != nil {
		return ErrUploadFailed.wrap(err)
	}

	ids := stagedIDs(d.Staged)
	if free := MaxImages - len(d.Uploaded); len(urls) > free {
		slog.Warn("upload returned more images than the draft holds",
			"draft", d.ID, "sent", len(files), "returned", len(urls), "dropped", urls[free:])
		urls = urls[:free]
	}
	d.Uploaded = append(d.Uploaded, urls...)
	d.Staged = nil
	d.settle()

	if err := blobs.Revoke(ctx, ids...); err != nil {
		slog.Warn("revoke previews failed", "draft", d.ID, "error", err)
	}
	return nil
}

// AddAxis stages an option axis on a new product.
func (d *ProductDraft) AddAxis(name string, values []string) (Axis, error) {
	if d.IsUpdate() {
		return Axis{}, errors.New("options of an existing product are edited separately")
	}
	axis, err := d.Variants.Add(name, values)
	if err != nil {
		return Axis{}, err
	}
	d.settle()
	return axis, nil
}

// EditAxis replaces a staged axis.
func (d *ProductDraft) EditAxis(id, name string, values []string) error {
	if err := d.Variants.Edit(id, name, values); err != nil {
		return err
	}
	d.settle()
	return nil
}

// RemoveAxis drops a staged axis.
func (d *ProductDraft) RemoveAxis(id string) bool {
	ok := d.Variants.Remove(id)
	d.settle()
	return ok
}

// Validate checks the form fields, returning FieldErrors when any fail.
func (d *ProductDraft) Validate() error {
	fe := FieldErrors{}
	f := d.Fields

	if strings.TrimSpace(f.Name) == "" {
		fe["name"] = "Name is required."
	}
	if strings.TrimSpace(f.Description) == "" {
		fe["description"] = "Description is required."
	}
	switch {
	case !f.Price.NonNegative():
		fe["price"] = "Price must be a positive number."
	case !f.Price.AtMost(MaxPrice):
		fe["price"] = "Price is too large."
	}
	switch {
	case !f.Inventory.NonNegative() || !f.Inventory.Whole():
		fe["inventory"] = "Inventory must be a positive number."
	case !f.Inventory.AtMost(MaxQuantity):
		fe["inventory"] = "Inventory is too large."
	}
	if f.CategoryID == "" {
		fe["categoryId"] = "Category is required."
	}
	if f.SubCategoryID == "" {
		fe["subCategoryId"] = "Sub-category is required."
	}

	if len(fe) > 0 {
		return fe
	}
	return nil
}

// Payload builds the request body. basePrice mirrors price, and options are
// sent only when creating.
func (d *ProductDraft) Payload() ProductPayload {
	p := ProductPayload{
		Name:          d.Fields.Name,
		Description:   d.Fields.Description,
		Price:         d.Fields.Price.Float(),
		Inventory:     d.Fields.Inventory.Int(),
		CategoryID:    d.Fields.CategoryID,
		SubCategoryID: d.Fields.SubCategoryID,
		BasePrice:     d.Fields.Price.Float(),
		Images:        append([]string{}, d.Uploaded...),
	}
	if !d.IsUpdate() {
		p.Options = d.Variants.Serialize()
	}
	return p
}

// Submit validates and persists the draft. A failed request leaves every
// field, staged file and staged axis as it was so the user can retry; a
// successful one clears the draft and revokes any remaining previews.
func (d *ProductDraft) Submit(ctx context.Context, w ProductWriter, blobs Blobs) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if len(d.Uploaded) == 0 {
		return ErrImagesRequired
	}

	payload := d.Payload()
	d.State = StateSubmitting

	var err error
	if d.IsUpdate() {
		err = w.UpdateProduct(ctx, d.ProductID, payload)
	} else {
		err = w.CreateProduct(ctx, payload)
	}
	if err != nil {
		d.State = StateFailed
		if d.IsUpdate() {
			return ErrUpdateFailed.wrap(err)
		}
		return ErrCreateFailed.wrap(err)
	}

	ids := stagedIDs(d.Staged)
	d.Fields = ProductFields{}
	d.Staged = nil
	d.Uploaded = nil
	d.Variants.Reset()
	d.State = StateDone

	if len(ids) > 0 && blobs != nil {
		if err := blobs.Revoke(ctx, ids...); err != nil {
			slog.Warn("revoke previews failed", "draft", d.ID, "error", err)
		}
	}
	return nil
}

// settle derives the conceptual state from what the draft holds.
func (d *ProductDraft) settle() {
	switch {
	case len(d.Staged) > 0:
		d.State = StateImagesStaged
	case d.Variants.Len() > 0 && !d.IsUpdate():
		d.State = StateVariantsStaged
	case len(d.Uploaded) > 0:
		d.State = StateImagesUploaded
	case !d.Fields.empty() || d.IsUpdate():
		d.State = StateEditing
	default:
		d.State = StateEmpty
	}
}

// IsImageType reports whether a MIME type is an image.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func stagedIDs(files []StagedFile) []string {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids
}

func containsSub(subs []models.SubCategory, id string) bool {
	for _, s := range subs {
		if s.ID == id {
			return true
		}
	}
	return false
}
