package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/catalog"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/models"
	"sellerconsole/internal/render"
	"sellerconsole/internal/tables"
)

// pickerLimit caps how many products the video product picker lists.
const pickerLimit = 20

// videoRow is one row of the videos table.
type videoRow struct {
	tables.RowView
	URL     string
	Actions []tables.Action
}

// videoView is the state of the videos page and its dialog.
type videoView struct {
	Dialog       string
	VideoID      string
	Form         backend.VideoInput
	ProductQuery string
	Errors       catalog.FieldErrors
	Flashes      []render.Flash
}

// Videos renders the videos table. The create and update dialogs carry a
// product picker narrowed by the "product" query parameter.
func (c *Console) Videos(w http.ResponseWriter, r *http.Request) {
	api, _, ok := c.client(w, r)
	if !ok {
		return
	}
	videos, products, err := loadVideos(r, api)
	if err != nil {
		c.loadFailed(w, r, "videos", err)
		return
	}

	q := r.URL.Query()
	dialog, err := tables.ParseDialog(q, tables.EntityVideo)
	if err != nil {
		c.renderer.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	view := videoView{
		Dialog:       dialog.Kind.String(),
		ProductQuery: q.Get("product"),
		Flashes:      doneFlash(r),
	}
	err = tables.Dispatch(dialog, tables.Handlers{
		None:   func() error { return nil },
		Create: func() error { return nil },
		Update: func(ref tables.EntityRef) error {
			v, found := findVideo(videos, ref.ID)
			if !found {
				return errRowNotFound
			}
			view.VideoID = v.ID
			view.Form = backend.VideoInput{ProductID: v.ProductID, Size: v.Size, Caption: v.Caption, VideoURL: v.VideoURL}
			return nil
		},
	})
	if errors.Is(err, errRowNotFound) {
		c.renderer.Error(w, r, http.StatusNotFound, "That video no longer exists.")
		return
	}
	if err != nil {
		c.renderer.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c.videosPage(w, r, videos, products, view)
}

// SaveVideo creates a video, or updates the one named in the URL. A new
// file replaces the current video URL.
func (c *Console) SaveVideo(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	videos, products, err := loadVideos(r, api)
	if err != nil {
		c.loadFailed(w, r, "videos", err)
		return
	}

	view := videoView{Dialog: tables.DialogCreate.String(), VideoID: chi.URLParam(r, "videoID")}
	var existing models.Video
	if view.VideoID != "" {
		v, found := findVideo(videos, view.VideoID)
		if !found {
			c.renderer.Error(w, r, http.StatusNotFound, "That video no longer exists.")
			return
		}
		existing = v
		view.Dialog = tables.DialogUpdate.String()
	}

	if err := parseMultipart(w, r, maxVideoBytes+1<<20); err != nil {
		slog.Warn("video form invalid", "error", err)
		view.Flashes = []render.Flash{{Type: "error", Title: "Upload failed", Message: "Videos must be under 100 MB."}}
		c.videosPage(w, r, videos, products, view)
		return
	}
	view.Form = backend.VideoInput{
		ProductID: r.FormValue("productId"),
		Size:      strings.TrimSpace(r.FormValue("size")),
		Caption:   strings.TrimSpace(r.FormValue("caption")),
		VideoURL:  r.FormValue("videoUrl"),
	}
	view.ProductQuery = r.FormValue("product")

	if fh := formFile(r, "video"); fh != nil {
		f, err := readUpload(fh, maxVideoBytes)
		if err != nil || !strings.HasPrefix(f.ContentType, "video/") {
			view.Errors = catalog.FieldErrors{"videoUrl": "Please choose a video under 100 MB."}
			c.videosPage(w, r, videos, products, view)
			return
		}
		videoURL, err := api.UploadVideo(r.Context(), f)
		if err != nil {
			if c.unauthorized(w, r, err) {
				return
			}
			slog.Warn("video upload failed", "error", err)
			view.Flashes = []render.Flash{render.FlashFromNotice(catalog.ErrUploadFailed)}
			c.videosPage(w, r, videos, products, view)
			return
		}
		view.Form.VideoURL = videoURL
	}

	if fe := validateVideo(view.Form); fe != nil {
		view.Errors = fe
		c.videosPage(w, r, videos, products, view)
		return
	}
	if _, found := findProduct(products, view.Form.ProductID); !found {
		view.Errors = catalog.FieldErrors{"productId": "Please pick one of your products."}
		c.videosPage(w, r, videos, products, view)
		return
	}

	if view.VideoID == "" {
		err = api.CreateVideo(r.Context(), view.Form)
	} else {
		err = api.UpdateVideo(r.Context(), existing.ProductID, view.Form)
	}
	if err != nil {
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Warn("save video failed", "seller", sess.SellerID, "error", err)
		view.Flashes = []render.Flash{authFailure("Failed to save video", err, "Please try again.")}
		c.videosPage(w, r, videos, products, view)
		return
	}

	slog.Info("video saved", "seller", sess.SellerID, "product", view.Form.ProductID)
	middleware.Redirect(w, r, "/videos?done=video-saved")
}

func loadVideos(r *http.Request, api *backend.Client) ([]models.Video, []models.Product, error) {
	var (
		videos   []models.Video
		products []models.Product
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		videos, err = api.Videos(ctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = api.Products(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return videos, products, nil
}

func (c *Console) videosPage(w http.ResponseWriter, r *http.Request, videos []models.Video, products []models.Product, view videoView) {
	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	cols := []tables.Column[models.Video]{
		{
			Key: "product", Header: "Product",
			Cell: func(v models.Video) string { return names[v.ProductID] },
			Less: func(a, b models.Video) bool { return names[a.ProductID] < names[b.ProductID] },
		},
		{
			Key: "size", Header: "Size",
			Cell: func(v models.Video) string { return v.Size },
			Less: func(a, b models.Video) bool { return a.Size < b.Size },
		},
		{
			Key: "caption", Header: "Caption",
			Cell: func(v models.Video) string { return v.Caption },
		},
	}
	t := tables.New(cols, videos, func(v models.Video) string { return v.ID })
	t.ApplyQuery(r.URL.Query())

	urls := make(map[string]string, len(videos))
	for _, v := range videos {
		urls[v.ID] = v.VideoURL
	}
	views := t.View()
	rows := make([]videoRow, 0, len(views))
	for _, v := range views {
		ref := tables.EntityRef{Kind: tables.EntityVideo, ID: v.ID}
		rows = append(rows, videoRow{
			RowView: v,
			URL:     urls[v.ID],
			Actions: []tables.Action{{Label: "Edit", Dialog: tables.Dialog{Kind: tables.DialogUpdate, Ref: ref}}},
		})
	}

	picker := catalog.FilterProducts(products, view.ProductQuery)
	if len(picker) > pickerLimit {
		picker = picker[:pickerLimit]
	}

	c.renderer.Page(w, r, "videos", &render.PageData{
		Title:   "Videos",
		Section: "videos",
		Errors:  view.Errors,
		Flashes: view.Flashes,
		Data: map[string]any{
			"Headers":      t.Headers(),
			"Rows":         rows,
			"Dialog":       view.Dialog,
			"VideoID":      view.VideoID,
			"Form":         view.Form,
			"ProductName":  names[view.Form.ProductID],
			"ProductQuery": view.ProductQuery,
			"Picker":       picker,
		},
	})
}

func findVideo(videos []models.Video, id string) (models.Video, bool) {
	for _, v := range videos {
		if v.ID == id {
			return v, true
		}
	}
	return models.Video{}, false
}
