package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
	"golang.org/x/sync/errgroup"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/catalog"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/models"
	"sellerconsole/internal/render"
	"sellerconsole/internal/session"
)

// enrolment is what the settings page shows while two-factor is being set
// up.
type enrolment struct {
	QRCode  template.URL
	Secret  string
	Issuer  string
	Account string
}

// Settings renders the seller profile, brand and two-factor status.
func (c *Console) Settings(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	c.settingsPage(w, r, api, sess, settingsView{Flashes: doneFlash(r)})
}

// SetupTwoFA asks the backend for a new authenticator secret and shows it
// as a QR code.
func (c *Console) SetupTwoFA(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}
	if sess.TwoFAEnabled {
		middleware.Redirect(w, r, "/settings")
		return
	}

	qr, err := api.TwoFAGenerate(r.Context())
	if err == nil {
		var enrol *enrolment
		enrol, err = newEnrolment(qr)
		if err == nil {
			c.settingsPage(w, r, api, sess, settingsView{Enrolment: enrol})
			return
		}
	}
	if c.unauthorized(w, r, err) {
		return
	}
	slog.Error("2fa setup failed", "seller", sess.SellerID, "error", err)
	c.settingsPage(w, r, api, sess, settingsView{Flashes: []render.Flash{
		authFailure("Two-factor setup failed", err, "Please try again."),
	}})
}

// ConfirmTwoFA enables two-factor once the seller proves their app
// produces valid codes. When the enrolment secret is known the code is
// checked locally before the backend sees it.
func (c *Console) ConfirmTwoFA(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}

	code := strings.TrimSpace(r.FormValue("code"))
	enrol := &enrolment{
		Secret:  r.FormValue("secret"),
		Issuer:  r.FormValue("issuer"),
		Account: r.FormValue("account"),
	}
	if enrol.Secret != "" {
		if qr, err := enrolmentQR(enrol); err == nil {
			enrol.QRCode = qr
		}
	}

	if !validCode(code) {
		c.settingsPage(w, r, api, sess, settingsView{Enrolment: enrol, Errors: catalog.FieldErrors{
			"code": "Enter the 6-digit code from your authenticator app.",
		}})
		return
	}
	if enrol.Secret != "" && !totp.Validate(code, enrol.Secret) {
		c.settingsPage(w, r, api, sess, settingsView{Enrolment: enrol, Errors: catalog.FieldErrors{
			"code": "Invalid code. Please try again.",
		}})
		return
	}

	if err := api.TwoFAVerify(r.Context(), code); err != nil {
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Info("2fa enrolment code rejected", "seller", sess.SellerID, "error", err)
		c.settingsPage(w, r, api, sess, settingsView{Enrolment: enrol, Flashes: []render.Flash{
			authFailure("Verification failed", err, "Invalid code. Please try again."),
		}})
		return
	}

	sess.TwoFAEnabled = true
	sess.TwoFADone = true
	if err := c.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("2fa enabled", "seller", sess.SellerID)
	middleware.Redirect(w, r, "/settings?done=two-factor-enabled")
}

// UpdateProfile saves the profile form. A newly chosen picture is uploaded
// first; otherwise the current picture is kept.
func (c *Console) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	api, sess, ok := c.client(w, r)
	if !ok {
		return
	}

	if err := parseMultipart(w, r, maxFileBytes+1<<20); err != nil {
		slog.Warn("profile form invalid", "seller", sess.SellerID, "error", err)
		c.settingsPage(w, r, api, sess, settingsView{Flashes: []render.Flash{render.FlashFromNotice(catalog.ErrUploadFailed)}})
		return
	}
	in := backend.ProfileInput{
		Username:   strings.TrimSpace(r.FormValue("username")),
		Email:      strings.TrimSpace(r.FormValue("email")),
		Name:       strings.TrimSpace(r.FormValue("name")),
		ProfilePic: r.FormValue("profilePic"),
	}

	if fe := validateProfile(in); fe != nil {
		c.settingsPage(w, r, api, sess, settingsView{Profile: &in, Errors: fe})
		return
	}

	var uploaded []string
	if fh := formFile(r, "picture"); fh != nil {
		f, err := readUpload(fh, maxFileBytes)
		if err != nil || !catalog.IsImageType(f.ContentType) {
			c.settingsPage(w, r, api, sess, settingsView{Profile: &in, Errors: catalog.FieldErrors{
				"profilePic": "Please choose an image under 10 MB.",
			}})
			return
		}
		uploaded, err = c.uploader(api, sess.SellerID, "profile").UploadImages(r.Context(), []catalog.File{f})
		if err != nil || len(uploaded) == 0 {
			if c.unauthorized(w, r, err) {
				return
			}
			slog.Warn("profile picture upload failed", "seller", sess.SellerID, "error", err)
			c.settingsPage(w, r, api, sess, settingsView{Profile: &in, Flashes: []render.Flash{render.FlashFromNotice(catalog.ErrUploadFailed)}})
			return
		}
		in.ProfilePic = uploaded[0]
	}

	if err := api.UpdateProfile(r.Context(), in); err != nil {
		if c.unauthorized(w, r, err) {
			return
		}
		slog.Warn("profile update failed", "seller", sess.SellerID, "error", err)
		c.settingsPage(w, r, api, sess, settingsView{Profile: &in, Flashes: []render.Flash{
			authFailure("Profile update failed", err, "Please try again."),
		}})
		return
	}
	c.attach(r, uploaded)

	sess.Username = in.Username
	sess.Email = in.Email
	sess.Name = in.Name
	sess.ProfilePic = in.ProfilePic
	if err := c.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("profile updated", "seller", sess.SellerID)
	middleware.Redirect(w, r, "/settings?done=profile-updated")
}

// settingsView is the per-request state of the settings page. A nil Profile
// shows the seller's saved details.
type settingsView struct {
	Enrolment *enrolment
	Profile   *backend.ProfileInput
	Errors    catalog.FieldErrors
	Flashes   []render.Flash
}

func (c *Console) settingsPage(w http.ResponseWriter, r *http.Request, api *backend.Client, sess *session.Data, view settingsView) {
	var (
		seller *models.Seller
		brand  *models.Brand
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		seller, err = api.ProfileDetails(ctx)
		return err
	})
	g.Go(func() (err error) {
		brand, err = api.MyBrand(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.loadFailed(w, r, "your profile", err)
		return
	}

	profile := view.Profile
	if profile == nil && seller != nil {
		profile = &backend.ProfileInput{
			Username:   seller.Username,
			Email:      seller.Email,
			Name:       seller.Name,
			ProfilePic: seller.ProfilePic,
		}
	}

	c.renderer.Page(w, r, "settings", &render.PageData{
		Title:   "Settings",
		Section: "settings",
		Errors:  view.Errors,
		Flashes: view.Flashes,
		Data: map[string]any{
			"Seller":       seller,
			"Profile":      profile,
			"Brand":        brand,
			"TwoFAEnabled": sess.TwoFAEnabled || (seller != nil && seller.TwoFactorEnabled),
			"Enrolment":    view.Enrolment,
		},
	})
}

// newEnrolment turns the backend's enrolment answer into something the page
// can show. The backend returns either an otpauth:// URI or a ready-made
// image data URL.
func newEnrolment(qr string) (*enrolment, error) {
	switch {
	case strings.HasPrefix(qr, "data:image/"):
		return &enrolment{QRCode: template.URL(qr)}, nil
	case strings.HasPrefix(qr, "otpauth://"):
		key, err := otp.NewKeyFromURL(qr)
		if err != nil {
			return nil, fmt.Errorf("parse enrolment uri: %w", err)
		}
		enrol := &enrolment{
			Secret:  key.Secret(),
			Issuer:  key.Issuer(),
			Account: key.AccountName(),
		}
		png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("render enrolment qr: %w", err)
		}
		enrol.QRCode = pngDataURL(png)
		return enrol, nil
	}
	return nil, errors.New("unexpected enrolment format")
}

// enrolmentQR re-renders the QR code of a known secret.
func enrolmentQR(e *enrolment) (template.URL, error) {
	v := url.Values{"secret": {e.Secret}}
	label := url.PathEscape(e.Account)
	if e.Issuer != "" {
		v.Set("issuer", e.Issuer)
		label = url.PathEscape(e.Issuer) + ":" + label
	}
	png, err := qrcode.Encode("otpauth://totp/"+label+"?"+v.Encode(), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("render enrolment qr: %w", err)
	}
	return pngDataURL(png), nil
}

func pngDataURL(png []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}
