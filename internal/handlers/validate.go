package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/catalog"
)

// Validation limits for the auth, profile, brand, sub-category and video
// forms.
const (
	minPasswordLen    = 7
	minPhoneLen       = 10
	maxNameLen        = 200
	maxCaptionLen     = 2_000
	minUsernameLen    = 2
	maxUsernameLen    = 30
	minProfileNameLen = 2
	maxProfileNameLen = 50
)

// validateSignIn checks the sign-in form.
func validateSignIn(email, password string) catalog.FieldErrors {
	fe := catalog.FieldErrors{}
	checkEmail(fe, email)
	checkPassword(fe, password)
	return orNil(fe)
}

// validateSignUp checks the sign-up form.
func validateSignUp(in backend.RegisterInput) catalog.FieldErrors {
	fe := catalog.FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		fe["name"] = "Please enter your name"
	} else if utf8.RuneCountInString(in.Name) > maxNameLen {
		fe["name"] = "Name is too long (max 200 characters)."
	}
	checkEmail(fe, in.Email)
	if utf8.RuneCountInString(strings.TrimSpace(in.PhoneNumber)) < minPhoneLen {
		fe["phoneNumber"] = "Please enter your phone number"
	}
	checkPassword(fe, in.Password)
	if in.Password != in.ConfirmPassword {
		fe["confirmPassword"] = "Passwords don't match."
	}
	return orNil(fe)
}

// validateProfile checks the profile form on the settings page.
func validateProfile(in backend.ProfileInput) catalog.FieldErrors {
	fe := catalog.FieldErrors{}
	switch n := utf8.RuneCountInString(in.Username); {
	case n < minUsernameLen:
		fe["username"] = "Username must be at least 2 characters."
	case n > maxUsernameLen:
		fe["username"] = "Username must not be longer than 30 characters."
	}
	switch n := utf8.RuneCountInString(in.Name); {
	case n < minProfileNameLen:
		fe["name"] = "Name must be at least 2 characters."
	case n > maxProfileNameLen:
		fe["name"] = "Name must not be longer than 50 characters."
	}
	checkEmail(fe, in.Email)
	return orNil(fe)
}

// validateBrand checks the brand onboarding form.
func validateBrand(in backend.BrandInput) catalog.FieldErrors {
	fe := catalog.FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		fe["name"] = "Name is required"
	}
	if strings.TrimSpace(in.Description) == "" {
		fe["description"] = "Description is required"
	}
	if strings.TrimSpace(in.Location) == "" {
		fe["location"] = "Location is required"
	}
	return orNil(fe)
}

// validateSubCategory checks the sub-category dialog.
func validateSubCategory(in backend.SubCategoryInput) catalog.FieldErrors {
	fe := catalog.FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		fe["subCategoryName"] = "Sub-category name is required."
	} else if utf8.RuneCountInString(in.Name) > maxNameLen {
		fe["subCategoryName"] = "Name is too long (max 200 characters)."
	}
	if in.CategoryID == "" {
		fe["categoryId"] = "Category is required."
	}
	if in.ImageURL == "" {
		fe["imageUrl"] = "Image is required."
	}
	return orNil(fe)
}

// validateVideo checks the video dialog.
func validateVideo(in backend.VideoInput) catalog.FieldErrors {
	fe := catalog.FieldErrors{}
	if in.ProductID == "" {
		fe["productId"] = "Product is required."
	}
	if strings.TrimSpace(in.Size) == "" {
		fe["size"] = "Size is required."
	}
	if utf8.RuneCountInString(in.Caption) > maxCaptionLen {
		fe["caption"] = "Caption is too long (max 2,000 characters)."
	}
	if in.VideoURL == "" {
		fe["videoUrl"] = "Video is required."
	}
	return orNil(fe)
}

func checkEmail(fe catalog.FieldErrors, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		fe["email"] = "Please enter your email"
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		fe["email"] = "Invalid email address"
	}
}

func checkPassword(fe catalog.FieldErrors, password string) {
	switch {
	case password == "":
		fe["password"] = "Please enter your password"
	case utf8.RuneCountInString(password) < minPasswordLen:
		fe["password"] = "Password must be at least 7 characters long"
	}
}

func orNil(fe catalog.FieldErrors) catalog.FieldErrors {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
