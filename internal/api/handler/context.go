package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oculab/microbio-portal/internal/core/domain"
	"github.com/oculab/microbio-portal/internal/core/ports"
)

// ctxActor extracts the identity injected by the Auth middleware and performs
// a fast-fail check before any service call: user_id and role must be
// non-empty (presence proves the middleware ran and the token carried a
// usable identity).
func ctxActor(c echo.Context) (domain.Actor, error) {
	id, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)
	if id == "" || role == "" {
		return domain.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	username, _ := c.Get("username").(string)
	fullName, _ := c.Get("full_name").(string)

	return domain.Actor{
		ID:       id,
		Username: username,
		Role:     domain.Role(role),
		FullName: fullName,
	}, nil
}

// formFileUpload opens the named multipart file part. A request without that
// part (or without a multipart body at all) yields a nil upload, letting the
// service decide whether the file was required.
func formFileUpload(c echo.Context, field string) (*ports.FileUpload, io.Closer, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable file part")
	}

	return &ports.FileUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	}, f, nil
}
