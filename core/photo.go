package core

import (
	"bytes"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const PhotoContentType = "image/jpeg"

var ErrInvalidImage = NewValidationError(errors.New("invalid image file"), FieldError{Field: "file", Error: "invalid image file"})

type PhotoMode int

const (
	PhotoFill PhotoMode = iota // crop to exactly width x height
	PhotoFit                   // scale down to fit inside width x height
)

// ProcessPhoto decodes an uploaded image, resizes it and re-encodes it as JPEG.
func ProcessPhoto(r io.Reader, width, height int, mode PhotoMode) (*bytes.Buffer, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidImage
	}

	switch mode {
	case PhotoFill:
		img = imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	case PhotoFit:
		img = imaging.Fit(img, width, height, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "encoding photo")
	}
	return buf, nil
}
