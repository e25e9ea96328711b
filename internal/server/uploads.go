package server

import (
	"net/http"
	"path/filepath"
	"strings"
)

const (
	slotVariantImage = "variant_image"
	slotProductImage = "product_image"

	maxUploadMemory = 32 << 20
)

// FileResolver yields at most one stored filename per named upload slot of a
// request. An empty string means no file was supplied for the slot.
type FileResolver interface {
	Filename(r *http.Request, slot string) string
}

type multipartResolver struct{}

// NewMultipartResolver resolves upload slots from the request's multipart
// form. Where the file ends up on disk is the upload middleware's concern;
// only the stored filename matters here.
func NewMultipartResolver() FileResolver {
	return multipartResolver{}
}

func (multipartResolver) Filename(r *http.Request, slot string) string {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return ""
		}
	}
	if r.MultipartForm == nil {
		return ""
	}
	headers := r.MultipartForm.File[slot]
	if len(headers) == 0 {
		return ""
	}
	name := filepath.Base(strings.TrimSpace(headers[0].Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

// uploadBaseURL derives the absolute upload base from the request's own
// origin, honoring a forwarded scheme when the service sits behind a proxy.
func uploadBaseURL(r *http.Request, pathPrefix string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host + pathPrefix
}
