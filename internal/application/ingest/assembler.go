package ingest

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
)

// ImageFile is one uploaded image before assembly.
type ImageFile struct {
	Reader      io.Reader
	ContentType string // from the upload header; sniffed when empty
}

// Assemble packages free text, an optional log file and uploaded images into
// one backend-agnostic analysis request. The log file is consumed as a UTF-8
// compatible byte stream with no encoding special cases; images pass through
// opaque. Both inputs optional, but a request with neither is rejected here
// so no backend call is ever issued for it.
func Assemble(logText string, logFile io.Reader, images []ImageFile) (analysis.Request, error) {
	req := analysis.Request{LogText: logText}

	if logFile != nil {
		data, err := io.ReadAll(logFile)
		if err != nil {
			return analysis.Request{}, &analysis.InputError{Reason: "failed to read log file", Err: err}
		}
		if req.LogText != "" {
			req.LogText += "\n"
		}
		req.LogText += string(data)
	}

	for i, img := range images {
		data, err := io.ReadAll(img.Reader)
		if err != nil {
			return analysis.Request{}, &analysis.InputError{Reason: "failed to read image file", Err: err}
		}
		mime := img.ContentType
		if mime == "" {
			mime = http.DetectContentType(data)
		}
		if !strings.HasPrefix(mime, "image/") {
			return analysis.Request{}, &analysis.InputError{Reason: fmt.Sprintf("attachment %d is not an image: %s", i, mime)}
		}
		req.Images = append(req.Images, analysis.ImageAttachment{Data: data, MIMEType: mime})
	}

	if req.Empty() {
		return analysis.Request{}, &analysis.InputError{Reason: "nothing to analyze: provide log text or at least one image"}
	}
	return req, nil
}
