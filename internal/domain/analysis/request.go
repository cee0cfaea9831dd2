package analysis

import "strings"

// ImageAttachment is an opaque binary image forwarded to the backend as-is.
// The core never inspects or resizes image payloads.
type ImageAttachment struct {
	Data     []byte
	MIMEType string
}

// Request carries one analysis submission: free-form log text plus zero or
// more images. Construction does not enforce non-emptiness; callers decide
// whether an empty request is worth sending, and backends must accept one.
type Request struct {
	LogText string
	Images  []ImageAttachment
}

// Empty reports whether the request carries neither text nor images.
func (r Request) Empty() bool {
	return strings.TrimSpace(r.LogText) == "" && len(r.Images) == 0
}
