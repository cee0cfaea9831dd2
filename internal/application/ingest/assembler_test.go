package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/logsentinel/internal/domain/analysis"
)

// minimal valid PNG header so content sniffing resolves to image/png
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk error") }

func TestAssemble_TextOnly(t *testing.T) {
	req, err := Assemble("some log line", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "some log line", req.LogText)
	assert.Empty(t, req.Images)
}

func TestAssemble_LogFileAppended(t *testing.T) {
	req, err := Assemble("inline", strings.NewReader("from file"), nil)
	require.NoError(t, err)
	assert.Equal(t, "inline\nfrom file", req.LogText)
}

func TestAssemble_LogFileOnly(t *testing.T) {
	req, err := Assemble("", strings.NewReader("2023-10-27 WARN failed login"), nil)
	require.NoError(t, err)
	assert.Equal(t, "2023-10-27 WARN failed login", req.LogText)
}

func TestAssemble_ImagePassthrough(t *testing.T) {
	req, err := Assemble("", nil, []ImageFile{{Reader: bytes.NewReader(pngHeader), ContentType: "image/png"}})
	require.NoError(t, err)
	require.Len(t, req.Images, 1)
	assert.Equal(t, "image/png", req.Images[0].MIMEType)
	assert.Equal(t, pngHeader, req.Images[0].Data)
}

func TestAssemble_ImageMIMESniffedWhenMissing(t *testing.T) {
	req, err := Assemble("", nil, []ImageFile{{Reader: bytes.NewReader(pngHeader)}})
	require.NoError(t, err)
	require.Len(t, req.Images, 1)
	assert.Equal(t, "image/png", req.Images[0].MIMEType)
}

func TestAssemble_RejectsNonImageAttachment(t *testing.T) {
	_, err := Assemble("", nil, []ImageFile{{Reader: strings.NewReader("just text"), ContentType: "text/plain"}})
	var ie *analysis.InputError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Error(), "not an image")
}

func TestAssemble_EmptyInputRejected(t *testing.T) {
	_, err := Assemble("", nil, nil)
	var ie *analysis.InputError
	require.ErrorAs(t, err, &ie)

	_, err = Assemble("   \n", nil, nil)
	assert.ErrorAs(t, err, &ie, "whitespace-only text is still empty")
}

func TestAssemble_ReadFailurePropagatesAsInputError(t *testing.T) {
	_, err := Assemble("", failingReader{}, nil)
	var ie *analysis.InputError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Error(), "log file")

	_, err = Assemble("", nil, []ImageFile{{Reader: failingReader{}, ContentType: "image/png"}})
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Error(), "image")
}
