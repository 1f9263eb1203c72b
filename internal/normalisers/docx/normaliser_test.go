package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/weldsafe/internal/core/domain"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(t *testing.T, documentXML, coreXML string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	if coreXML != "" {
		core, err := w.Create("docProps/core.xml")
		require.NoError(t, err)
		_, err = core.Write([]byte(coreXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.Len(t, normaliser.SupportedMIMETypes(), 1)
	assert.Equal(t, 50, normaliser.Priority())
}

func TestNormalise_ParagraphsAndTables(t *testing.T) {
	body := `<w:document ` + wordNS + `><w:body>
<w:p><w:r><w:t>Перед зварюванням</w:t></w:r><w:r><w:t xml:space="preserve"> перевір вентиляцію.</w:t></w:r></w:p>
<w:p></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Клас</w:t></w:r><w:r><w:tab/><w:t>A1</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:p><w:r><w:t>(ДСТУ ISO 11611-2019, 4.2)</w:t></w:r></w:p>
</w:body></w:document>`

	res, err := New().Normalise(context.Background(), &domain.RawDocument{
		Path:    "/src/dstu_11611.docx",
		Content: createTestDOCX(t, body, ""),
	})
	require.NoError(t, err)

	assert.Equal(t, "dstu_11611.docx", res.Document.ID)
	assert.Equal(t, "dstu_11611", res.Document.Title)
	assert.Equal(t,
		"Перед зварюванням перевір вентиляцію.\n\nКлас A1\n\n(ДСТУ ISO 11611-2019, 4.2)",
		res.Document.Content)
}

func TestNormalise_CoreTitle(t *testing.T) {
	body := `<w:document ` + wordNS + `><w:body><w:p><w:r><w:t>Текст</w:t></w:r></w:p></w:body></w:document>`
	core := `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>НПАОП 0.00-1.01</dc:title></cp:coreProperties>`

	res, err := New().Normalise(context.Background(), &domain.RawDocument{
		Path:    "npaop.docx",
		Content: createTestDOCX(t, body, core),
	})
	require.NoError(t, err)
	assert.Equal(t, "НПАОП 0.00-1.01", res.Document.Title)
}

func TestNormalise_Errors(t *testing.T) {
	n := New()

	_, err := n.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = n.Normalise(context.Background(), &domain.RawDocument{Path: "x.docx", Content: []byte("not a zip")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = n.Normalise(context.Background(), &domain.RawDocument{
		Path:    "x.docx",
		Content: createTestDOCX(t, "", `<cp:coreProperties/>`),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = n.Normalise(context.Background(), &domain.RawDocument{
		Path:    "x.docx",
		Content: createTestDOCX(t, `<w:document `+wordNS+`><w:body><w:p>`, ""),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
