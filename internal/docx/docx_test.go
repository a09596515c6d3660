package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(f, data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestImport(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>Section</w:t></w:r></w:p>
    <w:p>
      <w:pPr><w:rPr><w:b/></w:rPr></w:pPr>
      <w:r><w:t xml:space="preserve">Plain </w:t></w:r>
      <w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r>
      <w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t xml:space="preserve"> &amp; &lt;tag&gt;</w:t></w:r>
    </w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>line</w:t><w:br/><w:t>next</w:t></w:r></w:p>
  </w:body>
</w:document>`
	r := buildZip(t, map[string]string{documentPart: doc})

	got, err := Import(r, r.Size())
	require.NoError(t, err)
	assert.Equal(t,
		"<h2>Section</h2><p>Plain <strong>bold</strong> &amp; &lt;tag&gt;</p><p>line<br>next</p>",
		got)
}

func TestImportMissingDocument(t *testing.T) {
	r := buildZip(t, map[string]string{"word/styles.xml": "<w:styles/>"})
	_, err := Import(r, r.Size())
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestImportNotZip(t *testing.T) {
	r := strings.NewReader("not a zip archive")
	_, err := Import(r, r.Size())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoDocument)
}

func TestExportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	content := `<p>مرحبا <strong>بالعالم</strong></p>
<h2>قسم</h2>
<ul><li>بند <b> أول</b></li><li><p>بند ثان</p></li></ul>
<p>   </p>
<script>alert(1)</script>`
	require.NoError(t, Export(&buf, "عنوان الخبر", content))

	r := bytes.NewReader(buf.Bytes())
	got, err := Import(r, r.Size())
	require.NoError(t, err)
	assert.Equal(t,
		"<h1>عنوان الخبر</h1><p>مرحبا <strong>بالعالم</strong></p><h2>قسم</h2><p>بند <strong> أول</strong></p><p>بند ثان</p>",
		got)
}

func TestExportLooseTextAndDivs(t *testing.T) {
	var buf bytes.Buffer
	content := `<div>نص داخل div</div>bare text<br>more<blockquote>اقتباس <b>مهم</b></blockquote>` +
		`<table><tr><td>خلية</td></tr></table><div>قبل<p>داخل</p>بعد</div>`
	require.NoError(t, Export(&buf, "T", content))

	r := bytes.NewReader(buf.Bytes())
	got, err := Import(r, r.Size())
	require.NoError(t, err)
	assert.Equal(t,
		"<h1>T</h1><p>نص داخل div</p><p>bare text<br>more</p><p>اقتباس <strong>مهم</strong></p>"+
			"<p>خلية</p><p>قبل</p><p>داخل</p><p>بعد</p>",
		got)
}

func TestExportPackageParts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, "", "<p>x</p>"))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"[Content_Types].xml", "_rels/.rels", documentPart}, names)

	r := bytes.NewReader(buf.Bytes())
	got, err := Import(r, r.Size())
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", got, "空标题不输出标题段落")
}

func TestExportBidi(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, "t", "<p>x</p>"))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Contains(t, string(data), "<w:bidi/>")
		assert.Contains(t, string(data), "<w:rtl/>")
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "document.docx", FileName("  "))
	assert.Equal(t, "تقرير.docx", FileName("تقرير"))
	assert.Equal(t, "a_b.docx", FileName("a/b"))
}
