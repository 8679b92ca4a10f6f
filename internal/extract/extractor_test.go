package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/baheth/internal/models"
)

// zipOf builds an archive from name/content pairs.
func zipOf(t *testing.T, files ...string) []byte {
	t.Helper()
	require.Zero(t, len(files)%2)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i := 0; i < len(files); i += 2 {
		fw, err := w.Create(files[i])
		require.NoError(t, err)
		_, err = fw.Write([]byte(files[i+1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func docxBody(text string) string {
	return `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p w:rsidR="00A1"><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p></w:body></w:document>`
}

func slide(text string) string {
	return `<p:sld><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
}

func TestExtractPagesBytes_Plain(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name    string
		content string
		ext     string
		want    []models.Page
	}{
		{
			name:    "single page",
			content: "الصبر مفتاح الفرج\nسطر ثان",
			ext:     ".txt",
			want:    []models.Page{{Index: 1, Text: "الصبر مفتاح الفرج\nسطر ثان"}},
		},
		{
			name:    "form feed splits pages",
			content: "الصفحة الاولى\fالصفحة الثانية",
			ext:     ".md",
			want: []models.Page{
				{Index: 1, Text: "الصفحة الاولى"},
				{Index: 2, Text: "الصفحة الثانية"},
			},
		},
		{
			name:    "blank pages keep numbering",
			content: "اولى\f  \fثالثة",
			ext:     ".TXT",
			want: []models.Page{
				{Index: 1, Text: "اولى"},
				{Index: 3, Text: "ثالثة"},
			},
		},
		{
			name:    "invalid utf8 replaced",
			content: "hello\x80world",
			ext:     ".txt",
			want:    []models.Page{{Index: 1, Text: "hello�world"}},
		},
		{
			name:    "empty",
			content: "",
			ext:     ".txt",
			want:    []models.Page{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractPagesBytes([]byte(tt.content), tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPagesBytes_Unsupported(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractPagesBytes([]byte("raw"), ".xyz")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = e.ExtractPages("/nonexistent/file.rtf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSupported(t *testing.T) {
	for _, ext := range []string{".pdf", ".docx", ".xlsx", ".pptx", ".odp", ".ods", ".txt", ".md", ".PDF"} {
		assert.True(t, Supported(ext), ext)
	}
	for _, ext := range []string{"", ".rtf", ".odt", ".go"} {
		assert.False(t, Supported(ext), ext)
	}
}

func TestExtractPagesBytes_Excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "العنوان"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "قيمة 1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "قيمة 2"))
	_, err := f.NewSheet("Sheet2")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Sheet2", "A1", "ورقة ثانية"))

	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	got, err := NewExtractor().ExtractPagesBytes(buf.Bytes(), ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, []models.Page{
		{Index: 1, Text: "العنوان\nقيمة 1\tقيمة 2"},
		{Index: 2, Text: "ورقة ثانية"},
	}, got)
}

func TestExtractPagesBytes_Docx(t *testing.T) {
	e := NewExtractor()

	t.Run("default path", func(t *testing.T) {
		got, err := e.ExtractPagesBytes(zipOf(t, "word/document.xml", docxBody("نص قابل للبحث")), ".docx")
		require.NoError(t, err)
		assert.Equal(t, []models.Page{{Index: 1, Text: "نص قابل للبحث"}}, got)
	})

	t.Run("content types override", func(t *testing.T) {
		ct := `<Types><Override PartName="/word/document2.xml" ContentType="` + docxMainContentType + `"/></Types>`
		got, err := e.ExtractPagesBytes(zipOf(t, contentTypesPath, ct, "word/document2.xml", docxBody("من المستند الثاني")), ".docx")
		require.NoError(t, err)
		assert.Equal(t, []models.Page{{Index: 1, Text: "من المستند الثاني"}}, got)
	})

	t.Run("content type before part name", func(t *testing.T) {
		ct := `<Types><Override ContentType="` + docxMainContentType + `" PartName="/word/document3.xml"/></Types>`
		got, err := e.ExtractPagesBytes(zipOf(t, contentTypesPath, ct, "word/document3.xml", docxBody("ترتيب معكوس")), ".docx")
		require.NoError(t, err)
		assert.Equal(t, []models.Page{{Index: 1, Text: "ترتيب معكوس"}}, got)
	})

	t.Run("missing body", func(t *testing.T) {
		_, err := e.ExtractPagesBytes(zipOf(t, "other.xml", ""), ".docx")
		assert.Error(t, err)
	})

	t.Run("not a zip", func(t *testing.T) {
		_, err := e.ExtractPagesBytes([]byte("not a zip"), ".docx")
		assert.Error(t, err)
	})
}

func TestExtractPagesBytes_Pptx(t *testing.T) {
	e := NewExtractor()

	content := zipOf(t,
		"ppt/slides/slide10.xml", slide("العاشرة"),
		"ppt/slides/slide2.xml", slide("الثانية"),
		"ppt/slides/slide1.xml", slide("الاولى"),
		"ppt/slides/_rels/slide1.xml.rels", `<a:t>ignored</a:t>`,
	)
	got, err := e.ExtractPagesBytes(content, ".pptx")
	require.NoError(t, err)
	assert.Equal(t, []models.Page{
		{Index: 1, Text: "الاولى"},
		{Index: 2, Text: "الثانية"},
		{Index: 3, Text: "العاشرة"},
	}, got)

	got, err = e.ExtractPagesBytes(zipOf(t, "docProps/core.xml", ""), ".pptx")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = e.ExtractPagesBytes([]byte("not a zip"), ".pptx")
	assert.Error(t, err)
}

func TestExtractPagesBytes_OpenDocument(t *testing.T) {
	e := NewExtractor()

	odp := `<office:document><office:styles><text:p>style</text:p></office:styles><office:body>` +
		`<draw:page draw:name="p1"><text:h>عنوان</text:h><text:p>نص الشريحة</text:p></draw:page>` +
		`<draw:page draw:name="p2"><text:p><text:span>الثانية</text:span></text:p></draw:page>` +
		`</office:body></office:document>`
	got, err := e.ExtractPagesBytes(zipOf(t, "content.xml", odp), ".odp")
	require.NoError(t, err)
	assert.Equal(t, []models.Page{
		{Index: 1, Text: "عنوان نص الشريحة"},
		{Index: 2, Text: "الثانية"},
	}, got)

	ods := `<office:document><office:body><office:spreadsheet>` +
		`<table:table table:name="a"><table:table-row><table:table-cell><text:p>خلية أ</text:p></table:table-cell>` +
		`<table:table-cell><text:p>خلية ب</text:p></table:table-cell></table:table-row></table:table>` +
		`<table:table table:name="b"><table:table-row><table:table-cell><text:p>ورقة ثانية</text:p></table:table-cell></table:table-row></table:table>` +
		`</office:spreadsheet></office:body></office:document>`
	got, err = e.ExtractPagesBytes(zipOf(t, "content.xml", ods), ".ods")
	require.NoError(t, err)
	assert.Equal(t, []models.Page{
		{Index: 1, Text: "خلية أ خلية ب"},
		{Index: 2, Text: "ورقة ثانية"},
	}, got)

	_, err = e.ExtractPagesBytes(zipOf(t, "other.xml", ""), ".ods")
	assert.Error(t, err)
}

func TestExtractPages_File(t *testing.T) {
	dir := t.TempDir()
	e := NewExtractor()

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("محتوى الملف"), 0o600))
	got, err := e.ExtractPages(txt)
	require.NoError(t, err)
	assert.Equal(t, []models.Page{{Index: 1, Text: "محتوى الملف"}}, got)

	deck := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(deck, zipOf(t, "ppt/slides/slide1.xml", slide("من ملف")), 0o600))
	got, err = e.ExtractPages(deck)
	require.NoError(t, err)
	assert.Equal(t, []models.Page{{Index: 1, Text: "من ملف"}}, got)

	_, err = e.ExtractPages(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
}
