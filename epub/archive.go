package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
)

// maxDecompressSize 限制单个 ZIP 条目解压后的大小（256 MB）。
const maxDecompressSize int64 = 256 * 1024 * 1024

const containerPath = "META-INF/container.xml"

type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest []opfItem   `xml:"manifest>item"`
	Spine    []opfRef    `xml:"spine>itemref"`
}

type opfMetadata struct {
	Titles      []string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators    []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages   []string `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifiers []string `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Publishers  []string `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Dates       []string `xml:"http://purl.org/dc/elements/1.1/ date"`
}

type opfItem struct {
	ID        string `xml:"id,attr"`
	Href      string `xml:"href,attr"`
	MediaType string `xml:"media-type,attr"`
}

type opfRef struct {
	IDRef string `xml:"idref,attr"`
}

// spineDoc 是按阅读顺序解析出的一个 XHTML 文档。
type spineDoc struct {
	ID   string
	Path string
}

// locateOPF 通过 container.xml 找到 OPF；缺失时退回扫描 .opf 条目。
func locateOPF(zr *zip.Reader) (string, error) {
	f := findFile(zr, containerPath)
	if f == nil {
		for _, f := range zr.File {
			if strings.HasSuffix(strings.ToLower(f.Name), ".opf") {
				return f.Name, nil
			}
		}
		return "", fmt.Errorf("epub: no OPF file found in archive: %w", ErrInvalidEPub)
	}

	data, err := readZipFile(f)
	if err != nil {
		return "", fmt.Errorf("epub: read container.xml: %w", err)
	}
	var c containerXML
	if err := xml.Unmarshal(stripBOM(data), &c); err != nil {
		return "", fmt.Errorf("epub: parse container.xml: %w", err)
	}
	var fallback string
	for _, rf := range c.RootFiles {
		full := strings.TrimSpace(rf.FullPath)
		if full == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
			return full, nil
		}
		if fallback == "" {
			fallback = full
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("epub: container.xml has no usable rootfile: %w", ErrInvalidEPub)
	}
	return fallback, nil
}

// parseOPF 解析 OPF，并将 spine 解析为 ZIP 内路径。
func parseOPF(zr *zip.Reader, opfPath string) (*opfPackage, []spineDoc, error) {
	f := findFile(zr, opfPath)
	if f == nil {
		return nil, nil, fmt.Errorf("epub: OPF %s missing: %w", opfPath, ErrInvalidEPub)
	}
	data, err := readZipFile(f)
	if err != nil {
		return nil, nil, err
	}
	var pkg opfPackage
	if err := xml.Unmarshal(stripBOM(data), &pkg); err != nil {
		return nil, nil, fmt.Errorf("epub: parse OPF: %w", err)
	}

	byID := make(map[string]opfItem, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		byID[item.ID] = item
	}
	docs := make([]spineDoc, 0, len(pkg.Spine))
	for _, ref := range pkg.Spine {
		item, ok := byID[ref.IDRef]
		if !ok {
			continue
		}
		p := resolveRelativePath(opfPath, item.Href)
		if p == "" {
			continue
		}
		docs = append(docs, spineDoc{ID: item.ID, Path: p})
	}
	return &pkg, docs, nil
}

// findFile 先精确匹配，再忽略大小写匹配。
func findFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	lower := strings.ToLower(name)
	for _, f := range zr.File {
		if strings.ToLower(f.Name) == lower {
			return f
		}
	}
	return nil
}

// resolveRelativePath 相对 basePath 所在目录解析 href，越出根目录时返回空串。
func resolveRelativePath(basePath, href string) string {
	href = strings.TrimSpace(href)
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if href == "" || strings.HasPrefix(href, "/") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	cleaned := path.Clean(path.Join(path.Dir(basePath), href))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ""
	}
	return cleaned
}

func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

func readZipFile(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > uint64(maxDecompressSize) {
		return nil, fmt.Errorf("epub: zip entry %s too large: %d bytes", f.Name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("epub: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxDecompressSize+1))
	if err != nil {
		return nil, fmt.Errorf("epub: read zip entry %s: %w", f.Name, err)
	}
	if int64(len(data)) > maxDecompressSize {
		return nil, fmt.Errorf("epub: zip entry %s exceeds %d bytes", f.Name, maxDecompressSize)
	}
	return data, nil
}
