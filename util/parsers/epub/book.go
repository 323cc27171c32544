package epub //import "github.com/liber-hq/liber/util/parsers/epub"

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
)

// Book holds the parsed epub metadata used by the ingest worker.
type Book struct {
	Opf       Opf       `json:"opf"`
	Container Container `json:"container"`
	Mimetype  string    `json:"mimetype"`

	fd *zip.ReadCloser
}

// Close closes the epub file
func (p *Book) Close() error {
	return p.fd.Close()
}

// readXML reads the xml file with the given name and unmarshals it into the given interface
func (p *Book) readXML(n string, v interface{}) error {
	rc, err := p.open(n)
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

// readBytes reads the file with the given name and returns its content as a byte slice
func (p *Book) readBytes(n string) ([]byte, error) {
	rc, err := p.open(n)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// filename returns the full path of the file relative to the package document
func (p *Book) filename(n string) string {
	return path.Join(path.Dir(p.Container.Rootfile.Fullpath), n)
}

// open opens the file with the given name
func (p *Book) open(n string) (io.ReadCloser, error) {
	for _, f := range p.fd.File {
		if f.Name == n {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("file not found: %s", n)
}

func (p *Book) GetTitle() string {
	if len(p.Opf.Metadata.Title) == 0 {
		return ""
	}
	return p.Opf.Metadata.Title[0]
}

func (p *Book) GetAuthor() string {
	for _, author := range p.Opf.Metadata.Creator {
		if author.Role == "aut" || author.Role == "" {
			return author.Data
		}
	}
	return ""
}

func (p *Book) GetPublisher() string {
	if len(p.Opf.Metadata.Publisher) == 0 {
		return ""
	}
	return p.Opf.Metadata.Publisher[0]
}

func (p *Book) GetDescription() string {
	if len(p.Opf.Metadata.Description) == 0 {
		return ""
	}
	return p.Opf.Metadata.Description[0]
}

func (p *Book) GetISBN() string {
	for _, identifier := range p.Opf.Metadata.Identifier {
		if identifier.Scheme == "ISBN" {
			return identifier.Data
		}
	}
	return ""
}

func (p *Book) GetDate() string {
	if len(p.Opf.Metadata.Date) == 0 {
		return ""
	}
	return p.Opf.Metadata.Date[0].Data
}

// GetCover returns the in-archive path of the cover image, or "".
func (p *Book) GetCover() string {
	for _, meta := range p.Opf.Metadata.Meta {
		if meta.Name == "cover" {
			id := meta.Content
			for _, m := range p.Opf.Manifest {
				if m.ID == id {
					return p.filename(m.Href)
				}
			}
			return p.filename(id)
		}
	}
	return ""
}

// ExtractCover copies the cover image out of the archive to dst.
func (p *Book) ExtractCover(dst io.Writer) error {
	cover := p.GetCover()
	if cover == "" {
		return fmt.Errorf("epub has no cover")
	}
	rc, err := p.open(cover)
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(dst, rc)
	return err
}
