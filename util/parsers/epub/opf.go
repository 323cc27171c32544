package epub

// Opf is the package document of the epub.
type Opf struct {
	Metadata Metadata   `xml:"metadata" json:"metadata"`
	Manifest []Manifest `xml:"manifest>item" json:"manifest"`
}

type Metadata struct {
	Title       []string     `xml:"title" json:"title"`
	Language    []string     `xml:"language" json:"language"`
	Description []string     `xml:"description" json:"description"`
	Publisher   []string     `xml:"publisher" json:"publisher"`
	Creator     []Author     `xml:"creator" json:"creator"`
	Identifier  []Identifier `xml:"identifier" json:"identifier"`
	Date        []Date       `xml:"date" json:"date"`
	Meta        []Meta       `xml:"meta" json:"meta"`
}

type Author struct {
	Data string `xml:",chardata" json:"author"`
	Role string `xml:"role,attr" json:"role"`
}

type Identifier struct {
	Data   string `xml:",chardata" json:"data"`
	Scheme string `xml:"scheme,attr" json:"scheme"`
}

type Date struct {
	Data  string `xml:",chardata" json:"data"`
	Event string `xml:"event,attr" json:"event"`
}

type Meta struct {
	Name    string `xml:"name,attr" json:"name"`
	Content string `xml:"content,attr" json:"content"`
}

type Manifest struct {
	ID        string `xml:"id,attr" json:"id"`
	Href      string `xml:"href,attr" json:"href"`
	MediaType string `xml:"media-type,attr" json:"media_type"`
}
