package spread

// BodyKind tags a body paragraph.
type BodyKind string

const (
	KindParagraph  BodyKind = "paragraph"
	KindSubheading BodyKind = "subheading"
	KindStreamer   BodyKind = "streamer"
)

// Element is one classified item of the element stream. The concrete
// types below are the only implementations.
type Element interface {
	SpreadIndex() int
	element()
}

// Pos locates an element in the spread it came from.
type Pos struct {
	Spread int
}

func (p Pos) SpreadIndex() int { return p.Spread }
func (Pos) element()           {}

type Title struct {
	Pos
	Text string
}

type Chapeau struct {
	Pos
	Text string
}

type Body struct {
	Pos
	Kind BodyKind
	Text string
}

type Author struct {
	Pos
	Text string
}

type Category struct {
	Pos
	Text string
}

type Sidebar struct {
	Pos
	Text string
}

type Caption struct {
	Pos
	Text string
}

type Image struct {
	Pos
	Filename string
}

type CoverTitle struct {
	Pos
	Text string
}

type CoverChapeau struct {
	Pos
	Text string
}

type IntroVerse struct {
	Pos
	Text string
}

type AuthorBio struct {
	Pos
	Text string
}

// Unclassified carries text whose class matched no role.
type Unclassified struct {
	Pos
	Class string
	Text  string
}
