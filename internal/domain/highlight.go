package domain

// Rect is a scale-independent rectangle on a rendered page. Coordinates are
// normalized by the highlighter, so the same rect is valid at any zoom level.
type Rect struct {
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position locates a highlight on a document page. Text highlights carry one
// rect per line in Rects; area highlights use BoundingRect alone.
type Position struct {
	PageNumber        int    `json:"pageNumber"`
	BoundingRect      Rect   `json:"boundingRect"`
	Rects             []Rect `json:"rects"`
	UsePdfCoordinates bool   `json:"usePdfCoordinates,omitempty"`
}

// Content holds what a highlight captured: selected text, or a screenshot
// for area highlights. Exactly one of the two is expected to be set.
type Content struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// Comment is the annotation attached to a highlight.
type Comment struct {
	Text  string `json:"text"`
	Emoji string `json:"emoji"`
}

// Highlight is a saved, scale-independent reference to a region of a
// rendered document page.
type Highlight struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Content  Content  `json:"content"`
	Comment  Comment  `json:"comment"`
}

// IsArea reports whether the highlight is an area highlight. A populated
// content image marks the area type; everything else renders as text.
func (h *Highlight) IsArea() bool {
	return h.Content.Image != ""
}

// PositionPatch is a partial position update. Nil fields are left untouched.
type PositionPatch struct {
	PageNumber        *int
	BoundingRect      *Rect
	Rects             []Rect
	UsePdfCoordinates *bool
}

// ContentPatch is a partial content update. Nil fields are left untouched.
type ContentPatch struct {
	Text  *string
	Image *string
}

// IsZero reports whether the patch carries no fields.
func (p PositionPatch) IsZero() bool {
	return p.PageNumber == nil && p.BoundingRect == nil && p.Rects == nil && p.UsePdfCoordinates == nil
}

// IsZero reports whether the patch carries no fields.
func (p ContentPatch) IsZero() bool {
	return p.Text == nil && p.Image == nil
}

// Apply merges the patch into the position. Unspecified fields keep their
// existing values.
func (p PositionPatch) Apply(pos Position) Position {
	if p.PageNumber != nil {
		pos.PageNumber = *p.PageNumber
	}
	if p.BoundingRect != nil {
		pos.BoundingRect = *p.BoundingRect
	}
	if p.Rects != nil {
		pos.Rects = p.Rects
	}
	if p.UsePdfCoordinates != nil {
		pos.UsePdfCoordinates = *p.UsePdfCoordinates
	}
	return pos
}

// Apply merges the patch into the content. Unspecified fields keep their
// existing values.
func (p ContentPatch) Apply(c Content) Content {
	if p.Text != nil {
		c.Text = *p.Text
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	return c
}
