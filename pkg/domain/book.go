package domain

// Book is a catalog title.
type Book struct {
	ID      int64  `json:"id"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Type    string `json:"type"`
	Image64 string `json:"image64,omitempty"`
}

// BookCopy is a physical copy of a title. Available is false while lent out.
type BookCopy struct {
	ID        int64 `json:"id"`
	Available bool  `json:"estado"`
	Book      Book  `json:"libro"`
}

// NewBookRequest is the payload for creating a title.
type NewBookRequest struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Type    string `json:"type"`
	Image64 string `json:"image64"`
}

// IDRef is the {"id": n} shape the backend uses for references.
type IDRef struct {
	ID int64 `json:"id"`
}

// NewCopyRequest is the payload for adding a copy of an existing title.
type NewCopyRequest struct {
	Available bool  `json:"estado"`
	Book      IDRef `json:"libro"`
}

// BookTypes are the catalog categories offered by the type filter.
var BookTypes = []string{"novela", "ciencia", "historia", "tecnologia", "arte", "infantil"}
